package models

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureListRoundTrip(t *testing.T) {
	features := FeatureList{"CSV export", "Priority support"}

	value, err := features.Value()
	require.NoError(t, err)

	var scanned FeatureList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, features, scanned)
}

func TestFeatureListScanNil(t *testing.T) {
	var scanned FeatureList
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
}

func TestDefaultPlans(t *testing.T) {
	plans := DefaultPlans()
	require.Len(t, plans, 3)

	byName := make(map[string]Plan, len(plans))
	for _, p := range plans {
		byName[p.Name] = p
	}

	free := byName[PlanFree]
	assert.Equal(t, 0.0, free.Price)
	assert.False(t, free.CanExportCSV)
	assert.False(t, free.CanExportPDF)

	pro := byName[PlanPro]
	assert.False(t, pro.CanExportCSV)
	assert.True(t, pro.CanExportPDF)

	business := byName[PlanBusiness]
	assert.Equal(t, 14.99, business.Price)
	assert.True(t, business.CanExportCSV)
	assert.True(t, business.CanExportPDF)
}

// The SQL seed and DefaultPlans both describe the plan catalog; keep their
// rows in sync so a migrated database matches a code-seeded one.
func TestDefaultPlansMatchMigrationSeed(t *testing.T) {
	seed, err := os.ReadFile("../../migrations/000003_create_subscription_plans.up.sql")
	require.NoError(t, err)
	sql := string(seed)

	for _, plan := range DefaultPlans() {
		features, err := plan.Features.Value()
		require.NoError(t, err)
		assert.Contains(t, sql, fmt.Sprintf("'%s'", features), plan.Name)

		csv, pdf := 0, 0
		if plan.CanExportCSV {
			csv = 1
		}
		if plan.CanExportPDF {
			pdf = 1
		}
		row := fmt.Sprintf("('%s', '%s', %.2f, '%s', %d, %d)", plan.Name, plan.DisplayName, plan.Price, features, csv, pdf)
		assert.Contains(t, sql, row, plan.Name)
	}
}
