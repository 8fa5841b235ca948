package subscription

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
)

// fakeRepo is an in-memory Repository used to exercise the service without a
// database. Mutation counters let tests assert that failed operations did not
// touch the store.
type fakeRepo struct {
	plans  []models.Plan
	subs   []models.Subscription
	nextID uint

	creates int
	updates int
	deletes int

	// createErr fails the next Create call once; beforeCreateFail runs right
	// before the failure to simulate a concurrent writer winning the race.
	createErr        error
	beforeCreateFail func(r *fakeRepo)
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{nextID: 1}
	for i, p := range models.DefaultPlans() {
		p.ID = uint(i + 1)
		r.plans = append(r.plans, p)
	}
	return r
}

func (r *fakeRepo) addSub(userID, planID uint, createdAt time.Time) models.Subscription {
	sub := models.Subscription{
		ID:        r.nextID,
		UserID:    userID,
		PlanID:    planID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	r.nextID++
	r.subs = append(r.subs, sub)
	return sub
}

func (r *fakeRepo) ListByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRepo) Get(id uint) (*models.Subscription, error) {
	for i := range r.subs {
		if r.subs[i].ID == id {
			sub := r.subs[i]
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) Create(sub *models.Subscription) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		if r.beforeCreateFail != nil {
			r.beforeCreateFail(r)
		}
		return err
	}
	r.creates++
	sub.ID = r.nextID
	r.nextID++
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *fakeRepo) UpdatePlan(subscriptionID, planID uint) error {
	for i := range r.subs {
		if r.subs[i].ID == subscriptionID {
			r.updates++
			r.subs[i].PlanID = planID
			r.subs[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) DeleteOthers(userID, keepID uint) (int64, error) {
	var kept []models.Subscription
	var deleted int64
	for _, s := range r.subs {
		if s.UserID == userID && s.ID != keepID {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.subs = kept
	if deleted > 0 {
		r.deletes++
	}
	return deleted, nil
}

func (r *fakeRepo) GetPlanByName(name string) (*models.Plan, error) {
	for i := range r.plans {
		if r.plans[i].Name == name {
			plan := r.plans[i]
			return &plan, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetPlanByID(id uint) (*models.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			plan := r.plans[i]
			return &plan, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) planID(t *testing.T, name string) uint {
	t.Helper()
	plan, err := r.GetPlanByName(name)
	require.NoError(t, err)
	return plan.ID
}

func TestEnsureSubscriptionAssignsFreeDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	snap, created, err := svc.EnsureSubscription(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, models.PlanFree, snap.PlanName)
	assert.Equal(t, 0.0, snap.Price)

	rows, _ := repo.ListByUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, repo.planID(t, models.PlanFree), rows[0].PlanID)
}

func TestEnsureSubscriptionIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	first, created, err := svc.EnsureSubscription(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, created)

	for i := 0; i < 3; i++ {
		snap, created, err := svc.EnsureSubscription(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first, snap)
	}

	rows, _ := repo.ListByUser(1)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, repo.creates)
}

func TestEnsureSubscriptionCollapsesDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	r1 := repo.addSub(1, repo.planID(t, models.PlanPro), t1)
	repo.addSub(1, repo.planID(t, models.PlanFree), t2)

	snap, created, err := svc.EnsureSubscription(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, models.PlanPro, snap.PlanName, "earliest-created row is canonical")
	assert.Equal(t, r1.ID, snap.SubscriptionID)

	rows, _ := repo.ListByUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, r1.ID, rows[0].ID)
}

func TestEnsureSubscriptionFreePlanMissing(t *testing.T) {
	repo := newFakeRepo()
	repo.plans = nil
	svc := NewService(repo)

	_, _, err := svc.EnsureSubscription(context.Background(), 1)
	require.ErrorIs(t, err, ErrFreePlanMissing)

	rows, _ := repo.ListByUser(1)
	assert.Empty(t, rows)
}

func TestEnsureSubscriptionInsertRaceReReads(t *testing.T) {
	repo := newFakeRepo()
	freeID := repo.planID(t, models.PlanFree)
	repo.createErr = errors.New("duplicate key")
	repo.beforeCreateFail = func(r *fakeRepo) {
		// Concurrent request won the race and created the row first.
		r.addSub(1, freeID, time.Now())
	}

	svc := NewService(repo)
	snap, created, err := svc.EnsureSubscription(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, models.PlanFree, snap.PlanName)
	rows, _ := repo.ListByUser(1)
	assert.Len(t, rows, 1)
}

func TestChangePlanCreatesWhenMissing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	snap, err := svc.ChangePlan(context.Background(), 1, models.PlanBusiness)
	require.NoError(t, err)

	assert.Equal(t, models.PlanBusiness, snap.PlanName)
	assert.Equal(t, 14.99, snap.Price)
	rows, _ := repo.ListByUser(1)
	assert.Len(t, rows, 1)
}

func TestChangePlanIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	first, err := svc.ChangePlan(context.Background(), 1, models.PlanPro)
	require.NoError(t, err)
	second, err := svc.ChangePlan(context.Background(), 1, models.PlanPro)
	require.NoError(t, err)

	assert.Equal(t, first.PlanName, second.PlanName)
	rows, _ := repo.ListByUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, repo.planID(t, models.PlanPro), rows[0].PlanID)
}

func TestChangePlanInvalidPlanMutatesNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.addSub(1, repo.planID(t, models.PlanFree), time.Now())
	svc := NewService(repo)

	_, err := svc.ChangePlan(context.Background(), 1, "enterprise")
	require.ErrorIs(t, err, ErrInvalidPlan)

	assert.Zero(t, repo.creates)
	assert.Zero(t, repo.updates)
	assert.Zero(t, repo.deletes)
}

func TestChangePlanCollapsesDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r1 := repo.addSub(1, repo.planID(t, models.PlanFree), t1)
	repo.addSub(1, repo.planID(t, models.PlanFree), t1.Add(time.Second))
	repo.addSub(1, repo.planID(t, models.PlanPro), t1.Add(time.Minute))

	snap, err := svc.ChangePlan(context.Background(), 1, models.PlanBusiness)
	require.NoError(t, err)

	assert.Equal(t, models.PlanBusiness, snap.PlanName)
	rows, _ := repo.ListByUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, r1.ID, rows[0].ID, "earliest row keeps the assignment")
	assert.Equal(t, repo.planID(t, models.PlanBusiness), rows[0].PlanID)
}

func TestCurrentSnapshotRequiresSubscription(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.CurrentSnapshot(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoSubscription)
}

func TestCurrentSnapshotCollapsesDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r1 := repo.addSub(1, repo.planID(t, models.PlanBusiness), t1)
	repo.addSub(1, repo.planID(t, models.PlanFree), t1.Add(time.Hour))

	snap, err := svc.CurrentSnapshot(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, r1.ID, snap.SubscriptionID)
	assert.Equal(t, models.PlanBusiness, snap.PlanName)
	rows, _ := repo.ListByUser(1)
	assert.Len(t, rows, 1)
}
