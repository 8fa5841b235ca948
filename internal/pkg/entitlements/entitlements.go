package entitlements

import (
	"time"

	"github.com/pennywiseapp/pennywise/app/models"
)

// Snapshot is the derived join of a subscription and its plan. It is computed
// fresh on each query and never persisted.
type Snapshot struct {
	SubscriptionID uint               `json:"subscription_id"`
	UserID         uint               `json:"user_id"`
	PlanID         uint               `json:"plan_id"`
	PlanName       string             `json:"plan_name"`
	DisplayName    string             `json:"display_name"`
	Price          float64            `json:"price"`
	Features       models.FeatureList `json:"features"`
	CanExportCSV   bool               `json:"can_export_csv"`
	CanExportPDF   bool               `json:"can_export_pdf"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Resolve derives the capability snapshot for a subscription bound to a plan.
// Pure function of its inputs.
func Resolve(sub *models.Subscription, plan *models.Plan) Snapshot {
	return Snapshot{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		DisplayName:    plan.DisplayName,
		Price:          plan.Price,
		Features:       plan.Features,
		CanExportCSV:   plan.CanExportCSV,
		CanExportPDF:   plan.CanExportPDF,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	}
}
