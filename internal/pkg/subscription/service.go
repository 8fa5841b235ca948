package subscription

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pennywiseapp/pennywise/app/models"
	"github.com/pennywiseapp/pennywise/internal/pkg/entitlements"
)

// Service guarantees the one-subscription-per-user invariant and applies plan
// changes. Duplicate rows can appear when concurrent requests race on first
// access; the service collapses them to the earliest-created row on the next
// read instead of preventing the race up front.
type Service struct {
	repo Repository
}

// NewService creates a subscription service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// EnsureSubscription makes sure the user has exactly one subscription row and
// returns its entitlement snapshot. A missing row is assigned the free plan;
// duplicate rows are collapsed to the earliest one. The created flag reports
// whether this call inserted the row.
func (s *Service) EnsureSubscription(ctx context.Context, userID uint) (entitlements.Snapshot, bool, error) {
	_ = ctx
	if userID == 0 {
		return entitlements.Snapshot{}, false, errors.New("user_id is required")
	}

	st, err := s.loadState(userID)
	if err != nil {
		return entitlements.Snapshot{}, false, err
	}

	switch st.kind {
	case stateSingle:
		snap, err := s.snapshotFor(st.canonical())
		return snap, false, err

	case stateDuplicate:
		sub, err := s.collapse(userID, st)
		if err != nil {
			return entitlements.Snapshot{}, false, err
		}
		snap, err := s.snapshotFor(sub)
		return snap, false, err

	default: // stateNone
		freePlan, err := s.repo.GetPlanByName(models.PlanFree)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entitlements.Snapshot{}, false, ErrFreePlanMissing
			}
			return entitlements.Snapshot{}, false, err
		}

		sub := &models.Subscription{UserID: userID, PlanID: freePlan.ID}
		if createErr := s.repo.Create(sub); createErr != nil {
			// A concurrent request may have created the row first. Re-read and
			// continue with the winner; surface the error only if the user
			// still has no subscription.
			st, err := s.loadState(userID)
			if err != nil {
				return entitlements.Snapshot{}, false, err
			}
			if st.kind == stateNone {
				return entitlements.Snapshot{}, false, createErr
			}
			winner := st.canonical()
			if st.kind == stateDuplicate {
				if winner, err = s.collapse(userID, st); err != nil {
					return entitlements.Snapshot{}, false, err
				}
			}
			snap, err := s.snapshotFor(winner)
			return snap, false, err
		}

		snap := entitlements.Resolve(sub, freePlan)
		return snap, true, nil
	}
}

// ChangePlan switches the user to the named plan and returns the resulting
// snapshot. Unknown plan names fail before any mutation. The operation is
// idempotent in outcome: afterwards exactly one row exists, bound to the
// requested plan.
func (s *Service) ChangePlan(ctx context.Context, userID uint, planName string) (entitlements.Snapshot, error) {
	_ = ctx
	if userID == 0 {
		return entitlements.Snapshot{}, errors.New("user_id is required")
	}

	plan, err := s.repo.GetPlanByName(planName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.Snapshot{}, ErrInvalidPlan
		}
		return entitlements.Snapshot{}, err
	}

	st, err := s.loadState(userID)
	if err != nil {
		return entitlements.Snapshot{}, err
	}

	if st.kind == stateNone {
		sub := &models.Subscription{UserID: userID, PlanID: plan.ID}
		if err := s.repo.Create(sub); err != nil {
			return entitlements.Snapshot{}, err
		}
		return entitlements.Resolve(sub, plan), nil
	}

	canonical := st.canonical()
	if err := s.repo.UpdatePlan(canonical.ID, plan.ID); err != nil {
		return entitlements.Snapshot{}, err
	}
	if st.kind == stateDuplicate {
		deleted, err := s.repo.DeleteOthers(userID, canonical.ID)
		if err != nil {
			return entitlements.Snapshot{}, err
		}
		log.Warnf("[Subscription] removed %d duplicate rows for user %d during plan change", deleted, userID)
	}

	updated, err := s.repo.Get(canonical.ID)
	if err != nil {
		return entitlements.Snapshot{}, err
	}
	return entitlements.Resolve(updated, plan), nil
}

// CurrentSnapshot returns the snapshot for the user's subscription without
// assigning a default. Duplicate rows are still collapsed on the way.
func (s *Service) CurrentSnapshot(ctx context.Context, userID uint) (entitlements.Snapshot, error) {
	_ = ctx
	st, err := s.loadState(userID)
	if err != nil {
		return entitlements.Snapshot{}, err
	}

	switch st.kind {
	case stateNone:
		return entitlements.Snapshot{}, ErrNoSubscription
	case stateDuplicate:
		sub, err := s.collapse(userID, st)
		if err != nil {
			return entitlements.Snapshot{}, err
		}
		return s.snapshotFor(sub)
	default:
		return s.snapshotFor(st.canonical())
	}
}

func (s *Service) loadState(userID uint) (state, error) {
	rows, err := s.repo.ListByUser(userID)
	if err != nil {
		return state{}, err
	}
	return stateOf(rows), nil
}

// collapse keeps the earliest-created row and deletes the rest.
func (s *Service) collapse(userID uint, st state) (*models.Subscription, error) {
	canonical := st.canonical()
	deleted, err := s.repo.DeleteOthers(userID, canonical.ID)
	if err != nil {
		return nil, err
	}
	log.Warnf("[Subscription] removed %d duplicate rows for user %d during reconciliation", deleted, userID)
	return canonical, nil
}

func (s *Service) snapshotFor(sub *models.Subscription) (entitlements.Snapshot, error) {
	plan, err := s.repo.GetPlanByID(sub.PlanID)
	if err != nil {
		return entitlements.Snapshot{}, err
	}
	return entitlements.Resolve(sub, plan), nil
}
