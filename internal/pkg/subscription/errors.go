package subscription

import "errors"

var (
	// ErrInvalidPlan is returned when a requested plan name does not exist in
	// the catalog. No mutation has been performed.
	ErrInvalidPlan = errors.New("invalid plan selected")

	// ErrFreePlanMissing means the catalog has no free plan to assign. This is
	// an operator-level misconfiguration, not a retryable condition.
	ErrFreePlanMissing = errors.New("free plan not found in catalog")

	// ErrNoSubscription is returned by CurrentSnapshot when the user has no
	// subscription row yet.
	ErrNoSubscription = errors.New("no subscription for user")
)
