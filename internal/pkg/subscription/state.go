package subscription

import "github.com/pennywiseapp/pennywise/app/models"

type stateKind int

const (
	stateNone stateKind = iota
	stateSingle
	stateDuplicate
)

// state is the tagged view of a user's subscription rows, derived from one
// ordered query. Reconciliation and plan changes both work off this value so
// their duplicate handling cannot diverge.
type state struct {
	kind stateKind
	rows []models.Subscription
}

func stateOf(rows []models.Subscription) state {
	switch len(rows) {
	case 0:
		return state{kind: stateNone}
	case 1:
		return state{kind: stateSingle, rows: rows}
	default:
		return state{kind: stateDuplicate, rows: rows}
	}
}

// canonical returns the earliest-created row. Rows arrive ordered by
// created_at, so the first entry wins.
func (s state) canonical() *models.Subscription {
	if len(s.rows) == 0 {
		return nil
	}
	return &s.rows[0]
}
