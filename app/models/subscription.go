package models

import "time"

// Subscription binds one user to one plan. At most one row per user is
// intended; the column is deliberately a plain index because concurrent
// creation can still produce duplicates, which the subscription service
// collapses on the next read.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PlanID    uint      `gorm:"not null;index" json:"plan_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Plan Plan `gorm:"foreignKey:PlanID" json:"-"`
}

// TableName keeps the table aligned with the original schema naming.
func (Subscription) TableName() string {
	return "user_subscriptions"
}
