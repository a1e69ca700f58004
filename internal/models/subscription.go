package models

import (
	"time"
)

const (
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusCanceled = "CANCELED"
	SubscriptionStatusExpired  = "EXPIRED"
)

type Subscription struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;index"`
	PlanID uint64 `gorm:"not null;index"`

	Status    string     `gorm:"type:varchar(20);not null;index"`
	StartDate time.Time  `gorm:"type:timestamptz;not null"`
	EndDate   *time.Time `gorm:"type:timestamptz"`

	PaymentProvider        *string `gorm:"type:varchar(50)"`
	ExternalSubscriptionID *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActiveAt reports whether the subscription grants access at t.
// A nil EndDate means no expiry.
func (s *Subscription) IsActiveAt(t time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.EndDate == nil {
		return true
	}
	return t.Before(*s.EndDate)
}
