package models

import (
	"time"
)

// Entitlement kinds
const (
	EntitlementKindActivation = "activation"
	EntitlementKindEditAccess = "edit_access"
)

// Payment methods an entitlement can be issued through. Manual grants carry
// a sentinel transaction reference so audit queries can tell them apart.
const (
	PaymentMethodTRC20  = "usdt_trc20"
	PaymentMethodBEP20  = "usdt_bep20"
	PaymentMethodManual = "manual"

	ManualTxRef = "manual"
)

const (
	EntitlementStatusActive  = "active"
	EntitlementStatusExpired = "expired"
)

// Entitlement is a time-boxed grant. Records are written once and never
// mutated; whether a grant still applies is derived from ExpiresAt at read
// time, the stored status is not eagerly transitioned.
type Entitlement struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_entitlements_user_kind,priority:1" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
	Kind           string    `gorm:"type:varchar(20);not null;index:idx_entitlements_user_kind,priority:2" json:"kind" validate:"oneof=activation edit_access"`
	PaymentMethod  string    `gorm:"type:varchar(20);not null" json:"payment_method" validate:"oneof=usdt_trc20 usdt_bep20 manual"`
	AmountUSD      float64   `gorm:"not null;default:0" json:"amount_usd"`
	TxRef          string    `gorm:"type:varchar(128);not null" json:"tx_ref"`
	ActivationCode string    `gorm:"type:varchar(20);default:null" json:"activation_code,omitempty"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt      time.Time `gorm:"not null;index" json:"expires_at"`
}

// IsEffectivelyActive reports whether the grant applies at the given instant:
// stored status active and expiry not yet passed. No write is ever needed for
// a grant to stop applying.
func (e *Entitlement) IsEffectivelyActive(now time.Time) bool {
	return e.Status == EntitlementStatusActive && !e.ExpiresAt.Before(now)
}

// EffectiveStatus returns the status as seen by callers, deriving "expired"
// from the expiry timestamp.
func (e *Entitlement) EffectiveStatus(now time.Time) string {
	if e.Status == EntitlementStatusActive && e.ExpiresAt.Before(now) {
		return EntitlementStatusExpired
	}
	return e.Status
}
