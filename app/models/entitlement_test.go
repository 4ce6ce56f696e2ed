package models

import (
	"testing"
	"time"
)

func TestEntitlement_IsEffectivelyActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		expiry time.Time
		want   bool
	}{
		{"active inside window", EntitlementStatusActive, now.Add(time.Hour), true},
		{"active exactly at expiry", EntitlementStatusActive, now, true},
		{"active past expiry", EntitlementStatusActive, now.Add(-time.Second), false},
		{"stored expired inside window", EntitlementStatusExpired, now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entitlement{Status: tt.status, ExpiresAt: tt.expiry}
			if got := e.IsEffectivelyActive(now); got != tt.want {
				t.Fatalf("IsEffectivelyActive = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntitlement_EffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e := &Entitlement{Status: EntitlementStatusActive, ExpiresAt: now.Add(time.Hour)}
	if got := e.EffectiveStatus(now); got != EntitlementStatusActive {
		t.Fatalf("EffectiveStatus = %q, want active", got)
	}

	e.ExpiresAt = now.Add(-time.Second)
	if got := e.EffectiveStatus(now); got != EntitlementStatusExpired {
		t.Fatalf("EffectiveStatus = %q, want expired", got)
	}
}
