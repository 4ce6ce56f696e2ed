package entitlement

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// In-memory fakes over the repository interfaces. They mirror the query
// semantics of the gorm implementations, including the ErrRecordNotFound
// contract.

type fakeEntitlementRepo struct {
	mu      sync.Mutex
	records []models.Entitlement
	nextID  uint
}

func (r *fakeEntitlementRepo) Create(e *models.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.records = append(r.records, *e)
	return nil
}

func (r *fakeEntitlementRepo) FindEffective(userID uint, kind string, now time.Time) (*models.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		e := r.records[i]
		if e.UserID == userID && e.Kind == kind && e.IsEffectivelyActive(now) {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEntitlementRepo) ListByUser(userID uint) ([]models.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Entitlement
	for _, e := range r.records {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (r *fakeUserRepo) Create(u *models.User) error { return nil }
func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) UpdateLastLogin(id uint, at time.Time) error { return nil }
func (r *fakeUserRepo) Count() (int64, error)                      { return int64(len(r.users)), nil }

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *fakeAuditRepo) Append(entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByUser(userID uint, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestEngine() (*Engine, *fakeEntitlementRepo, *fakeAuditRepo) {
	entitlements := &fakeEntitlementRepo{}
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Email: "one@example.com"},
	}}
	audit := &fakeAuditRepo{}
	engine := NewEngine(entitlements, users, audit, 30*24*time.Hour, 24*time.Hour)
	return engine, entitlements, audit
}

func TestIssue_SetsWindowAndCode(t *testing.T) {
	engine, _, audit := newTestEngine()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }

	e, err := engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != models.EntitlementStatusActive {
		t.Fatalf("status = %q, want active", e.Status)
	}
	if !e.IssuedAt.Equal(base) {
		t.Fatalf("issued at = %v, want %v", e.IssuedAt, base)
	}
	if want := base.Add(30 * 24 * time.Hour); !e.ExpiresAt.Equal(want) {
		t.Fatalf("expires at = %v, want %v", e.ExpiresAt, want)
	}
	if matched, _ := regexp.MatchString(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`, e.ActivationCode); !matched {
		t.Fatalf("activation code %q does not have the XXXX-XXXX-XXXX shape", e.ActivationCode)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Action != models.AuditActionIssue {
		t.Fatalf("audit action = %q, want %q", audit.entries[0].Action, models.AuditActionIssue)
	}
}

func TestIssue_EditAccessWindowAndNoCode(t *testing.T) {
	engine, _, _ := newTestEngine()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }

	e, err := engine.Issue(1, models.EntitlementKindEditAccess, models.PaymentMethodBEP20, 19, "tx-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := base.Add(24 * time.Hour); !e.ExpiresAt.Equal(want) {
		t.Fatalf("expires at = %v, want %v", e.ExpiresAt, want)
	}
	if e.ActivationCode != "" {
		t.Fatalf("edit access grant carries code %q, want none", e.ActivationCode)
	}
}

func TestIssue_RejectsDuplicateActiveGrant(t *testing.T) {
	engine, _, _ := newTestEngine()

	if _, err := engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-1"); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	_, err := engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-2")
	if !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("err = %v, want ErrAlreadyActive", err)
	}
}

func TestIssue_KindsAreIndependent(t *testing.T) {
	engine, _, _ := newTestEngine()

	if _, err := engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-1"); err != nil {
		t.Fatalf("activation issue failed: %v", err)
	}
	if _, err := engine.Issue(1, models.EntitlementKindEditAccess, models.PaymentMethodTRC20, 19, "tx-2"); err != nil {
		t.Fatalf("an active activation must not block an edit access grant: %v", err)
	}
}

func TestIssue_AllowsReissueAfterExpiry(t *testing.T) {
	engine, _, _ := newTestEngine()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }

	if _, err := engine.Issue(1, models.EntitlementKindEditAccess, models.PaymentMethodTRC20, 19, "tx-1"); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}

	// One second past the 24h window; no write happened in between
	engine.now = func() time.Time { return base.Add(24*time.Hour + time.Second) }

	if _, err := engine.Issue(1, models.EntitlementKindEditAccess, models.PaymentMethodTRC20, 19, "tx-2"); err != nil {
		t.Fatalf("reissue after expiry failed: %v", err)
	}
}

func TestIssue_UnknownKind(t *testing.T) {
	engine, _, _ := newTestEngine()

	_, err := engine.Issue(1, "premium", models.PaymentMethodTRC20, 50, "tx-1")
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestIssueManual(t *testing.T) {
	engine, _, audit := newTestEngine()

	e, err := engine.IssueManual("admin:9", 1, models.EntitlementKindActivation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.PaymentMethod != models.PaymentMethodManual {
		t.Fatalf("payment method = %q, want manual", e.PaymentMethod)
	}
	if e.AmountUSD != 0 {
		t.Fatalf("amount = %v, want 0", e.AmountUSD)
	}
	if e.TxRef != models.ManualTxRef {
		t.Fatalf("tx ref = %q, want %q", e.TxRef, models.ManualTxRef)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Actor != "admin:9" {
		t.Fatalf("audit actor = %q, want admin:9", audit.entries[0].Actor)
	}
	if audit.entries[0].Action != models.AuditActionIssueManual {
		t.Fatalf("audit action = %q, want %q", audit.entries[0].Action, models.AuditActionIssueManual)
	}
}

func TestIssueManual_UnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine()

	_, err := engine.IssueManual("admin:9", 42, models.EntitlementKindActivation)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestIsEffectivelyActive(t *testing.T) {
	engine, repo, _ := newTestEngine()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }

	active, err := engine.IsEffectivelyActive(1, models.EntitlementKindActivation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Fatal("no grant exists yet, expected inactive")
	}

	if _, err := engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	active, _ = engine.IsEffectivelyActive(1, models.EntitlementKindActivation)
	if !active {
		t.Fatal("expected active inside the window")
	}

	// Expiry flips the predicate without any write to the record
	before := len(repo.records)
	engine.now = func() time.Time { return base.Add(30*24*time.Hour + time.Second) }

	active, _ = engine.IsEffectivelyActive(1, models.EntitlementKindActivation)
	if active {
		t.Fatal("expected inactive past the window")
	}
	if len(repo.records) != before {
		t.Fatal("expiry evaluation must not write")
	}
	if repo.records[0].Status != models.EntitlementStatusActive {
		t.Fatal("stored status must stay untouched by reads")
	}
}

func TestIssue_ConcurrentDuplicatesCollapseToOne(t *testing.T) {
	engine, repo, _ := newTestEngine()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Issue(1, models.EntitlementKindActivation, models.PaymentMethodTRC20, 50, "tx-race")
		}(i)
	}
	wg.Wait()

	var granted int
	for _, err := range errs {
		if err == nil {
			granted++
		} else if !errors.Is(err, ErrAlreadyActive) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if granted != 1 {
		t.Fatalf("%d concurrent issues succeeded, want exactly 1", granted)
	}
	if len(repo.records) != 1 {
		t.Fatalf("%d records created, want 1", len(repo.records))
	}
}
