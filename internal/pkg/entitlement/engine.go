// Package entitlement is the state machine that turns verified payments
// into time-boxed grants and answers the single gating question every
// protected operation asks: is this user effectively entitled right now.
package entitlement

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/app/repository"
	"github.com/lumeboard/lumeboard/internal/pkg/activationcode"
	"github.com/lumeboard/lumeboard/internal/pkg/env"
	"github.com/lumeboard/lumeboard/internal/pkg/keylock"
)

var (
	// ErrAlreadyActive means the user already holds an effectively active
	// grant of the requested kind. A domain rejection, not a failure.
	ErrAlreadyActive = errors.New("an active entitlement of this kind already exists")
	// ErrUserNotFound means the subject user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownKind means the kind is not activation or edit_access
	ErrUnknownKind = errors.New("unknown entitlement kind")
)

const (
	defaultActivationValidDays = 30
	defaultEditAccessValidHrs  = 24
)

// Engine issues entitlements and evaluates effective activity. All record
// access goes through the injected repositories; the keyed lock makes the
// check-then-issue sequence atomic per (user, kind) so two concurrent
// requests cannot both pass the uniqueness check.
type Engine struct {
	entitlements repository.EntitlementRepository
	users        repository.UserRepository
	audit        repository.AuditRepository
	locks        *keylock.KeyLock

	activationValidity time.Duration
	editAccessValidity time.Duration

	now func() time.Time
}

// NewEngine creates an engine over the given repositories with explicit
// validity windows
func NewEngine(
	entitlements repository.EntitlementRepository,
	users repository.UserRepository,
	audit repository.AuditRepository,
	activationValidity time.Duration,
	editAccessValidity time.Duration,
) *Engine {
	return &Engine{
		entitlements:       entitlements,
		users:              users,
		audit:              audit,
		locks:              keylock.New(),
		activationValidity: activationValidity,
		editAccessValidity: editAccessValidity,
		now:                time.Now,
	}
}

// NewEngineFromEnv creates an engine with validity windows taken from
// ACTIVATION_VALID_DAYS (default 30) and EDIT_ACCESS_VALID_HOURS (default 24)
func NewEngineFromEnv(repos *repository.Repositories) *Engine {
	days := envInt("ACTIVATION_VALID_DAYS", defaultActivationValidDays)
	hours := envInt("EDIT_ACCESS_VALID_HOURS", defaultEditAccessValidHrs)

	return NewEngine(
		repos.Entitlement,
		repos.User,
		repos.Audit,
		time.Duration(days)*24*time.Hour,
		time.Duration(hours)*time.Hour,
	)
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(env.GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}

// IsEffectivelyActive reports whether the user currently holds a grant of
// the given kind whose stored status is active and whose expiry has not
// passed. This predicate is the only gate consulted by downstream
// create/edit decisions; expiry never requires a write.
func (e *Engine) IsEffectivelyActive(userID uint, kind string) (bool, error) {
	_, err := e.entitlements.FindEffective(userID, kind, e.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Issue creates a grant backed by a verified on-chain payment. The
// uniqueness check and the insert run under a per-(user, kind) lock, so a
// duplicate issued concurrently is rejected rather than doubled.
func (e *Engine) Issue(userID uint, kind, paymentMethod string, amountUSD float64, txRef string) (*models.Entitlement, error) {
	validity, err := e.validityFor(kind)
	if err != nil {
		return nil, err
	}

	key := issueKey(userID, kind)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	if err := e.rejectIfActive(userID, kind); err != nil {
		return nil, err
	}

	entitlement, err := e.create(userID, kind, paymentMethod, amountUSD, txRef, validity)
	if err != nil {
		return nil, err
	}

	e.appendAudit(fmt.Sprintf("user:%d", userID), userID, models.AuditActionIssue,
		fmt.Sprintf("kind=%s method=%s amount=%.2f tx=%s", kind, paymentMethod, amountUSD, txRef))

	return entitlement, nil
}

// IssueManual creates a grant without a payment, on administrative
// authority. The amount is recorded as zero and the payment method as
// manual so chain-verified and hand-issued grants stay distinguishable in
// the audit trail.
func (e *Engine) IssueManual(actor string, userID uint, kind string) (*models.Entitlement, error) {
	validity, err := e.validityFor(kind)
	if err != nil {
		return nil, err
	}

	if _, err := e.users.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	key := issueKey(userID, kind)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	if err := e.rejectIfActive(userID, kind); err != nil {
		return nil, err
	}

	entitlement, err := e.create(userID, kind, models.PaymentMethodManual, 0, models.ManualTxRef, validity)
	if err != nil {
		return nil, err
	}

	e.appendAudit(actor, userID, models.AuditActionIssueManual, fmt.Sprintf("kind=%s", kind))

	return entitlement, nil
}

// ListForUser returns every grant a user has ever held, newest first
func (e *Engine) ListForUser(userID uint) ([]models.Entitlement, error) {
	return e.entitlements.ListByUser(userID)
}

func (e *Engine) rejectIfActive(userID uint, kind string) error {
	_, err := e.entitlements.FindEffective(userID, kind, e.now())
	if err == nil {
		return ErrAlreadyActive
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (e *Engine) create(userID uint, kind, paymentMethod string, amountUSD float64, txRef string, validity time.Duration) (*models.Entitlement, error) {
	now := e.now()
	entitlement := &models.Entitlement{
		UserID:        userID,
		Kind:          kind,
		PaymentMethod: paymentMethod,
		AmountUSD:     amountUSD,
		TxRef:         txRef,
		Status:        models.EntitlementStatusActive,
		IssuedAt:      now,
		ExpiresAt:     now.Add(validity),
	}
	if kind == models.EntitlementKindActivation {
		entitlement.ActivationCode = activationcode.Generate()
	}

	if err := e.entitlements.Create(entitlement); err != nil {
		return nil, err
	}
	return entitlement, nil
}

func (e *Engine) validityFor(kind string) (time.Duration, error) {
	switch kind {
	case models.EntitlementKindActivation:
		return e.activationValidity, nil
	case models.EntitlementKindEditAccess:
		return e.editAccessValidity, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func (e *Engine) appendAudit(actor string, userID uint, action, detail string) {
	entry := &models.AuditLog{
		Actor:  actor,
		UserID: userID,
		Action: action,
		Detail: detail,
	}
	// The grant exists either way; a failed audit write must not undo it
	_ = e.audit.Append(entry)
}

func issueKey(userID uint, kind string) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}
