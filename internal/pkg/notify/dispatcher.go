// Package notify delivers transactional messages (welcome, activation and
// edit-access confirmations) on a best-effort basis. Callers fire and
// forget: a grant is never blocked or rolled back because its confirmation
// could not be sent. What cannot be delivered immediately lands in a
// durable backlog and is retried in the background.
package notify

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/app/repository"
	"github.com/lumeboard/lumeboard/internal/pkg/cache"
	"github.com/lumeboard/lumeboard/internal/pkg/jobqueue"
	"github.com/lumeboard/lumeboard/internal/pkg/keylock"
	"github.com/lumeboard/lumeboard/internal/pkg/mail"
)

// Retry policy shared by the queue path and the backlog sweeper
const (
	MaxAttempts    = 3
	SweepBatchSize = 3
)

// Mode is the delivery path resolved once at startup from capability
// probes. There are no nested runtime fallback conditionals: each Send
// follows its mode, with exactly one escape hatch (queue enqueue failure
// degrades to a direct send).
type Mode string

const (
	// ModeBacklogOnly: no SMTP transport configured; messages are
	// persisted straight to the backlog and never sent.
	ModeBacklogOnly Mode = "backlog_only"
	// ModeQueue: transport and Redis queue available; delivery runs on
	// the durable job queue with its retry policy.
	ModeQueue Mode = "queue"
	// ModeDirect: transport configured but queue unavailable; synchronous
	// send with backlog fallback, swept in the background.
	ModeDirect Mode = "direct"
)

// Enqueuer is the durable job queue surface the dispatcher needs
type Enqueuer interface {
	EnqueueJob(jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// Dispatcher routes messages along the delivery path picked at startup
type Dispatcher struct {
	mode          Mode
	transport     mail.Transport
	queue         Enqueuer
	notifications repository.NotificationRepository
	locks         *keylock.KeyLock
}

// NewDispatcher creates a dispatcher with an explicit mode (used by tests)
func NewDispatcher(mode Mode, transport mail.Transport, queue Enqueuer, notifications repository.NotificationRepository) *Dispatcher {
	return &Dispatcher{
		mode:          mode,
		transport:     transport,
		queue:         queue,
		notifications: notifications,
		locks:         keylock.New(),
	}
}

// ResolveMode probes the delivery capabilities once
func ResolveMode() Mode {
	if !mail.IsConfigured() {
		return ModeBacklogOnly
	}
	if cache.IsAvailable() {
		return ModeQueue
	}
	return ModeDirect
}

// NewDispatcherFromEnv resolves the mode from capability probes and wires
// the production transport and queue
func NewDispatcherFromEnv(notifications repository.NotificationRepository) *Dispatcher {
	mode := ResolveMode()

	var queue Enqueuer
	if mode == ModeQueue {
		queue = jobqueue.GetManager().GetQueue()
	}

	log.Infof("[Notify] Delivery mode: %s", mode)
	return NewDispatcher(mode, mail.NewSMTPTransport(), queue, notifications)
}

// Mode returns the resolved delivery mode
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// Send dispatches one message. It never returns an error to the business
// caller; failures are absorbed into the backlog.
func (d *Dispatcher) Send(recipient, subject, body string) {
	switch d.mode {
	case ModeBacklogOnly:
		d.persistPending(recipient, subject, body, "")
	case ModeQueue:
		payload := jobqueue.SendEmailJobPayload{
			Recipient: recipient,
			Subject:   subject,
			Body:      body,
		}
		if _, err := d.queue.EnqueueJob(jobqueue.JobTypeSendEmail, payload.ToMap()); err != nil {
			log.Errorf("[Notify] Enqueue failed, falling back to direct send: %v", err)
			d.sendDirect(recipient, subject, body)
		}
	case ModeDirect:
		d.sendDirect(recipient, subject, body)
	}
}

func (d *Dispatcher) sendDirect(recipient, subject, body string) {
	if err := d.transport.Send(recipient, subject, body); err != nil {
		log.Errorf("[Notify] Direct send to %s failed, parking in backlog: %v", recipient, err)
		d.persistPending(recipient, subject, body, err.Error())
	}
}

func (d *Dispatcher) persistPending(recipient, subject, body, lastError string) {
	record := &models.PendingNotification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    models.NotificationStatusPending,
		Attempts:  0,
		LastError: lastError,
	}
	if err := d.notifications.Create(record); err != nil {
		log.Errorf("[Notify] Failed to persist backlog record for %s: %v", recipient, err)
	}
}

func recordKey(id uint) string {
	return fmt.Sprintf("notification:%d", id)
}
