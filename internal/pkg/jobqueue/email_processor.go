package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lumeboard/lumeboard/app/models"
	"github.com/lumeboard/lumeboard/app/repository"
	"github.com/lumeboard/lumeboard/internal/pkg/mail"
)

// EmailProcessor delivers send_email jobs through the mail transport. When
// the queue's retry budget is exhausted the message is written to the
// durable backlog instead of being dropped, so a degraded SMTP relay can
// never lose a confirmation.
type EmailProcessor struct {
	transport     mail.Transport
	notifications repository.NotificationRepository
}

// NewEmailProcessor creates the processor for send_email jobs
func NewEmailProcessor(transport mail.Transport, notifications repository.NotificationRepository) *EmailProcessor {
	return &EmailProcessor{
		transport:     transport,
		notifications: notifications,
	}
}

// Process handles a single job
func (p *EmailProcessor) Process(ctx context.Context, job *Job) error {
	if job.Type != JobTypeSendEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	payload, err := SendEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid send_email payload: %w", err)
	}

	if err := p.transport.Send(payload.Recipient, payload.Subject, payload.Body); err != nil {
		// RetryCount still counts previous failures here; if this was the
		// final attempt, park the message in the backlog for inspection.
		if job.RetryCount+1 >= job.MaxRetries {
			p.parkInBacklog(payload, job, err)
		}
		return err
	}

	return nil
}

func (p *EmailProcessor) parkInBacklog(payload *SendEmailJobPayload, job *Job, sendErr error) {
	now := time.Now()
	record := &models.PendingNotification{
		Recipient:     payload.Recipient,
		Subject:       payload.Subject,
		Body:          payload.Body,
		Status:        models.NotificationStatusFailed,
		Attempts:      job.MaxRetries,
		LastAttemptAt: &now,
		LastError:     sendErr.Error(),
	}
	if err := p.notifications.Create(record); err != nil {
		log.Errorf("[JobQueue] Failed to park message for %s in backlog: %v", payload.Recipient, err)
	}
}
