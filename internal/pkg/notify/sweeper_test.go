package notify

import (
	"testing"
	"time"

	"github.com/lumeboard/lumeboard/app/models"
)

func seedBacklog(repo *fakeNotificationRepo, status string, attempts, count int) {
	for i := 0; i < count; i++ {
		repo.Create(&models.PendingNotification{
			Recipient: "user@example.com",
			Subject:   "Subject",
			Body:      "body",
			Status:    status,
			Attempts:  attempts,
		})
	}
}

func TestSweepOnce_DeliversAndRemoves(t *testing.T) {
	transport := &fakeTransport{}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, time.Minute)

	seedBacklog(repo, models.NotificationStatusPending, 0, 2)

	s.SweepOnce()

	if transport.sentCount() != 2 {
		t.Fatalf("sent %d, want 2", transport.sentCount())
	}
	if repo.size() != 0 {
		t.Fatalf("%d records remain after successful sweep, want 0", repo.size())
	}
}

func TestSweepOnce_BatchLimit(t *testing.T) {
	transport := &fakeTransport{}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, time.Minute)

	seedBacklog(repo, models.NotificationStatusPending, 0, 5)

	s.SweepOnce()

	if transport.sentCount() != SweepBatchSize {
		t.Fatalf("one pass sent %d, want the batch size %d", transport.sentCount(), SweepBatchSize)
	}
	if repo.size() != 5-SweepBatchSize {
		t.Fatalf("%d records remain, want %d", repo.size(), 5-SweepBatchSize)
	}
}

func TestSweepOnce_FailureIncrementsAttempts(t *testing.T) {
	transport := &fakeTransport{fails: true}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, time.Minute)

	seedBacklog(repo, models.NotificationStatusPending, 0, 1)

	s.SweepOnce()

	record, err := repo.GetByID(1)
	if err != nil {
		t.Fatalf("record disappeared: %v", err)
	}
	if record.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", record.Attempts)
	}
	if record.Status != models.NotificationStatusFailed {
		t.Fatalf("status = %q, want failed", record.Status)
	}
	if record.LastAttemptAt == nil {
		t.Fatal("expected the attempt timestamp to be recorded")
	}
}

func TestSweepOnce_CeilingIsTerminal(t *testing.T) {
	transport := &fakeTransport{fails: true}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, time.Minute)

	seedBacklog(repo, models.NotificationStatusPending, 0, 1)

	// Three sweeps exhaust the attempt budget
	for i := 0; i < MaxAttempts; i++ {
		s.SweepOnce()
	}
	record, _ := repo.GetByID(1)
	if record.Attempts != MaxAttempts {
		t.Fatalf("attempts = %d, want %d", record.Attempts, MaxAttempts)
	}

	// Even a now-healthy transport never sees a terminal record
	transport.fails = false
	s.SweepOnce()

	if transport.sentCount() != 0 {
		t.Fatal("a record at the attempt ceiling must never be retried")
	}
	if repo.size() != 1 {
		t.Fatal("terminal records stay in the backlog for inspection")
	}
}

func TestSweepOnce_SkipsRecordsAtCeilingAmongRetryable(t *testing.T) {
	transport := &fakeTransport{}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, time.Minute)

	seedBacklog(repo, models.NotificationStatusFailed, MaxAttempts, 5)
	seedBacklog(repo, models.NotificationStatusPending, 0, 3)

	s.SweepOnce()

	// Only the three pending records are eligible; the five exhausted ones
	// must not occupy batch slots.
	if transport.sentCount() != 3 {
		t.Fatalf("sent %d, want 3", transport.sentCount())
	}
	if repo.size() != 5 {
		t.Fatalf("%d records remain, want the 5 terminal ones", repo.size())
	}
}

func TestSweeper_StartStop(t *testing.T) {
	transport := &fakeTransport{}
	repo := newFakeNotificationRepo()
	d := NewDispatcher(ModeDirect, transport, nil, repo)
	s := NewSweeper(d, 10*time.Millisecond)

	seedBacklog(repo, models.NotificationStatusPending, 0, 1)

	s.Start()
	s.Start() // second Start is a no-op

	deadline := time.After(2 * time.Second)
	for repo.size() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not drain the backlog in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()
	s.Stop() // second Stop is a no-op
}
