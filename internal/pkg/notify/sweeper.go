package notify

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lumeboard/lumeboard/app/models"
)

const DefaultSweepInterval = time.Minute

// Sweeper retries backlog records in the background. It runs only in
// ModeDirect; in ModeQueue the job queue owns retries, and in
// ModeBacklogOnly there is no transport to retry against.
type Sweeper struct {
	dispatcher *Dispatcher
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewSweeper creates a sweeper over the dispatcher's backlog
func NewSweeper(dispatcher *Dispatcher, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		dispatcher: dispatcher,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	log.Infof("[Notify] Sweeper running (interval=%s, batch=%d)", s.interval, SweepBatchSize)
	s.wg.Add(1)
	go s.loop()
}

// Stop terminates the sweep loop
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	close(s.stopCh)
	s.wg.Wait()
	log.Info("[Notify] Sweeper stopped")
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce retries up to SweepBatchSize backlog records. Records whose
// attempt counter has reached the ceiling are terminal and never selected.
func (s *Sweeper) SweepOnce() {
	records, err := s.dispatcher.notifications.FindSweepable(SweepBatchSize, MaxAttempts)
	if err != nil {
		log.Errorf("[Notify] Sweep query failed: %v", err)
		return
	}

	for i := range records {
		s.retry(&records[i])
	}
}

// retry claims one record and attempts delivery. The per-record lock keeps
// a concurrent direct send from double-delivering the same message.
func (s *Sweeper) retry(record *models.PendingNotification) {
	d := s.dispatcher

	key := recordKey(record.ID)
	d.locks.Lock(key)
	defer d.locks.Unlock(key)

	// Re-read under the lock: the record may have been delivered and
	// removed while we waited.
	current, err := d.notifications.GetByID(record.ID)
	if err != nil {
		return
	}
	if current.Attempts >= MaxAttempts {
		return
	}

	if err := d.transport.Send(current.Recipient, current.Subject, current.Body); err != nil {
		now := time.Now()
		current.Attempts++
		current.LastAttemptAt = &now
		current.LastError = err.Error()
		current.Status = models.NotificationStatusFailed
		if updateErr := d.notifications.Update(current); updateErr != nil {
			log.Errorf("[Notify] Failed to record attempt on backlog record %d: %v", current.ID, updateErr)
		}
		if current.Attempts >= MaxAttempts {
			log.Errorf("[Notify] Backlog record %d permanently failed after %d attempts: %v", current.ID, current.Attempts, err)
		}
		return
	}

	if err := d.notifications.Delete(current.ID); err != nil {
		log.Errorf("[Notify] Failed to remove delivered backlog record %d: %v", current.ID, err)
	}
}
