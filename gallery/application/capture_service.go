package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dfryer1193/camroll/gallery/domain"
	"github.com/rs/zerolog/log"
)

// ErrServiceClosed is reported by inserts submitted after Close.
var ErrServiceClosed = errors.New("capture service is closed")

// RecordWriter is the part of RecordStore the capture service writes through.
type RecordWriter interface {
	Insert(ctx context.Context, locator string, capturedAt int64) (domain.RecordID, error)
	InsertBatch(ctx context.Context, locators []string, capturedAt int64) ([]domain.RecordID, error)
}

// RetryPolicy bounds how often a failed insert is retried.
type RetryPolicy struct {
	Retries  uint64
	Interval time.Duration
}

// PendingInsert is the outcome of an insert running in the background.
type PendingInsert struct {
	done chan struct{}
	id   domain.RecordID
	err  error
}

func newPendingInsert() *PendingInsert {
	return &PendingInsert{done: make(chan struct{})}
}

func (p *PendingInsert) resolve(id domain.RecordID, err error) {
	p.id = id
	p.err = err
	close(p.done)
}

// Done is closed once the insert has finished, successfully or not.
func (p *PendingInsert) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the insert finishes or ctx is done.
func (p *PendingInsert) Wait(ctx context.Context) (domain.RecordID, error) {
	select {
	case <-p.done:
		return p.id, p.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// CaptureService turns capture and gallery events into record inserts.
// Inserts run off the caller's goroutine; failures are logged and dropped
// unless the caller waits on the returned PendingInsert.
type CaptureService struct {
	store   RecordWriter
	retry   RetryPolicy
	session *Session
	now     func() time.Time

	// Service lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewCaptureService(store RecordWriter, retry RetryPolicy) *CaptureService {
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	return &CaptureService{
		store:   store,
		retry:   retry,
		session: &Session{},
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		wg:      &wg,
	}
}

// Close cancels in-flight inserts and waits for them to finish.
func (s *CaptureService) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	return nil
}

func (s *CaptureService) Session() *Session {
	return s.session
}

// Submit inserts a record in the background.
func (s *CaptureService) Submit(locator string, capturedAt int64) *PendingInsert {
	pending := newPendingInsert()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		pending.resolve(0, ErrServiceClosed)
		return pending
	}

	s.wg.Go(func() {
		id, err := s.insertWithRetry(locator, capturedAt)
		if err != nil {
			log.Error().Err(err).Str("locator", locator).Int64("capturedAt", capturedAt).Msg("Failed to save image record")
		} else {
			log.Debug().Int64("id", int64(id)).Str("locator", locator).Msg("Saved image record")
		}
		pending.resolve(id, err)
	})

	return pending
}

// HandleCapture records a successful capture at the current time and leaves
// the camera view. An empty locator is rejected without touching the session.
func (s *CaptureService) HandleCapture(locator string) *PendingInsert {
	if locator == "" {
		pending := newPendingInsert()
		pending.resolve(0, domain.ErrEmptyLocator)
		return pending
	}

	s.session.captured(locator)
	return s.Submit(locator, s.now().UnixMilli())
}

// HandleCaptureError reports a failed capture. Nothing is stored.
func (s *CaptureService) HandleCaptureError(err error) {
	log.Error().Err(err).Msg("Image capture failed")
}

// ImportPicked stores images chosen from the device gallery, stamped with the
// current time.
func (s *CaptureService) ImportPicked(ctx context.Context, locators []string) ([]domain.RecordID, error) {
	ids, err := s.store.InsertBatch(ctx, locators, s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("could not import picked images: %w", err)
	}

	log.Info().Int("count", len(ids)).Msg("Imported picked images")
	return ids, nil
}

func (s *CaptureService) insertWithRetry(locator string, capturedAt int64) (domain.RecordID, error) {
	var id domain.RecordID
	op := func() error {
		var err error
		id, err = s.store.Insert(s.ctx, locator, capturedAt)
		if err != nil && !errors.Is(err, domain.ErrStorageFailure) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Str("locator", locator).Dur("retryIn", next).Msg("Retrying image record insert")
	}

	if err := backoff.RetryNotify(op, s.newBackOff(), notify); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *CaptureService) newBackOff() backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	if s.retry.Interval > 0 {
		exp.InitialInterval = s.retry.Interval
	}
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, s.retry.Retries), s.ctx)
}
