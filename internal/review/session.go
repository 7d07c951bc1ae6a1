// Package review drives one reviewed posting at a time: extraction through the
// page agent, reconciliation with the record store, submission, and the
// best-effort save on the source site.
package review

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/models"
	"go-jobposting-collector/internal/pageagent"
	"go-jobposting-collector/internal/prefs"
)

// DefaultSaveTimeout caps how long a save request may take before it is
// reported as timed out.
const DefaultSaveTimeout = 3 * time.Second

var (
	ErrWrongPage  = errors.New("not a LinkedIn job page")
	ErrStaleRun   = errors.New("run replaced by a newer page")
	ErrIncomplete = errors.New("required fields missing")
	ErrNoRun      = errors.New("no active run")
)

// Backend is the record API as seen by a run.
type Backend interface {
	CheckExists(ctx context.Context, postingURL string) (*models.ExistingRecordRef, error)
	Submit(ctx context.Context, rec models.JobRecord, existing *models.ExistingRecordRef) (*backend.SubmitResponse, error)
}

// TabOpener shows a URL to the reviewer.
type TabOpener interface {
	Open(ctx context.Context, url string) error
}

// Session owns the single active run.
type Session struct {
	channel     pageagent.Channel
	backend     Backend
	prefs       prefs.Store
	tabs        TabOpener
	log         logrus.FieldLogger
	saveTimeout time.Duration

	runID   atomic.Uint64
	mu      sync.Mutex
	current *Run
}

func NewSession(channel pageagent.Channel, client Backend, store prefs.Store, tabs TabOpener, log logrus.FieldLogger) *Session {
	return &Session{
		channel:     channel,
		backend:     client,
		prefs:       store,
		tabs:        tabs,
		log:         log,
		saveTimeout: DefaultSaveTimeout,
	}
}

// SetSaveTimeout overrides DefaultSaveTimeout. Non-positive values are ignored.
func (s *Session) SetSaveTimeout(d time.Duration) {
	if d > 0 {
		s.saveTimeout = d
	}
}

// Navigate starts a fresh run for pageURL. Any earlier run becomes stale and
// its pending results are discarded.
func (s *Session) Navigate(pageURL string) *Run {
	id := s.runID.Add(1)
	run := &Run{
		id:      id,
		session: s,
		pageURL: pageURL,
		state:   StateIdle,
		log: s.log.WithFields(logrus.Fields{
			"run":      id,
			"page_url": pageURL,
		}),
	}

	s.mu.Lock()
	s.current = run
	s.mu.Unlock()
	return run
}

// Current returns the active run, or nil before the first Navigate.
func (s *Session) Current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) isCurrent(id uint64) bool {
	return s.runID.Load() == id
}

// AutoSave reports the stored preference. A read failure falls back to the
// default of true.
func (s *Session) AutoSave() bool {
	enabled, err := s.prefs.AutoSave()
	if err != nil {
		s.log.WithError(err).Warn("⚠️ Failed to read preferences, using default")
	}
	return enabled
}

// SetAutoSave persists the preference for later runs.
func (s *Session) SetAutoSave(enabled bool) error {
	if err := s.prefs.SetAutoSave(enabled); err != nil {
		return err
	}
	s.log.WithField("enabled", enabled).Info("✅ Auto-save preference updated")
	return nil
}
