package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/filter"
	"go-jobposting-collector/internal/models"
	"go-jobposting-collector/internal/pageagent"
	"go-jobposting-collector/internal/scraper"
)

type State string

const (
	StateIdle       State = "idle"
	StateWrongPage  State = "wrong-page"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateFailed     State = "failed"
)

// Mode tells whether a submit creates a record or updates the stored one.
type Mode string

const (
	ModeNew      Mode = "new"
	ModeExisting Mode = "existing"
)

func (m Mode) Label() string {
	if m == ModeExisting {
		return "Update"
	}
	return "Save"
}

// Prefill is what the reviewer starts from.
type Prefill struct {
	Record models.JobRecord
	// Failures names required fields extraction could not fill.
	Failures []string
	Mode     Mode
	Existing *models.ExistingRecordRef
	// AutoSave is false when the save click will be skipped for this run.
	AutoSave bool
	// ExtractionError is set when the page could not be read at all.
	ExtractionError error
}

// Result is a successful submission. Save is nil when no save was attempted,
// otherwise it delivers exactly one outcome and is closed.
type Result struct {
	Created  bool
	Message  string
	Existing models.ExistingRecordRef
	Save     <-chan scraper.SaveOutcome
}

// Run is the state for one reviewed page.
type Run struct {
	id      uint64
	session *Session
	pageURL string
	log     logrus.FieldLogger

	mu              sync.Mutex
	state           State
	existing        *models.ExistingRecordRef
	loginBlocksSave bool
}

func (r *Run) ID() uint64      { return r.id }
func (r *Run) PageURL() string { return r.pageURL }

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existing != nil {
		return ModeExisting
	}
	return ModeNew
}

// Existing returns a copy of the stored record reference, if any.
func (r *Run) Existing() *models.ExistingRecordRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existing == nil {
		return nil
	}
	ref := *r.existing
	return &ref
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) checkCurrent() error {
	if !r.session.isCurrent(r.id) {
		r.log.Debug("🗑️ Discarding result of a replaced run")
		return ErrStaleRun
	}
	return nil
}

// Start extracts the page and reconciles it with the record store. A page
// that cannot be read still yields a ready run: the prefill then holds only
// the posting URL and ExtractionError says why.
func (r *Run) Start(ctx context.Context) (Prefill, error) {
	if !filter.IsJobPage(r.pageURL) {
		r.setState(StateWrongPage)
		r.log.Warn("⚠️ Not a LinkedIn job page")
		return Prefill{}, ErrWrongPage
	}

	rec, extractErr := r.extract(ctx)
	if errors.Is(extractErr, ErrStaleRun) {
		return Prefill{}, extractErr
	}
	if err := ctx.Err(); err != nil {
		return Prefill{}, err
	}
	if extractErr != nil {
		r.log.WithError(extractErr).Warn("⚠️ Could not extract job data, the form can still be filled manually")
		rec = models.NewJobRecord(r.pageURL)
	}

	ref, err := r.session.backend.CheckExists(ctx, rec.PostingURL)
	if err := r.checkCurrent(); err != nil {
		return Prefill{}, err
	}
	if err != nil {
		r.log.WithError(err).Warn("⚠️ Existence check failed, treating posting as new")
		ref = nil
	}

	r.mu.Lock()
	r.existing = ref
	r.state = StateReady
	autoSave := !r.loginBlocksSave
	r.mu.Unlock()

	prefill := Prefill{
		Record:          rec,
		Failures:        rec.MissingRequired(),
		Mode:            r.Mode(),
		Existing:        r.Existing(),
		AutoSave:        autoSave && r.session.AutoSave(),
		ExtractionError: extractErr,
	}
	r.log.WithFields(logrus.Fields{
		"mode":     prefill.Mode,
		"failures": len(prefill.Failures),
	}).Info("📋 Posting ready for review")
	return prefill, nil
}

// extract asks the page agent for the record. Only ErrStaleRun and transport
// or agent failures are returned; a failed login check is logged.
func (r *Run) extract(ctx context.Context) (models.JobRecord, error) {
	_, err := r.send(ctx, pageagent.ActionPing)
	if staleErr := r.checkCurrent(); staleErr != nil {
		return models.JobRecord{}, staleErr
	}
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("page agent not ready: %w", err)
	}

	loginResp, err := r.session.channel.Send(ctx, pageagent.Request{Action: pageagent.ActionCheckLoginState})
	if staleErr := r.checkCurrent(); staleErr != nil {
		return models.JobRecord{}, staleErr
	}
	switch {
	case err != nil:
		r.log.WithError(err).Warn("⚠️ Login check failed, keeping auto-save")
	case loginResp.Error != "" || loginResp.Login == nil:
		r.log.WithField("error", loginResp.Error).Warn("⚠️ Login check failed, keeping auto-save")
	case !loginResp.Login.LoggedIn:
		r.log.Warn("⚠️ Not logged in to LinkedIn, auto-save disabled for this posting")
		r.mu.Lock()
		r.loginBlocksSave = true
		r.mu.Unlock()
	}

	scraped, err := r.send(ctx, pageagent.ActionScrapeData)
	if staleErr := r.checkCurrent(); staleErr != nil {
		return models.JobRecord{}, staleErr
	}
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("failed to extract job data: %w", err)
	}
	if scraped.Record == nil {
		return models.JobRecord{}, errors.New("failed to extract job data: empty response")
	}
	return *scraped.Record, nil
}

// send delivers one request and folds agent-side failures into the error.
func (r *Run) send(ctx context.Context, action pageagent.Action) (pageagent.Response, error) {
	resp, err := r.session.channel.Send(ctx, pageagent.Request{Action: action})
	if err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("%s: %s", action, resp.Error)
	}
	return resp, nil
}

// Submit stores the reviewed record, creating it or updating the one already
// stored for this posting. On success a save click is started in the
// background when enabled; Submit never waits for it.
func (r *Run) Submit(ctx context.Context, rec models.JobRecord) (*Result, error) {
	rec = trimRecord(rec)
	if missing := rec.MissingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	if err := r.checkCurrent(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	existing := r.existing
	r.state = StateSubmitting
	r.mu.Unlock()

	resp, err := r.session.backend.Submit(ctx, rec, existing)
	if staleErr := r.checkCurrent(); staleErr != nil {
		return nil, staleErr
	}
	if err != nil {
		r.mu.Lock()
		r.state = StateFailed
		var subErr *backend.SubmitError
		if errors.As(err, &subErr) && subErr.Kind == backend.KindDuplicate && subErr.Existing != nil && r.existing == nil {
			r.existing = subErr.Existing
			r.log.WithField("existing_id", subErr.Existing.ID).Info("📋 Posting already stored, next submit updates it")
		}
		r.mu.Unlock()
		return nil, err
	}

	r.mu.Lock()
	created := r.existing == nil
	if created {
		r.existing = &models.ExistingRecordRef{ID: resp.ID, URL: resp.URL}
	}
	ref := *r.existing
	r.state = StateSubmitted
	blocked := r.loginBlocksSave
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"id":      ref.ID,
		"created": created,
	}).Info("✅ Job posting stored")

	result := &Result{Created: created, Message: resp.Message, Existing: ref}
	if !blocked && r.session.AutoSave() {
		result.Save = r.startSave()
	}
	return result, nil
}

// startSave sends clickSave on its own goroutine, bounded by the session's
// save timeout.
func (r *Run) startSave() <-chan scraper.SaveOutcome {
	out := make(chan scraper.SaveOutcome, 1)
	timeout := r.session.saveTimeout

	go func() {
		defer close(out)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		outcome := r.save(ctx)
		entry := r.log.WithFields(logrus.Fields{
			"status": outcome.Status,
			"detail": outcome.Detail,
		})
		if outcome.Saved() {
			entry.Info("✅ Saved to LinkedIn")
		} else {
			entry.Warn("⚠️ Could not save to LinkedIn")
		}
		out <- outcome
	}()
	return out
}

// save clicks the save control unless the reviewer has already moved on to
// another page, which shares the same tab.
func (r *Run) save(ctx context.Context) scraper.SaveOutcome {
	if !r.session.isCurrent(r.id) {
		return scraper.SaveOutcome{Status: scraper.SaveSkipped, Detail: "page changed before the save started"}
	}
	resp, err := r.session.channel.Send(ctx, pageagent.Request{Action: pageagent.ActionClickSave})
	return saveOutcome(resp, err)
}

func saveOutcome(resp pageagent.Response, err error) scraper.SaveOutcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return scraper.SaveOutcome{Status: scraper.SaveTimedOut, Detail: "save request timed out"}
	case err != nil:
		return scraper.SaveOutcome{Status: scraper.SaveError, Detail: err.Error()}
	case resp.Error != "":
		return scraper.SaveOutcome{Status: scraper.SaveError, Detail: resp.Error}
	case resp.Save == nil:
		return scraper.SaveOutcome{Status: scraper.SaveError, Detail: "empty response"}
	default:
		return *resp.Save
	}
}

// OpenExisting shows the stored record. It does nothing when none is known.
func (r *Run) OpenExisting(ctx context.Context) error {
	ref := r.Existing()
	if ref == nil || ref.URL == "" {
		return nil
	}
	if r.session.tabs == nil {
		return errors.New("no tab opener configured")
	}
	return r.session.tabs.Open(ctx, ref.URL)
}

func trimRecord(rec models.JobRecord) models.JobRecord {
	rec.Position = strings.TrimSpace(rec.Position)
	rec.Company = strings.TrimSpace(rec.Company)
	rec.PostingURL = strings.TrimSpace(rec.PostingURL)
	rec.City = strings.TrimSpace(rec.City)
	rec.Country = strings.TrimSpace(rec.Country)
	if rec.Origin == "" {
		rec.Origin = models.OriginLinkedIn
	}
	return rec
}
