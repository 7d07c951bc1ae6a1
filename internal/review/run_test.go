package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/models"
	"go-jobposting-collector/internal/pageagent"
	"go-jobposting-collector/internal/prefs"
	"go-jobposting-collector/internal/scraper"
)

const jobURL = "https://www.linkedin.com/jobs/view/777/"

type fakeChannel struct {
	mu        sync.Mutex
	record    models.JobRecord
	loggedIn  bool
	loginErr  error
	pingErr   error
	scrapeErr error
	saveDelay time.Duration
	onScrape  func() // runs before the scrape answer is returned
	actions   []pageagent.Action
}

func (c *fakeChannel) Send(ctx context.Context, req pageagent.Request) (pageagent.Response, error) {
	c.mu.Lock()
	c.actions = append(c.actions, req.Action)
	c.mu.Unlock()

	switch req.Action {
	case pageagent.ActionPing:
		if c.pingErr != nil {
			return pageagent.Response{}, c.pingErr
		}
		return pageagent.Response{Status: pageagent.StatusReady}, nil
	case pageagent.ActionCheckLoginState:
		if c.loginErr != nil {
			return pageagent.Response{}, c.loginErr
		}
		return pageagent.Response{Login: &scraper.LoginState{LoggedIn: c.loggedIn}}, nil
	case pageagent.ActionScrapeData:
		if c.onScrape != nil {
			c.onScrape()
		}
		if c.scrapeErr != nil {
			return pageagent.Response{}, c.scrapeErr
		}
		rec := c.record
		return pageagent.Response{Record: &rec}, nil
	case pageagent.ActionClickSave:
		select {
		case <-time.After(c.saveDelay):
			return pageagent.Response{Save: &scraper.SaveOutcome{Status: scraper.SaveClicked}}, nil
		case <-ctx.Done():
			return pageagent.Response{}, ctx.Err()
		}
	}
	return pageagent.Response{Error: "unknown action"}, nil
}

func (c *fakeChannel) sent(action pageagent.Action) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.actions {
		if a == action {
			n++
		}
	}
	return n
}

type submitCall struct {
	record   models.JobRecord
	existing *models.ExistingRecordRef
}

type fakeBackend struct {
	mu        sync.Mutex
	existing  *models.ExistingRecordRef
	checkErr  error
	submitErr error
	checks    int
	submits   []submitCall
}

func (b *fakeBackend) CheckExists(ctx context.Context, postingURL string) (*models.ExistingRecordRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checks++
	return b.existing, b.checkErr
}

func (b *fakeBackend) Submit(ctx context.Context, rec models.JobRecord, existing *models.ExistingRecordRef) (*backend.SubmitResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submits = append(b.submits, submitCall{record: rec, existing: existing})
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	id := "rec-new"
	if existing != nil {
		id = existing.ID
	}
	return &backend.SubmitResponse{Message: "ok", ID: id, URL: "https://store.example/" + id, JobData: rec}, nil
}

type fakeTabs struct {
	opened []string
}

func (t *fakeTabs) Open(ctx context.Context, url string) error {
	t.opened = append(t.opened, url)
	return nil
}

func scrapedRecord() models.JobRecord {
	rec := models.NewJobRecord(jobURL)
	rec.Position = "Platform Engineer"
	rec.Company = "Initech"
	rec.City = "Berlin"
	return rec
}

func newSession(channel *fakeChannel, client *fakeBackend) (*Session, *fakeTabs, *prefs.Memory) {
	logger, _ := test.NewNullLogger()
	tabs := &fakeTabs{}
	store := &prefs.Memory{}
	return NewSession(channel, client, store, tabs, logger), tabs, store
}

func waitOutcome(t *testing.T, ch <-chan scraper.SaveOutcome) scraper.SaveOutcome {
	t.Helper()
	select {
	case outcome, ok := <-ch:
		require.True(t, ok)
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatal("save outcome never published")
		return scraper.SaveOutcome{}
	}
}

func TestStart_WrongPage(t *testing.T) {
	channel := &fakeChannel{record: scrapedRecord()}
	client := &fakeBackend{}
	session, _, _ := newSession(channel, client)

	run := session.Navigate("https://www.linkedin.com/feed/")
	_, err := run.Start(context.Background())

	assert.ErrorIs(t, err, ErrWrongPage)
	assert.Equal(t, StateWrongPage, run.State())
	assert.Empty(t, channel.actions)
	assert.Zero(t, client.checks)
}

func TestStart_PrefillAndFailures(t *testing.T) {
	rec := models.NewJobRecord(jobURL)
	rec.Company = "Initech"
	channel := &fakeChannel{record: rec, loggedIn: true}
	session, _, _ := newSession(channel, &fakeBackend{})

	prefill, err := session.Navigate(jobURL).Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Position"}, prefill.Failures)
	assert.Equal(t, ModeNew, prefill.Mode)
	assert.Equal(t, "Save", prefill.Mode.Label())
	assert.True(t, prefill.AutoSave)
	assert.Equal(t, 1, channel.sent(pageagent.ActionPing))
}

func TestStart_ExistingRecord(t *testing.T) {
	ref := &models.ExistingRecordRef{ID: "rec-1", URL: "https://store.example/rec-1"}
	session, tabs, _ := newSession(&fakeChannel{record: scrapedRecord(), loggedIn: true}, &fakeBackend{existing: ref})

	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeExisting, prefill.Mode)
	assert.Equal(t, "Update", prefill.Mode.Label())
	assert.Equal(t, ref, prefill.Existing)

	require.NoError(t, run.OpenExisting(context.Background()))
	assert.Equal(t, []string{ref.URL}, tabs.opened)
}

func TestStart_ExistenceCheckFailsOpen(t *testing.T) {
	client := &fakeBackend{checkErr: errors.New("connection refused")}
	session, _, _ := newSession(&fakeChannel{record: scrapedRecord(), loggedIn: true}, client)

	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeNew, prefill.Mode)
	assert.Nil(t, run.Existing())
	assert.Equal(t, StateReady, run.State())
}

func TestStart_LoginState(t *testing.T) {
	t.Run("logged out disables save for the run", func(t *testing.T) {
		channel := &fakeChannel{record: scrapedRecord(), loggedIn: false}
		session, _, store := newSession(channel, &fakeBackend{})

		run := session.Navigate(jobURL)
		prefill, err := run.Start(context.Background())
		require.NoError(t, err)
		assert.False(t, prefill.AutoSave)

		result, err := run.Submit(context.Background(), prefill.Record)
		require.NoError(t, err)
		assert.Nil(t, result.Save)
		assert.Zero(t, channel.sent(pageagent.ActionClickSave))

		stored, err := store.AutoSave()
		require.NoError(t, err)
		assert.True(t, stored, "stored preference must not change")
	})

	t.Run("failed check keeps save enabled", func(t *testing.T) {
		channel := &fakeChannel{record: scrapedRecord(), loginErr: errors.New("no response")}
		session, _, _ := newSession(channel, &fakeBackend{})

		prefill, err := session.Navigate(jobURL).Start(context.Background())

		require.NoError(t, err)
		assert.True(t, prefill.AutoSave)
	})
}

func TestStart_ExtractionFailureFallsBackToManualEntry(t *testing.T) {
	tests := []struct {
		name    string
		channel *fakeChannel
	}{
		{"scrape transport error", &fakeChannel{loggedIn: true, scrapeErr: errors.New("transport failure")}},
		{"agent not ready", &fakeChannel{loggedIn: true, pingErr: errors.New("no receiver")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := &models.ExistingRecordRef{ID: "rec-1", URL: "https://store.example/rec-1"}
			client := &fakeBackend{existing: ref}
			session, _, _ := newSession(tt.channel, client)

			run := session.Navigate(jobURL)
			prefill, err := run.Start(context.Background())

			require.NoError(t, err)
			assert.Error(t, prefill.ExtractionError)
			assert.Equal(t, models.NewJobRecord(jobURL), prefill.Record)
			assert.Equal(t, []string{"Position", "Company"}, prefill.Failures)
			assert.Equal(t, 1, client.checks)
			assert.Equal(t, ModeExisting, prefill.Mode)
			assert.Equal(t, StateReady, run.State())

			rec := prefill.Record
			rec.Position = "Platform Engineer"
			rec.Company = "Initech"
			result, err := run.Submit(context.Background(), rec)
			require.NoError(t, err)
			assert.False(t, result.Created)
			require.Len(t, client.submits, 1)
			assert.Equal(t, "rec-1", client.submits[0].existing.ID)
		})
	}
}

func TestStart_StaleRunDiscarded(t *testing.T) {
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true}
	client := &fakeBackend{}
	session, _, _ := newSession(channel, client)

	first := session.Navigate(jobURL)
	channel.onScrape = func() {
		session.Navigate("https://www.linkedin.com/jobs/view/888/")
	}

	_, err := first.Start(context.Background())

	assert.ErrorIs(t, err, ErrStaleRun)
	assert.Zero(t, client.checks)
	assert.NotSame(t, first, session.Current())
}

func TestSubmit_IncompleteMakesNoCalls(t *testing.T) {
	client := &fakeBackend{}
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true}
	session, _, _ := newSession(channel, client)
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	rec := prefill.Record
	rec.Company = "   "
	_, err = run.Submit(context.Background(), rec)

	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "Company")
	assert.Empty(t, client.submits)
	assert.Zero(t, channel.sent(pageagent.ActionClickSave))
}

func TestSubmit_CreateThenUpdate(t *testing.T) {
	client := &fakeBackend{}
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true}
	session, _, store := newSession(channel, client)
	require.NoError(t, store.SetAutoSave(false))

	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	first, err := run.Submit(context.Background(), prefill.Record)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, ModeExisting, run.Mode())

	second, err := run.Submit(context.Background(), prefill.Record)
	require.NoError(t, err)
	assert.False(t, second.Created)

	require.Len(t, client.submits, 2)
	assert.Nil(t, client.submits[0].existing)
	require.NotNil(t, client.submits[1].existing)
	assert.Equal(t, "rec-new", client.submits[1].existing.ID)
}

func TestSubmit_TrimsFields(t *testing.T) {
	client := &fakeBackend{}
	session, _, store := newSession(&fakeChannel{record: scrapedRecord(), loggedIn: true}, client)
	require.NoError(t, store.SetAutoSave(false))
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	rec := prefill.Record
	rec.Position = "  Platform Engineer \n"
	_, err = run.Submit(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", client.submits[0].record.Position)
}

func TestSubmit_DuplicateAdoptsExisting(t *testing.T) {
	client := &fakeBackend{submitErr: &backend.SubmitError{
		Kind:     backend.KindDuplicate,
		Status:   409,
		Existing: &models.ExistingRecordRef{ID: "rec-dup", URL: "https://store.example/rec-dup"},
	}}
	session, _, _ := newSession(&fakeChannel{record: scrapedRecord(), loggedIn: true}, client)
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	_, err = run.Submit(context.Background(), prefill.Record)

	var subErr *backend.SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StateFailed, run.State())
	assert.Equal(t, ModeExisting, run.Mode())
	assert.Equal(t, "rec-dup", run.Existing().ID)
}

func TestSubmit_SaveDoesNotDelaySubmit(t *testing.T) {
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true, saveDelay: time.Hour}
	session, _, _ := newSession(channel, &fakeBackend{})
	session.SetSaveTimeout(50 * time.Millisecond)
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	start := time.Now()
	result, err := run.Submit(context.Background(), prefill.Record)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 40*time.Millisecond)
	require.NotNil(t, result.Save)

	outcome := waitOutcome(t, result.Save)
	assert.Equal(t, scraper.SaveTimedOut, outcome.Status)
	assert.False(t, outcome.Saved())
}

func TestSubmit_SaveClicked(t *testing.T) {
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true}
	session, _, _ := newSession(channel, &fakeBackend{})
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	result, err := run.Submit(context.Background(), prefill.Record)
	require.NoError(t, err)

	outcome := waitOutcome(t, result.Save)
	assert.True(t, outcome.Saved())
	_, open := <-result.Save
	assert.False(t, open)
}

func TestSubmit_StaleRun(t *testing.T) {
	client := &fakeBackend{}
	session, _, _ := newSession(&fakeChannel{record: scrapedRecord(), loggedIn: true}, client)
	run := session.Navigate(jobURL)
	prefill, err := run.Start(context.Background())
	require.NoError(t, err)

	session.Navigate("https://www.linkedin.com/jobs/view/999/")
	_, err = run.Submit(context.Background(), prefill.Record)

	assert.ErrorIs(t, err, ErrStaleRun)
	assert.Empty(t, client.submits)
}

func TestSave_SkippedAfterNavigate(t *testing.T) {
	channel := &fakeChannel{record: scrapedRecord(), loggedIn: true}
	session, _, _ := newSession(channel, &fakeBackend{})
	run := session.Navigate(jobURL)
	_, err := run.Start(context.Background())
	require.NoError(t, err)

	session.Navigate("https://www.linkedin.com/jobs/view/999/")
	outcome := run.save(context.Background())

	assert.Equal(t, scraper.SaveSkipped, outcome.Status)
	assert.False(t, outcome.Saved())
	assert.Zero(t, channel.sent(pageagent.ActionClickSave))
}

func TestOpenExisting_NoRef(t *testing.T) {
	session, tabs, _ := newSession(&fakeChannel{}, &fakeBackend{})

	require.NoError(t, session.Navigate(jobURL).OpenExisting(context.Background()))
	assert.Empty(t, tabs.opened)
}

func TestSession_SetAutoSave(t *testing.T) {
	session, _, store := newSession(&fakeChannel{}, &fakeBackend{})

	require.NoError(t, session.SetAutoSave(false))

	enabled, err := store.AutoSave()
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, session.AutoSave())
}
