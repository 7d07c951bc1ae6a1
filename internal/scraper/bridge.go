package scraper

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/dom"
)

type SaveStatus string

const (
	SaveNotFound     SaveStatus = "not-found"
	SaveAlreadySaved SaveStatus = "already-saved"
	SaveClicked      SaveStatus = "clicked"
	SaveTimedOut     SaveStatus = "timed-out"
	SaveError        SaveStatus = "error"
	// SaveSkipped means the run was replaced before the click was sent.
	SaveSkipped SaveStatus = "skipped"
)

// SaveOutcome is the terminal state of one save request.
type SaveOutcome struct {
	Status SaveStatus `json:"reason"`
	Detail string     `json:"message,omitempty"`
}

// Saved reports whether the posting ended up saved on the source site.
func (o SaveOutcome) Saved() bool {
	return o.Status == SaveClicked || o.Status == SaveAlreadySaved
}

// LoginState is a best-effort guess. A negative answer means "unknown,
// probably logged out", never a guarantee.
type LoginState struct {
	LoggedIn   bool     `json:"loggedIn"`
	Indicators []string `json:"indicators"`
}

// Bridge acts on interactive controls of the source page.
type Bridge struct {
	table SelectorTable
	log   logrus.FieldLogger
}

func NewBridge(table SelectorTable, log logrus.FieldLogger) *Bridge {
	return &Bridge{table: table, log: log}
}

// LocateSaveControl returns the first save control found by the fallback list.
func (b *Bridge) LocateSaveControl(doc dom.Document) (dom.Element, bool) {
	el, probe, ok := firstElement(doc, b.table.SaveControl)
	if !ok {
		b.log.Debug("⚠️ Save button not found")
		return nil, false
	}
	b.log.WithField("selector", probe).Debug("✅ Save button found")
	return el, true
}

// IsAlreadyActivated checks the control's text for "saved".
func IsAlreadyActivated(control dom.Element) bool {
	return strings.Contains(normalizeText(control.Text()), "saved")
}

// ActivateSave clicks the save control unless the posting is already saved.
// Failures come back as an error outcome, never as a panic or error value.
func (b *Bridge) ActivateSave(doc dom.Document) (outcome SaveOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = SaveOutcome{Status: SaveError, Detail: fmt.Sprint(r)}
			b.log.WithField("panic", r).Error("❌ Save click panicked")
		}
	}()

	control, ok := b.LocateSaveControl(doc)
	if !ok {
		return SaveOutcome{Status: SaveNotFound, Detail: "save button not found"}
	}
	if IsAlreadyActivated(control) {
		return SaveOutcome{Status: SaveAlreadySaved, Detail: "job already saved"}
	}
	if err := control.Click(); err != nil {
		b.log.WithError(err).Warn("⚠️ Save click failed")
		return SaveOutcome{Status: SaveError, Detail: err.Error()}
	}
	b.log.Info("✅ Save button clicked")
	return SaveOutcome{Status: SaveClicked, Detail: "save button clicked"}
}

// DetectLoginState reports logged in when any known logged-in UI element is
// present, along with the indicators that matched.
func (b *Bridge) DetectLoginState(doc dom.Document) LoginState {
	state := LoginState{Indicators: []string{}}
	for _, p := range b.table.LoginIndicators {
		if _, ok := p.Lookup(doc); ok {
			state.Indicators = append(state.Indicators, p.Name)
		}
	}
	state.LoggedIn = len(state.Indicators) > 0
	b.log.WithFields(logrus.Fields{
		"logged_in":  state.LoggedIn,
		"indicators": state.Indicators,
	}).Debug("🔐 Login state checked")
	return state
}
