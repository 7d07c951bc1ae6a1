// Package pageagent runs extraction and page actions next to the page and
// answers one structured response per request.
package pageagent

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/dom"
	"go-jobposting-collector/internal/models"
	"go-jobposting-collector/internal/scraper"
)

type Action string

const (
	ActionPing            Action = "ping"
	ActionClickSave       Action = "clickSave"
	ActionCheckLoginState Action = "checkLoginState"
	ActionScrapeData      Action = "scrapeData"
)

// StatusReady is the ping answer of a loaded agent.
const StatusReady = "ready"

// ErrUnknownAction is reported in Response.Error for unsupported actions.
var ErrUnknownAction = errors.New("unknown action")

type Request struct {
	Action Action `json:"action"`
}

// Response carries exactly one of its payloads, or Error.
type Response struct {
	Status string               `json:"status,omitempty"`
	Record *models.JobRecord    `json:"record,omitempty"`
	Save   *scraper.SaveOutcome `json:"save,omitempty"`
	Login  *scraper.LoginState  `json:"login,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Channel delivers a request to an agent. A transport failure is returned as
// an error, agent-side failures as Response.Error.
type Channel interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Page is the document an agent is attached to.
type Page interface {
	dom.Document
	URL() string
}

// StaticPage pairs a parsed snapshot with the address it was loaded from.
type StaticPage struct {
	dom.Document
	Address string
}

func (p StaticPage) URL() string { return p.Address }

// Agent serves requests against one page, one at a time.
type Agent struct {
	mu        sync.Mutex
	page      Page
	extractor *scraper.Extractor
	bridge    *scraper.Bridge
	log       logrus.FieldLogger
}

func NewAgent(page Page, extractor *scraper.Extractor, bridge *scraper.Bridge, log logrus.FieldLogger) *Agent {
	return &Agent{page: page, extractor: extractor, bridge: bridge, log: log}
}

func (a *Agent) Handle(req Request) Response {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.WithField("action", req.Action).Debug("📨 Message received")
	switch req.Action {
	case ActionPing:
		return Response{Status: StatusReady}
	case ActionClickSave:
		outcome := a.bridge.ActivateSave(a.page)
		return Response{Save: &outcome}
	case ActionCheckLoginState:
		state := a.bridge.DetectLoginState(a.page)
		return Response{Login: &state}
	case ActionScrapeData:
		rec := a.extractor.Extract(a.page, a.page.URL())
		return Response{Record: &rec}
	default:
		return Response{Error: ErrUnknownAction.Error()}
	}
}
