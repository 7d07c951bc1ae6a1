package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/models"
)

const (
	checkPath    = "/api/job-postings/check"
	postingsPath = "/api/job-postings"
	healthPath   = "/api/health"
)

// CheckResponse is the body of an existence check.
type CheckResponse struct {
	Exists bool   `json:"exists"`
	ID     string `json:"id,omitempty"`
	URL    string `json:"url,omitempty"`
}

// SubmitRequest is a record plus the stored id when updating.
type SubmitRequest struct {
	models.JobRecord
	ID string `json:"id,omitempty"`
}

// SubmitResponse is the body of a successful create or update.
type SubmitResponse struct {
	Message string           `json:"message"`
	ID      string           `json:"id"`
	URL     string           `json:"url"`
	JobData models.JobRecord `json:"job_data"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error          string `json:"error"`
	DuplicateField string `json:"duplicate_field,omitempty"`
	ExistingID     string `json:"existing_id,omitempty"`
	ExistingURL    string `json:"existing_url,omitempty"`
}

// Client talks to the record API.
type Client struct {
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// CheckExists looks up a stored record for postingURL. It returns nil when
// none exists. Callers decide how to treat errors.
func (c *Client) CheckExists(ctx context.Context, postingURL string) (*models.ExistingRecordRef, error) {
	reqURL := c.baseURL + checkPath + "?" + url.Values{"posting_url": {postingURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("existence check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("existence check returned status %d", resp.StatusCode)
	}

	var body CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid existence check response: %w", err)
	}
	if !body.Exists {
		return nil, nil
	}
	if body.ID == "" {
		return nil, errors.New("existence check reported a record without id")
	}
	return &models.ExistingRecordRef{ID: body.ID, URL: body.URL}, nil
}

// Submit creates rec, or updates the stored record when existing is set.
// Failures are returned as *SubmitError.
func (c *Client) Submit(ctx context.Context, rec models.JobRecord, existing *models.ExistingRecordRef) (*SubmitResponse, error) {
	payload := SubmitRequest{JobRecord: rec}
	if existing != nil {
		payload.ID = existing.ID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job posting: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+postingsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.WithFields(logrus.Fields{
		"posting_url": rec.PostingURL,
		"update":      existing != nil,
	}).Info("📤 Sending job posting to backend")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.WithError(err).Error("❌ Backend unreachable")
		return nil, &SubmitError{Kind: KindUnreachable, Message: "backend unreachable", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SubmitError{Kind: KindInvalidResponse, Status: resp.StatusCode, Message: "could not read response", Cause: err}
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		c.log.WithFields(logrus.Fields{
			"status":       resp.StatusCode,
			"content_type": resp.Header.Get("Content-Type"),
		}).Error("❌ Backend returned a non-JSON response")
		return nil, &SubmitError{Kind: KindInvalidResponse, Status: resp.StatusCode, Message: "response is not JSON"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.submitError(resp.StatusCode, raw)
	}

	var result SubmitResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &SubmitError{Kind: KindInvalidResponse, Status: resp.StatusCode, Message: "malformed response", Cause: err}
	}
	if result.ID == "" {
		return nil, &SubmitError{Kind: KindInvalidResponse, Status: resp.StatusCode, Message: "response without record id"}
	}
	return &result, nil
}

func (c *Client) submitError(status int, raw []byte) *SubmitError {
	var body ErrorResponse
	_ = json.Unmarshal(raw, &body)

	subErr := &SubmitError{Kind: kindForStatus(status), Status: status, Message: body.Error}
	if subErr.Kind == KindDuplicate && body.ExistingID != "" {
		subErr.Existing = &models.ExistingRecordRef{ID: body.ExistingID, URL: body.ExistingURL}
	}
	c.log.WithFields(logrus.Fields{
		"status": status,
		"kind":   subErr.Kind,
		"error":  body.Error,
	}).Warn("⚠️ Backend rejected job posting")
	return subErr
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
