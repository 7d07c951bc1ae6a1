package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobposting-collector/internal/models"
)

const postingURL = "https://www.linkedin.com/jobs/view/42/"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return NewClient(srv.URL+"/", 5*time.Second, logger)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sampleRecord() models.JobRecord {
	rec := models.NewJobRecord(postingURL)
	rec.Position = "Backend Engineer"
	rec.Company = "Acme"
	return rec
}

func TestCheckExists(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		want    *models.ExistingRecordRef
		wantErr bool
	}{
		{
			name:   "exists",
			status: http.StatusOK,
			body:   CheckResponse{Exists: true, ID: "rec-1", URL: "http://store/rec-1"},
			want:   &models.ExistingRecordRef{ID: "rec-1", URL: "http://store/rec-1"},
		},
		{name: "absent", status: http.StatusOK, body: CheckResponse{Exists: false}},
		{name: "server error", status: http.StatusInternalServerError, body: ErrorResponse{Error: "boom"}, wantErr: true},
		{name: "exists without id", status: http.StatusOK, body: CheckResponse{Exists: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, checkPath, r.URL.Path)
				assert.Equal(t, postingURL, r.URL.Query().Get("posting_url"))
				writeJSON(w, tt.status, tt.body)
			})

			ref, err := client.CheckExists(context.Background(), postingURL)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestSubmit_CreateAndUpdate(t *testing.T) {
	var received []SubmitRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, postingsPath, r.URL.Path)
		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = append(received, req)
		status := http.StatusCreated
		if req.ID != "" {
			status = http.StatusOK
		}
		writeJSON(w, status, SubmitResponse{Message: "ok", ID: "rec-9", URL: "http://store/rec-9", JobData: req.JobRecord})
	})
	ctx := context.Background()

	created, err := client.Submit(ctx, sampleRecord(), nil)
	require.NoError(t, err)
	assert.Equal(t, "rec-9", created.ID)

	_, err = client.Submit(ctx, sampleRecord(), &models.ExistingRecordRef{ID: created.ID, URL: created.URL})
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Empty(t, received[0].ID)
	assert.Equal(t, "rec-9", received[1].ID)
	assert.Equal(t, "Backend Engineer", received[1].Position)
	assert.Equal(t, models.OriginLinkedIn, received[1].Origin)
}

func TestSubmit_FailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   ErrorResponse
		kind   Kind
	}{
		{"duplicate", http.StatusConflict, ErrorResponse{Error: "dup", ExistingID: "rec-1", ExistingURL: "u"}, KindDuplicate},
		{"rate limited", http.StatusTooManyRequests, ErrorResponse{Error: "slow down"}, KindRateLimited},
		{"upstream timeout", http.StatusGatewayTimeout, ErrorResponse{Error: "timeout"}, KindUpstreamTimeout},
		{"unauthorized", http.StatusUnauthorized, ErrorResponse{Error: "nope"}, KindUnauthorized},
		{"validation", http.StatusBadRequest, ErrorResponse{Error: "position is required"}, KindServer},
		{"server", http.StatusInternalServerError, ErrorResponse{Error: "Failed to create job posting"}, KindServer},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.Submit(context.Background(), sampleRecord(), nil)

			var subErr *SubmitError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.kind, subErr.Kind)
			assert.Equal(t, tt.status, subErr.Status)
			assert.NotEmpty(t, subErr.UserMessage())
			if tt.kind == KindDuplicate {
				require.NotNil(t, subErr.Existing)
				assert.Equal(t, "rec-1", subErr.Existing.ID)
			}
			if tt.kind != KindServer {
				assert.False(t, seen[subErr.UserMessage()], "messages must differ per kind")
				seen[subErr.UserMessage()] = true
			}
		})
	}
}

func TestSubmit_ServerMessageSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "position is required"})
	})

	_, err := client.Submit(context.Background(), sampleRecord(), nil)

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "position is required", subErr.UserMessage())
}

func TestSubmit_NonJSONResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.Submit(context.Background(), sampleRecord(), nil)

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, KindInvalidResponse, subErr.Kind)
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	logger, _ := test.NewNullLogger()
	client := NewClient(addr, time.Second, logger)

	_, err := client.Submit(context.Background(), sampleRecord(), nil)

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, KindUnreachable, subErr.Kind)
	assert.Contains(t, subErr.UserMessage(), "not running")
}

func TestSubmit_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Submit(ctx, sampleRecord(), nil)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, healthPath, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	assert.NoError(t, client.Health(context.Background()))
}
