// Package server implements the job-posting record API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/database"
	"go-jobposting-collector/internal/models"
)

// Notifier announces newly created postings.
type Notifier interface {
	SendPosting(p models.StoredPosting, recordURL string) error
}

type Options struct {
	// PublicBaseURL prefixes record links handed back to clients.
	PublicBaseURL  string
	RequestTimeout time.Duration
}

type Server struct {
	repo     database.Repository
	notifier Notifier
	validate *validator.Validate
	opts     Options
	log      logrus.FieldLogger
}

// New builds a Server. notifier may be nil.
func New(repo database.Repository, notifier Notifier, opts Options, log logrus.FieldLogger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Server{
		repo:     repo,
		notifier: notifier,
		validate: newValidator(),
		opts:     opts,
		log:      log,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log))

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.GET("/job-postings/check", s.checkPosting)
	api.GET("/job-postings/:id", s.getPosting)
	api.POST("/job-postings", s.savePosting)
	return r
}

func (s *Server) recordURL(id string) string {
	return s.opts.PublicBaseURL + "/api/job-postings/" + id
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) checkPosting(c *gin.Context) {
	postingURL := strings.TrimSpace(c.Query("posting_url"))
	if postingURL == "" {
		c.JSON(http.StatusBadRequest, backend.ErrorResponse{Error: "posting_url query parameter is required"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	posting, err := s.repo.FindByPostingURL(ctx, postingURL)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusOK, backend.CheckResponse{Exists: false})
	case err != nil:
		s.storeError(c, err, "Failed to check job posting")
	default:
		c.JSON(http.StatusOK, backend.CheckResponse{Exists: true, ID: posting.ID, URL: s.recordURL(posting.ID)})
	}
}

func (s *Server) getPosting(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	posting, err := s.repo.Get(ctx, c.Param("id"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, backend.ErrorResponse{Error: "Job posting not found"})
	case err != nil:
		s.storeError(c, err, "Failed to load job posting")
	default:
		c.JSON(http.StatusOK, posting)
	}
}

func (s *Server) savePosting(c *gin.Context) {
	var req backend.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, backend.ErrorResponse{Error: "Invalid JSON body: " + err.Error()})
		return
	}
	rec := normalizeRecord(req.JobRecord)
	if err := s.validate.Struct(rec); err != nil {
		c.JSON(http.StatusBadRequest, backend.ErrorResponse{Error: validationMessage(err)})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if req.ID != "" {
		s.updatePosting(ctx, c, req.ID, rec)
		return
	}
	s.createPosting(ctx, c, rec)
}

func (s *Server) createPosting(ctx context.Context, c *gin.Context, rec models.JobRecord) {
	existing, err := s.repo.FindByPostingURL(ctx, rec.PostingURL)
	if err == nil {
		s.duplicate(c, existing)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		s.storeError(c, err, "Failed to check job posting")
		return
	}

	posting, err := s.repo.Create(ctx, rec)
	if errors.Is(err, database.ErrDuplicate) {
		// lost a race with a concurrent create
		if existing, findErr := s.repo.FindByPostingURL(ctx, rec.PostingURL); findErr == nil {
			s.duplicate(c, existing)
			return
		}
	}
	if err != nil {
		s.storeError(c, err, "Failed to save job posting")
		return
	}

	s.log.WithFields(logrus.Fields{
		"id":          posting.ID,
		"posting_url": posting.Record.PostingURL,
	}).Info("✅ Job posting created")
	s.notify(*posting)

	c.JSON(http.StatusCreated, backend.SubmitResponse{
		Message: "Job posting saved successfully",
		ID:      posting.ID,
		URL:     s.recordURL(posting.ID),
		JobData: posting.Record,
	})
}

func (s *Server) updatePosting(ctx context.Context, c *gin.Context, id string, rec models.JobRecord) {
	posting, err := s.repo.Update(ctx, id, rec)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, backend.ErrorResponse{Error: "Job posting not found"})
		return
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusUnprocessableEntity, backend.ErrorResponse{Error: "Another job posting already uses this URL", DuplicateField: "posting_url"})
		return
	case err != nil:
		s.storeError(c, err, "Failed to update job posting")
		return
	}

	s.log.WithField("id", posting.ID).Info("✅ Job posting updated")
	c.JSON(http.StatusOK, backend.SubmitResponse{
		Message: "Job posting updated successfully",
		ID:      posting.ID,
		URL:     s.recordURL(posting.ID),
		JobData: posting.Record,
	})
}

func (s *Server) duplicate(c *gin.Context, existing *models.StoredPosting) {
	c.JSON(http.StatusConflict, backend.ErrorResponse{
		Error:          "Job posting already exists",
		DuplicateField: "posting_url",
		ExistingID:     existing.ID,
		ExistingURL:    s.recordURL(existing.ID),
	})
}

func (s *Server) storeError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, backend.ErrorResponse{Error: "Record store timed out"})
		return
	}
	c.JSON(http.StatusInternalServerError, backend.ErrorResponse{Error: msg})
}

func (s *Server) notify(p models.StoredPosting) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.SendPosting(p, s.recordURL(p.ID)); err != nil {
			s.log.WithError(err).Warn("⚠️ Failed to send telegram notification")
		}
	}()
}
