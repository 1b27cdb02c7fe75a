package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/query"
	"github.com/inkwelldocs/inkwell/queue"
)

// DefaultUploadDir is where uploaded documents are written before
// ingestion workers pick them up.
const DefaultUploadDir = "uploads"

// Server is the HTTP intake surface: uploads are accepted, persisted and
// enqueued for asynchronous ingestion; questions are answered inline.
type Server struct {
	queue     queue.Queue
	handler   *query.Handler
	uploadDir string
	engine    *gin.Engine
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithUploadDir sets the directory uploaded files are stored in.
// Default is DefaultUploadDir. The directory is created if missing.
func WithUploadDir(dir string) Option {
	return func(s *Server) error {
		if dir == "" {
			return fmt.Errorf("%w: upload directory must not be empty", core.ErrInvalidConfiguration)
		}
		s.uploadDir = dir
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates the intake server. Uploads are enqueued on q and
// questions answered by handler.
func NewServer(q queue.Queue, handler *query.Handler, opts ...Option) (*Server, error) {
	if q == nil {
		return nil, ErrQueueRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	s := &Server{
		queue:     q,
		handler:   handler,
		uploadDir: DefaultUploadDir,
		logger:    slog.Default().With("component", "intake"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", s.uploadDir, err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	// Browser clients call /chat cross-origin; allow all, same as the
	// upstream deployment.
	engine.Use(gin.Recovery(), cors.Default())

	engine.GET("/", s.handleRoot)
	engine.GET("/healthz", s.handleRoot)
	engine.POST("/upload/pdf", s.handleUpload)
	engine.GET("/chat", s.handleChat)

	s.engine = engine
	return s, nil
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("intake server started", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "All Good!"})
}

// handleUpload accepts a multipart PDF under the "pdf" field, stores it
// with a collision-proof name and enqueues an ingestion job. The
// response does not wait for ingestion; processing is asynchronous.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing pdf file in request"})
		return
	}

	originalName := filepath.Base(file.Filename)
	if !strings.EqualFold(filepath.Ext(originalName), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only pdf files are accepted"})
		return
	}

	storedName := fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), originalName)
	storedPath := filepath.Join(s.uploadDir, storedName)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		s.logger.Error("error storing upload", "file", originalName, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded file"})
		return
	}

	job := core.NewIngestionJob(storedPath, originalName)
	id, err := s.queue.Enqueue(c.Request.Context(), job)
	if err != nil {
		s.logger.Error("error enqueueing upload", "file", originalName, "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not enqueue file for processing"})
		return
	}

	s.logger.Info("upload accepted", "job", id, "file", originalName, "stored", storedPath)
	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully!", "job": id})
}

// handleChat answers ?message= with an optional ?k= retrieval width.
func (s *Server) handleChat(c *gin.Context) {
	message := c.Query("message")

	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
			return
		}
		k = parsed
	}

	answer, err := s.handler.Answer(c.Request.Context(), message, k)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message query parameter required"})
			return
		}
		s.logger.Error("error answering question", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not answer question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": answer.Text, "docs": answer.Sources})
}
