package fileserve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server exposes project attachments over HTTP. All /api routes
// require a bearer token minted with the configured secret.
type Server struct {
	cfg      Config
	store    *Store
	logger   *zap.Logger
	validate *validator.Validate
	handler  http.Handler
}

func NewServer(cfg Config, store *Store, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(Auth(cfg.JWTSecret, logger))
	api.HandleFunc("/files", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/files/{id}", s.handleDownload).Methods(http.MethodGet)
	api.HandleFunc("/files/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/files/project/{projectID}", s.handleListByProject).Methods(http.MethodGet)

	rateLimit, err := RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limit config: %w", err)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	var h http.Handler = r
	h = MaxRequestSize(cfg.MaxUploadBytes + 1<<16)(h) // multipart overhead
	h = rateLimit(h)
	h = corsHandler.Handler(h)
	h = Logging(logger)(h)
	s.handler = h

	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("file service listening", zap.String("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// uploadRequest carries the validated form fields of an upload.
type uploadRequest struct {
	ProjectID   string `validate:"required"`
	Description string `validate:"max=500"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := uploadRequest{
		ProjectID:   r.FormValue("projectId"),
		Description: r.FormValue("description"),
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta, err := s.store.Save(r.Context(), FileMeta{
		ProjectID:   req.ProjectID,
		Name:        header.Filename,
		ContentType: contentType,
		Description: req.Description,
	}, file)
	if err != nil {
		s.logger.Error("file save failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	s.logger.Info("file uploaded",
		zap.String("id", meta.ID),
		zap.String("project_id", meta.ProjectID),
		zap.Int64("size", meta.Size),
		zap.String("subject", SubjectFromContext(r)),
	)
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"file":    meta,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	meta, blob, err := s.store.Open(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		s.logger.Error("file open failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", meta.Size))
	if _, err := io.Copy(w, blob); err != nil {
		s.logger.Warn("file stream interrupted", zap.String("id", id), zap.Error(err))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		s.logger.Error("file delete failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListByProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectID"]

	files, err := s.store.ListByProject(r.Context(), projectID)
	if err != nil {
		s.logger.Error("file list failed", zap.String("project_id", projectID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	if files == nil {
		files = []FileMeta{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"files":   files,
	})
}
