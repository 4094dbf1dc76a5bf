package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/swiftgate"
)

// Service is the gateway side the handlers call. *swiftgate.GatewayService
// implements it.
type Service interface {
	Upload(ctx context.Context, up *swiftgate.FileUpload, container string) (swiftgate.UploadResult, error)
	Download(ctx context.Context, w http.ResponseWriter, dr swiftgate.DownloadRequest) (swiftgate.TransferStats, error)
	List(ctx context.Context, q swiftgate.ListQuery) (swiftgate.ListResult, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	ReadVerifier  RequestVerifier
	WriteVerifier RequestVerifier
	CORS          CORSConfig
	// MaxUploadSize bounds the multipart request body in bytes; 0 means no limit.
	MaxUploadSize int64
}

// Handler provides the inbound HTTP API of the gateway.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
//
//	GET  /healthz
//	GET  /files                    list recorded uploads
//	GET  /files/{id}               download from the default container
//	GET  /files/{container}/{id}   download
//	POST /files                    upload into the default container
//	POST /files/{container}        upload
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeUnknownRoute)
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.ReadVerifier))
		r.Get("/files", h.handleList)
		r.Get("/files/{id}", h.handleDownload)
		r.Get("/files/{container}/{id}", h.handleDownload)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.WriteVerifier))
		r.Post("/files", h.handleUpload)
		r.Post("/files/{container}", h.handleUpload)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 100
	if limitStr := q.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = max(1, min(1000, parsed))
		}
	}

	container := q.Get("container")
	if container != "" && !swiftgate.IsValidName(container) {
		WriteError(w, http.StatusBadRequest, "invalid_container", "Invalid container name")
		return
	}

	result, err := h.service.List(r.Context(), swiftgate.ListQuery{
		Container: container,
		Prefix:    q.Get("prefix"),
		Limit:     limit,
		Cursor:    q.Get("cursor"),
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	container := chi.URLParam(r, "container")
	id := chi.URLParam(r, "id")

	if container != "" && !swiftgate.IsValidName(container) {
		WriteError(w, http.StatusBadRequest, "invalid_container", "Invalid container name")
		return
	}
	if !swiftgate.IsValidName(id) {
		WriteError(w, http.StatusBadRequest, "invalid_id", "Invalid object id")
		return
	}

	inline := true
	if v := r.URL.Query().Get("inline"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_inline", "inline must be a boolean")
			return
		}
		inline = parsed
	}

	stats, err := h.service.Download(r.Context(), w, swiftgate.DownloadRequest{
		ID:           id,
		Container:    container,
		Inline:       inline,
		DownloadName: r.URL.Query().Get("name"),
		IfNoneMatch:  r.Header.Get("If-None-Match"),
	})
	if err == nil {
		return
	}

	var serr *swiftgate.StorageError
	switch {
	case errors.As(err, &serr) && stats.HeadersWritten:
		// Upstream status already mirrored onto the response.
	case stats.HeadersWritten:
		slog.Warn("aborting download response", "container", container, "id", id, "bytes", stats.Bytes, "err", err)
		panic(http.ErrAbortHandler)
	default:
		HandleError(w, err)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	container := chi.URLParam(r, "container")
	if container != "" && !swiftgate.IsValidName(container) {
		WriteError(w, http.StatusBadRequest, "invalid_container", "Invalid container name")
		return
	}

	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_multipart", "Expected a multipart/form-data body")
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		HandleError(w, parseError(err))
		return
	}

	up, err := swiftgate.NewFileUpload(part)
	if err != nil {
		_ = part.Close()
		HandleError(w, parseError(err))
		return
	}
	up.ID = r.URL.Query().Get("id")
	up.Body = &limitedBody{r: up.Body}

	// A failed relay may still have a read pending on part, so the part is
	// left to the server's request body teardown.
	result, err := h.service.Upload(r.Context(), up, container)
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = part.Close()

	_ = WriteJSON(w, http.StatusOK, result)
}

// nextFilePart skips form fields up to the first part carrying a file name.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFile
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

// limitedBody tags a body read that hit http.MaxBytesReader, so the failure
// survives the relay's error wrapping.
type limitedBody struct {
	r io.Reader
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return n, errors.Join(ErrUploadTooLarge, err)
	}
	return n, err
}

// parseError classifies a failure to read the multipart envelope.
func parseError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, ErrNoFile):
		return err
	case errors.As(err, &tooLarge):
		return errors.Join(ErrUploadTooLarge, err)
	default:
		return errors.Join(swiftgate.ErrInvalidInput, err)
	}
}
