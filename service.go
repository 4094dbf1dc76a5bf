package swiftgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ObjectRegistry records the uploads relayed by the gateway. Only metadata is
// kept; object content always lives upstream.
//
// All methods accept a context for cancellation and timeout control.
// Implementations must be safe for concurrent use.
type ObjectRegistry interface {
	// Record stores an entry for a relayed object. Recording the same
	// container and id again replaces the previous entry.
	//
	// Returns:
	//   - ObjectRecord: The stored record with its creation time
	//   - error: ErrInvalidInput for an incomplete entry, or database errors
	Record(ctx context.Context, entry ObjectEntry) (ObjectRecord, error)

	// Get retrieves the record of an object.
	//
	// Returns:
	//   - ObjectRecord: The record if found
	//   - error: ErrNotFound if nothing was recorded, or database errors
	Get(ctx context.Context, container, id string) (ObjectRecord, error)

	// List retrieves records ordered by creation time, oldest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - q: ListQuery with optional container filter, limit, and cursor for pagination
	//
	// Returns:
	//   - ListResult: Matching records and the cursor of the next page
	//   - error: Any database error
	List(ctx context.Context, q ListQuery) (ListResult, error)
}

// Relay is the upstream side of the gateway. *Client implements it.
type Relay interface {
	Authenticate(ctx context.Context, sess *Session, user, key string) error
	Upload(ctx context.Context, sess *Session, up *FileUpload, container string) (UploadResult, error)
	Download(ctx context.Context, sess *Session, w http.ResponseWriter, dr DownloadRequest) (TransferStats, error)
	Read(ctx context.Context, sess *Session, id, container string) (StoredObject, error)
	Write(ctx context.Context, sess *Session, obj StoredObject, container string) (string, error)
}

// KeyStore resolves inbound access keys to their secret keys.
type KeyStore interface {
	// Lookup returns the secret key of accessKey, or an error wrapping
	// ErrUnauthorized when the key is unknown.
	Lookup(accessKey string) (string, error)
}

// Credentials for the upstream auth endpoint.
type Credentials struct {
	User string
	Key  string
}

// ServiceConfig holds configuration options for GatewayService.
type ServiceConfig struct {
	Credentials Credentials
	// RecordTimeout bounds registry writes after a relay finished (default: 5s).
	RecordTimeout time.Duration
}

// GatewayService binds a relay, an upstream session and the upload registry.
// It is what the HTTP layer and the CLI talk to.
type GatewayService struct {
	relay         Relay
	registry      ObjectRegistry
	session       *Session
	credentials   Credentials
	recordTimeout time.Duration
}

func NewGatewayService(relay Relay, registry ObjectRegistry, sess *Session, cfg ServiceConfig) (*GatewayService, error) {
	if relay == nil {
		return nil, errors.New("new gateway service: relay cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("new gateway service: registry cannot be nil")
	}
	if sess == nil {
		return nil, errors.New("new gateway service: session cannot be nil")
	}

	recordTimeout := cfg.RecordTimeout
	if recordTimeout <= 0 {
		recordTimeout = 5 * time.Second
	}

	return &GatewayService{
		relay:         relay,
		registry:      registry,
		session:       sess,
		credentials:   cfg.Credentials,
		recordTimeout: recordTimeout,
	}, nil
}

// Session returns the upstream session shared by all calls.
func (s *GatewayService) Session() *Session {
	return s.session
}

// Authenticate exchanges the configured credentials for a storage token.
func (s *GatewayService) Authenticate(ctx context.Context) error {
	if s.credentials.User == "" {
		return fmt.Errorf("authenticate: %w: upstream user cannot be empty", ErrInvalidInput)
	}
	return s.relay.Authenticate(ctx, s.session, s.credentials.User, s.credentials.Key)
}

// Upload relays up and records the stored object.
//
// A failed registry write is logged and does not fail the upload: the object
// is already stored upstream and the result carries everything needed to
// fetch it.
func (s *GatewayService) Upload(ctx context.Context, up *FileUpload, container string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	result, err := s.relay.Upload(ctx, s.session, up, container)
	if err != nil {
		s.afterFailure(ctx, err)
		return UploadResult{}, err
	}

	s.record(ObjectEntry{
		ID:          result.ID,
		Container:   s.containerOf(container),
		Filename:    result.Metadata.Filename,
		ContentType: result.Metadata.ContentType,
		ETag:        result.Metadata.ETag,
		SizeBytes:   result.Metadata.Size,
	})

	return result, nil
}

// Download relays an object into w. Missing metadata hint or ETag override
// are taken from the registry when the object was recorded.
func (s *GatewayService) Download(ctx context.Context, w http.ResponseWriter, dr DownloadRequest) (TransferStats, error) {
	if err := ctx.Err(); err != nil {
		return TransferStats{}, fmt.Errorf("download: %w", err)
	}

	if dr.Metadata == nil || dr.ETag == "" {
		rec, err := s.registry.Get(ctx, s.containerOf(dr.Container), dr.ID)
		switch {
		case err == nil:
			if dr.Metadata == nil {
				dr.Metadata = rec.Metadata()
			}
			if dr.ETag == "" {
				dr.ETag = rec.ETag
			}
		case errors.Is(err, ErrNotFound):
		default:
			slog.Warn("registry lookup failed", "container", dr.Container, "id", dr.ID, "err", err)
		}
	}

	stats, err := s.relay.Download(ctx, s.session, w, dr)
	if err != nil {
		s.afterFailure(ctx, err)
	}
	return stats, err
}

// Read fetches a whole object.
func (s *GatewayService) Read(ctx context.Context, id, container string) (StoredObject, error) {
	obj, err := s.relay.Read(ctx, s.session, id, container)
	if err != nil {
		s.afterFailure(ctx, err)
		return StoredObject{}, err
	}
	return obj, nil
}

// Write stores obj and records it.
func (s *GatewayService) Write(ctx context.Context, obj StoredObject, container string) (string, error) {
	id, err := s.relay.Write(ctx, s.session, obj, container)
	if err != nil {
		s.afterFailure(ctx, err)
		return "", err
	}

	s.record(ObjectEntry{
		ID:          id,
		Container:   s.containerOf(container),
		Filename:    obj.Filename,
		ContentType: orDefault(obj.ContentType, defaultContentType),
		SizeBytes:   int64(len(obj.Content)),
	})

	return id, nil
}

func (s *GatewayService) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list objects: %w", err)
	}

	result, err := s.registry.List(ctx, q)
	if err != nil {
		return ListResult{}, fmt.Errorf("list objects: %w", err)
	}

	return result, nil
}

// record writes entry with a context of its own, since the request context
// may already be cancelled once the response is out.
func (s *GatewayService) record(entry ObjectEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.recordTimeout)
	defer cancel()

	if _, err := s.registry.Record(ctx, entry); err != nil {
		slog.Warn("failed to record object", "container", entry.Container, "id", entry.ID, "err", err)
	}
}

// afterFailure re-authenticates when upstream rejected the token, so the
// next call can succeed. The failed call itself is not retried.
func (s *GatewayService) afterFailure(ctx context.Context, err error) {
	var serr *StorageError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusUnauthorized || s.credentials.User == "" {
		return
	}

	authCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()

	if authErr := s.Authenticate(authCtx); authErr != nil {
		slog.Error("upstream re-authentication failed", "err", authErr)
		return
	}
	slog.Info("upstream token refreshed", "account", s.session.Account())
}

func (s *GatewayService) containerOf(container string) string {
	if container == "" {
		return s.session.Container()
	}
	return container
}
