package swiftgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMaxConnsPerHost bounds the outbound pool.
	DefaultMaxConnsPerHost = 16
	// DefaultTimeout applies to dialing and to waiting for upstream headers.
	DefaultTimeout = 30 * time.Second

	authPath = "/auth/v1.0"

	headerAuthUser     = "X-Auth-User"
	headerAuthKey      = "X-Auth-Key"
	headerStorageToken = "X-Storage-Token"
	headerFilename     = "X-Object-Meta-Filename"

	// maxDrainBytes is how much of an unwanted response body is read before
	// closing it, so small error bodies do not cost the pooled connection.
	maxDrainBytes = 4 << 10
)

// Options configures a Client.
type Options struct {
	// BaseURL of the upstream storage service, e.g. http://swift:8080.
	BaseURL string
	// MaxConnsPerHost caps concurrent outbound connections. Default 16.
	MaxConnsPerHost int
	// KeepAlive reuses upstream connections between transfers. Off by default.
	KeepAlive bool
	// ChunkSize is the per-transfer relay buffer. Default 64 KiB.
	ChunkSize int
	// Timeout bounds dialing and waiting for response headers. It does not
	// bound body transfer. Default 30s.
	Timeout time.Duration
}

// Client relays uploads and downloads to the upstream storage service. It
// owns the outbound connection pool; a Client is safe for concurrent use and
// must be closed with Close.
type Client struct {
	baseURL   *url.URL
	transport *http.Transport
	http      *http.Client
	chunkSize int

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
	active   atomic.Int64

	lifecycle context.Context
	cancel    context.CancelCauseFunc
	closeOnce sync.Once
	closeErr  error
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("new client: %w: base url cannot be empty", ErrInvalidInput)
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("new client: %w: %w", ErrInvalidInput, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("new client: %w: unsupported scheme %q", ErrInvalidInput, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("new client: %w: base url has no host", ErrInvalidInput)
	}

	maxConns := opts.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = DefaultMaxConnsPerHost
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxConnsPerHost:       maxConns,
		MaxIdleConnsPerHost:   maxConns,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     !opts.KeepAlive,
		// Bodies and ETags are relayed as stored.
		DisableCompression: true,
	}

	lifecycle, cancel := context.WithCancelCause(context.Background())

	return &Client{
		baseURL:   base,
		transport: transport,
		http: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		chunkSize: chunkSize,
		lifecycle: lifecycle,
		cancel:    cancel,
	}, nil
}

// Authenticate performs the token exchange against the auth endpoint and
// stores the token in sess. It makes a single attempt.
func (c *Client) Authenticate(ctx context.Context, sess *Session, user, key string) error {
	ctx, done, err := c.begin(ctx)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	defer done()

	req, err := c.newRequest(ctx, http.MethodGet, authPath, nil)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	req.Header.Set(headerAuthUser, user)
	req.Header.Set(headerAuthKey, key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("authenticate: %w: %w", ErrAuthentication, withCause(ctx, err))
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		slog.Warn("upstream authentication rejected", "account", sess.Account(), "status", resp.StatusCode)
		return fmt.Errorf("authenticate: %w", &AuthError{StatusCode: resp.StatusCode, Message: statusMessage(resp)})
	}

	token := resp.Header.Get(headerStorageToken)
	if token == "" {
		return fmt.Errorf("authenticate: %w", &AuthError{StatusCode: resp.StatusCode, Message: "missing " + headerStorageToken})
	}

	sess.setToken(token)
	slog.Debug("upstream authenticated", "account", sess.Account())
	return nil
}

// Active returns the number of calls currently in flight.
func (c *Client) Active() int {
	return int(c.active.Load())
}

// Close stops accepting calls and releases the connection pool. It waits for
// in-flight transfers until ctx is done, then cancels the rest (they fail
// with ErrClosed) and waits for them to unwind. Close is idempotent; later
// calls return the result of the first.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		drained := make(chan struct{})
		go func() {
			c.inflight.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-ctx.Done():
			pending := c.active.Load()
			slog.Warn("cancelling in-flight transfers", "count", pending)
			c.cancel(ErrClosed)
			<-drained
			c.closeErr = fmt.Errorf("close: %d transfers cancelled: %w", pending, ctx.Err())
		}

		c.cancel(ErrClosed)
		c.transport.CloseIdleConnections()
	})
	return c.closeErr
}

// begin registers an in-flight call. The returned context is cancelled with
// cause ErrClosed when Close gives up waiting; done must be called exactly once.
func (c *Client) begin(ctx context.Context) (context.Context, func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, ErrClosed
	}
	c.inflight.Add(1)
	c.active.Add(1)
	c.mu.Unlock()

	callCtx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(c.lifecycle, func() {
		cancel(context.Cause(c.lifecycle))
	})

	return callCtx, func() {
		stop()
		cancel(nil)
		c.active.Add(-1)
		c.inflight.Done()
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, p string, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = p
	u.RawPath = ""
	return http.NewRequestWithContext(ctx, method, u.String(), body)
}

// withCause attaches the cancellation cause of ctx to err, so a transfer
// cut short by Close reports ErrClosed.
func withCause(ctx context.Context, err error) error {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(err, cause) {
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}

// closeBody drains a bounded tail of resp.Body and closes it.
func closeBody(resp *http.Response) {
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
	_ = resp.Body.Close()
}
