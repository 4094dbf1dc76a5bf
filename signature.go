package swiftgate

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	stowrysign "github.com/sagarc03/stowry-go"
)

const (
	// MaxExpiresSeconds bounds the validity of a presigned URL (7 days).
	MaxExpiresSeconds = 604800
	// DefaultExpires is the validity used when none is given (15 minutes).
	DefaultExpires = 15 * time.Minute

	// clockSkew tolerates signers whose clock runs ahead of ours.
	clockSkew = time.Minute
)

// SignatureVerifier verifies presigned inbound request URLs. A presigned URL
// carries four query parameters:
//
//   - X-Stowry-Credential: the access key
//   - X-Stowry-Date: signing time, Unix seconds
//   - X-Stowry-Expires: validity in seconds (1-604800)
//   - X-Stowry-Signature: HMAC-SHA256 over method, path, date and expiry
type SignatureVerifier struct {
	keys KeyStore
	now  func() time.Time
}

// NewSignatureVerifier creates a verifier resolving secrets through keys.
func NewSignatureVerifier(keys KeyStore) *SignatureVerifier {
	return &SignatureVerifier{keys: keys, now: time.Now}
}

// Verify checks the presigned parameters of r and returns the access key
// that signed it. Every failure wraps ErrUnauthorized.
func (v *SignatureVerifier) Verify(r *http.Request) (string, error) {
	params, err := extractSignatureParams(r.URL.Query())
	if err != nil {
		return "", err
	}

	now := v.now()
	if now.After(params.signedAt.Add(params.expires)) {
		return "", fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}
	if params.signedAt.After(now.Add(clockSkew)) {
		return "", fmt.Errorf("signature date in the future: %w", ErrUnauthorized)
	}

	secretKey, err := v.keys.Lookup(params.accessKey)
	if err != nil {
		return "", fmt.Errorf("invalid access key: %w", ErrUnauthorized)
	}

	expected := stowrysign.Sign(secretKey, r.Method, r.URL.Path, params.signedAt.Unix(), int64(params.expires/time.Second))
	if !hmac.Equal([]byte(expected), []byte(params.signature)) {
		return "", fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return params.accessKey, nil
}

// IsPresigned reports whether query carries a presigned signature.
func IsPresigned(query url.Values) bool {
	return query.Get(stowrysign.StowrySignatureParam) != ""
}

type signatureParams struct {
	accessKey string
	signedAt  time.Time
	expires   time.Duration
	signature string
}

func extractSignatureParams(query url.Values) (*signatureParams, error) {
	credential := query.Get(stowrysign.StowryCredentialParam)
	date := query.Get(stowrysign.StowryDateParam)
	expiresStr := query.Get(stowrysign.StowryExpiresParam)
	signature := query.Get(stowrysign.StowrySignatureParam)

	if credential == "" || date == "" || expiresStr == "" || signature == "" {
		return nil, fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(date, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid signature date: %w", ErrUnauthorized)
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires <= 0 || expires > MaxExpiresSeconds {
		return nil, fmt.Errorf("invalid expires: must be between 1 and %d: %w", MaxExpiresSeconds, ErrUnauthorized)
	}

	return &signatureParams{
		accessKey: credential,
		signedAt:  time.Unix(timestamp, 0),
		expires:   time.Duration(expires) * time.Second,
		signature: signature,
	}, nil
}

// Presign returns baseURL+path with presigned parameters for method, valid
// for expires from now. Existing query parameters of extra are kept.
func Presign(baseURL, accessKey, secretKey, method, path string, expires time.Duration, extra url.Values) (string, error) {
	if expires <= 0 {
		expires = DefaultExpires
	}
	seconds := int64(expires / time.Second)
	if seconds <= 0 || seconds > MaxExpiresSeconds {
		return "", fmt.Errorf("presign: %w: expires must be between 1s and %ds", ErrInvalidInput, MaxExpiresSeconds)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	timestamp := time.Now().Unix()
	query := url.Values{}
	for k, vs := range extra {
		query[k] = vs
	}
	query.Set(stowrysign.StowryCredentialParam, accessKey)
	query.Set(stowrysign.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowrysign.StowryExpiresParam, strconv.FormatInt(seconds, 10))
	query.Set(stowrysign.StowrySignatureParam, stowrysign.Sign(secretKey, method, path, timestamp, seconds))

	return strings.TrimRight(baseURL, "/") + path + "?" + query.Encode(), nil
}
