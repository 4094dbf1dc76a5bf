package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/swiftgate"
	gatewayhttp "github.com/sagarc03/swiftgate/http"
	"github.com/sagarc03/swiftgate/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessKey = "GATEWAYTEST"
	testSecretKey = "testsecret"
)

func newVerifier() *swiftgate.SignatureVerifier {
	return swiftgate.NewSignatureVerifier(keybackend.NewMapSecretStore(map[string]string{
		testAccessKey: testSecretKey,
	}))
}

func TestAuthMiddleware_PublicAccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := gatewayhttp.AccessKeyFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := gatewayhttp.AuthMiddleware(nil)(handler)

	req := httptest.NewRequest(http.MethodGet, "/files/T123", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuthMiddleware_RequiresAuth_NoSignature(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrapped := gatewayhttp.AuthMiddleware(newVerifier())(handler)

	req := httptest.NewRequest(http.MethodGet, "/files/T123", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAuthMiddleware_RequiresAuth_InvalidSignature(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrapped := gatewayhttp.AuthMiddleware(newVerifier())(handler)

	raw, err := swiftgate.Presign("http://gateway.local", testAccessKey, "wrong-secret", http.MethodGet, "/files/T123", 0, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, raw, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidSignature(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = gatewayhttp.AccessKeyFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	wrapped := gatewayhttp.AuthMiddleware(newVerifier())(handler)

	raw, err := swiftgate.Presign("http://gateway.local", testAccessKey, testSecretKey, http.MethodGet, "/files/T123", 0, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, raw, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testAccessKey, seen)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	gatewayhttp.RequestLogger(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
