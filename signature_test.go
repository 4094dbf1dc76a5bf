package swiftgate_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	stowrysign "github.com/sagarc03/stowry-go"
	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	signAccessKey = "GATEWAYTEST"
	signSecretKey = "testsecret123"
)

func newVerifier() *swiftgate.SignatureVerifier {
	return swiftgate.NewSignatureVerifier(keybackend.NewMapSecretStore(map[string]string{
		signAccessKey: signSecretKey,
	}))
}

func signedQuery(accessKey, secretKey, method, path string, timestamp, expires int64) url.Values {
	return url.Values{
		stowrysign.StowryCredentialParam: []string{accessKey},
		stowrysign.StowryDateParam:       []string{fmt.Sprintf("%d", timestamp)},
		stowrysign.StowryExpiresParam:    []string{fmt.Sprintf("%d", expires)},
		stowrysign.StowrySignatureParam:  []string{stowrysign.Sign(secretKey, method, path, timestamp, expires)},
	}
}

func TestSignatureVerifier_Verify(t *testing.T) {
	verifier := newVerifier()
	now := time.Now().Unix()
	path := "/files/documents/abc"

	tests := []struct {
		name      string
		method    string
		query     url.Values
		wantError string
	}{
		{
			name:   "valid signature",
			method: http.MethodGet,
			query:  signedQuery(signAccessKey, signSecretKey, http.MethodGet, path, now, 900),
		},
		{
			name:      "empty query",
			method:    http.MethodGet,
			query:     url.Values{},
			wantError: "missing required signature parameters",
		},
		{
			name:      "expired",
			method:    http.MethodGet,
			query:     signedQuery(signAccessKey, signSecretKey, http.MethodGet, path, time.Now().Add(-2*time.Hour).Unix(), 900),
			wantError: "signature expired",
		},
		{
			name:      "signed in the future",
			method:    http.MethodGet,
			query:     signedQuery(signAccessKey, signSecretKey, http.MethodGet, path, time.Now().Add(time.Hour).Unix(), 900),
			wantError: "in the future",
		},
		{
			name:      "expires too long",
			method:    http.MethodGet,
			query:     signedQuery(signAccessKey, signSecretKey, http.MethodGet, path, now, swiftgate.MaxExpiresSeconds+1),
			wantError: "invalid expires",
		},
		{
			name:      "unknown access key",
			method:    http.MethodGet,
			query:     signedQuery("UNKNOWN", signSecretKey, http.MethodGet, path, now, 900),
			wantError: "invalid access key",
		},
		{
			name:      "wrong secret",
			method:    http.MethodGet,
			query:     signedQuery(signAccessKey, "wrong-secret", http.MethodGet, path, now, 900),
			wantError: "signature mismatch",
		},
		{
			name:      "signed for another method",
			method:    http.MethodPost,
			query:     signedQuery(signAccessKey, signSecretKey, http.MethodGet, path, now, 900),
			wantError: "signature mismatch",
		},
		{
			name:   "invalid date",
			method: http.MethodGet,
			query: url.Values{
				stowrysign.StowryCredentialParam: []string{signAccessKey},
				stowrysign.StowryDateParam:       []string{"yesterday"},
				stowrysign.StowryExpiresParam:    []string{"900"},
				stowrysign.StowrySignatureParam:  []string{"abc"},
			},
			wantError: "invalid signature date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, path+"?"+tt.query.Encode(), nil)

			accessKey, err := verifier.Verify(req)

			if tt.wantError == "" {
				require.NoError(t, err)
				assert.Equal(t, signAccessKey, accessKey)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, swiftgate.ErrUnauthorized)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestSignatureVerifier_AcceptsClientPresignedURL(t *testing.T) {
	client := stowrysign.NewClient("http://gateway.local", signAccessKey, signSecretKey)
	presigned := client.PresignGet("/files/documents/abc", 900)

	req := httptest.NewRequest(http.MethodGet, presigned, nil)

	accessKey, err := newVerifier().Verify(req)
	require.NoError(t, err)
	assert.Equal(t, signAccessKey, accessKey)
}

func TestPresign(t *testing.T) {
	t.Run("round trips through the verifier", func(t *testing.T) {
		extra := url.Values{"inline": []string{"false"}}

		raw, err := swiftgate.Presign("http://gateway.local/", signAccessKey, signSecretKey, http.MethodGet, "files/documents/abc", 10*time.Minute, extra)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/files/documents/abc", u.Path)
		assert.Equal(t, "false", u.Query().Get("inline"))
		assert.Equal(t, "600", u.Query().Get(stowrysign.StowryExpiresParam))
		assert.True(t, swiftgate.IsPresigned(u.Query()))

		_, err = newVerifier().Verify(httptest.NewRequest(http.MethodGet, raw, nil))
		assert.NoError(t, err)
	})

	t.Run("default expiry", func(t *testing.T) {
		raw, err := swiftgate.Presign("http://gateway.local", signAccessKey, signSecretKey, http.MethodGet, "/files", 0, nil)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "900", u.Query().Get(stowrysign.StowryExpiresParam))
	})

	t.Run("rejects expiry beyond the limit", func(t *testing.T) {
		_, err := swiftgate.Presign("http://gateway.local", signAccessKey, signSecretKey, http.MethodGet, "/files", 8*24*time.Hour, nil)
		assert.ErrorIs(t, err, swiftgate.ErrInvalidInput)
	})
}

func TestIsPresigned(t *testing.T) {
	assert.False(t, swiftgate.IsPresigned(url.Values{}))
	assert.True(t, swiftgate.IsPresigned(url.Values{stowrysign.StowrySignatureParam: []string{"x"}}))
}
