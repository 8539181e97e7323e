package adminui

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "healthy", statusCode: http.StatusOK, wantErr: false},
		{name: "server error", statusCode: http.StatusInternalServerError, wantErr: true},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			err := NewClient(logr.Discard()).CheckHealth(context.Background(), srv.URL)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "/api/v0/status", gotPath)
		})
	}
}

// serverCAPEM extracts the test server's certificate as a PEM bundle.
func serverCAPEM(t *testing.T, srv *httptest.Server) []byte {
	t.Helper()
	require.NotEmpty(t, srv.TLS.Certificates)
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: srv.TLS.Certificates[0].Certificate[0],
	})
}

func TestValidateIssuerTrust(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issuer":"` + r.Host + `"}`))
	}))
	defer srv.Close()

	c := NewClient(logr.Discard())

	trusted, err := c.ValidateIssuerTrust(context.Background(), srv.URL, serverCAPEM(t, srv))
	require.NoError(t, err)
	assert.True(t, trusted)
}

func TestValidateIssuerTrustWrongBundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// A bundle from a different authority does not cover the issuer chain:
	// not trusted, but not an error either.
	c := NewClient(logr.Discard())

	trusted, err := c.ValidateIssuerTrust(context.Background(), srv.URL, unrelatedCAPEM(t))
	require.NoError(t, err)
	assert.False(t, trusted)
}

// unrelatedCAPEM builds a self-signed CA that signed nothing the test
// servers present.
func unrelatedCAPEM(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "unrelated-test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestValidateIssuerTrustEmptyBundle(t *testing.T) {
	c := NewClient(logr.Discard())

	_, err := c.ValidateIssuerTrust(context.Background(), "https://issuer.example.com", []byte("not a pem"))
	assert.Error(t, err)
}

// An issuer that cannot be reached at all is a transport error, not an
// untrusted verdict.
func TestValidateIssuerTrustUnreachableIssuer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	issuer := srv.URL
	srv.Close()

	c := NewClient(logr.Discard())

	_, err := c.ValidateIssuerTrust(context.Background(), issuer, unrelatedCAPEM(t))
	assert.Error(t, err)
}
