package imagefetch

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestFetch_Remote(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	img, err := New(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL+"/diagram.png")
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngBytes), img.Data)
	assert.Contains(t, gotAgent, "Mozilla/5.0")
}

func TestFetch_DefaultMimeType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	img, err := New(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultMimeType, img.MimeType)
}

func TestFetch_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := New(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL)
		var reqErr *apperr.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("oversize", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(make([]byte, maxBytes+1))
		}))
		defer srv.Close()

		img, err := New(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL)
		var reqErr *apperr.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Contains(t, err.Error(), "image exceeds 10 MiB")
		assert.Empty(t, img.Data)
	})

	t.Run("at size limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(make([]byte, maxBytes))
		}))
		defer srv.Close()

		img, err := New(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodedLen(maxBytes), len(img.Data))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := New(WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL)
		var reqErr *apperr.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantMime string
		wantRaw  string
	}{
		{name: "base64", url: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte("<svg/>")), wantMime: "image/svg+xml", wantRaw: "<svg/>"},
		{name: "percent encoded", url: "data:image/svg+xml,%3Csvg%2F%3E", wantMime: "image/svg+xml", wantRaw: "<svg/>"},
		{name: "no media type", url: "data:;base64," + base64.StdEncoding.EncodeToString([]byte("x")), wantMime: DefaultMimeType, wantRaw: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New().Fetch(context.Background(), tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, img.MimeType)
			raw, err := base64.StdEncoding.DecodeString(img.Data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, string(raw))
		})
	}
}

func TestDecodeDataURL_Malformed(t *testing.T) {
	for _, u := range []string{"data:image/png;base64", "data:image/png;base64,@@@"} {
		_, err := DecodeDataURL(u)
		var vErr *apperr.ValidationError
		assert.ErrorAs(t, err, &vErr, u)
	}
}
