// Package imagefetch loads question images and encodes them for image
// content parts.
package imagefetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
)

const (
	// DefaultTimeout bounds a whole remote fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultMimeType is assumed when the host sends no content type.
	DefaultMimeType = "image/jpeg"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxBytes  = 10 << 20
)

// Image is base64 image data with its MIME type.
type Image struct {
	Data     string
	MimeType string
}

// Fetcher downloads images. data: URLs are decoded without a request.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{client: http.DefaultClient, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the image at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return DecodeDataURL(rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Image{}, &apperr.RequestError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, &apperr.RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, &apperr.RequestError{Err: fmt.Errorf("request failed with status code %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return Image{}, &apperr.RequestError{Err: err}
	}
	if len(body) > maxBytes {
		return Image{}, &apperr.RequestError{Err: fmt.Errorf("image exceeds %d MiB", maxBytes>>20)}
	}
	return Image{
		Data:     base64.StdEncoding.EncodeToString(body),
		MimeType: mediaType(resp.Header.Get("Content-Type")),
	}, nil
}

// DecodeDataURL parses "data:[<mediatype>][;base64],<data>". Base64
// payloads are re-encoded canonically; others are percent-decoded first.
func DecodeDataURL(rawURL string) (Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return Image{}, &apperr.ValidationError{Field: "imageUrl", Message: "malformed data URL"}
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	meta = strings.TrimSuffix(meta, ";base64")

	var raw []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Image{}, &apperr.ValidationError{Field: "imageUrl", Message: fmt.Sprintf("invalid base64 in data URL: %v", err)}
		}
		raw = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return Image{}, &apperr.ValidationError{Field: "imageUrl", Message: fmt.Sprintf("invalid data URL payload: %v", err)}
		}
		raw = []byte(unescaped)
	}

	return Image{Data: base64.StdEncoding.EncodeToString(raw), MimeType: mediaType(meta)}, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return DefaultMimeType
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" {
		return DefaultMimeType
	}
	return mt
}
