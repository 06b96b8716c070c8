package server

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

var templateParam = regexp.MustCompile(`\{([^}]+)\}`)

// ResourceContent is the payload returned by a resource handler.
type ResourceContent struct {
	URI      string
	MimeType string
	Text     string
	Blob     string // base64
}

// Wire converts the content to a resources/read entry.
func (c *ResourceContent) Wire() protocol.ResourceContents {
	return protocol.ResourceContents{URI: c.URI, MimeType: c.MimeType, Text: c.Text, Blob: c.Blob}
}

// ResourceHandler reads a resource. params holds the decoded template
// parameters of uri.
type ResourceHandler func(ctx context.Context, uri string, params map[string]string) (*ResourceContent, error)

// Resource is a URI-addressed read-only endpoint.
type Resource struct {
	uriTemplate string
	name        string
	description string
	mimeType    string
	handler     ResourceHandler

	uriRegex   *regexp.Regexp
	paramNames []string
}

// ResourceInfo describes a registered resource.
type ResourceInfo struct {
	URITemplate string
	Name        string
	Description string
	MimeType    string
	Templated   bool
}

// ResourceBuilder provides a fluent API for building resources.
type ResourceBuilder struct {
	resource *Resource
	server   *Server
	err      error
}

// Name sets a human-readable name for the resource.
func (b *ResourceBuilder) Name(name string) *ResourceBuilder {
	b.resource.name = name
	return b
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(desc string) *ResourceBuilder {
	b.resource.description = desc
	return b
}

// MimeType sets the MIME type reported for the resource content.
func (b *ResourceBuilder) MimeType(mimeType string) *ResourceBuilder {
	b.resource.mimeType = mimeType
	return b
}

// Handler sets the resource handler and registers the resource.
func (b *ResourceBuilder) Handler(fn ResourceHandler) *ResourceBuilder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		b.err = fmt.Errorf("resource %q: handler is nil", b.resource.uriTemplate)
		b.server.recordErr(b.err)
		return b
	}
	b.resource.handler = fn
	if err := b.resource.compileTemplate(); err != nil {
		b.err = fmt.Errorf("resource %q: %w", b.resource.uriTemplate, err)
		b.server.recordErr(b.err)
		return b
	}
	b.server.registerResource(b.resource)
	return b
}

// Err returns the error recorded while building the resource, if any.
func (b *ResourceBuilder) Err() error {
	return b.err
}

// compileTemplate turns "stock://{symbol}/{interval}" into an anchored
// regex with one single-segment capture group per parameter.
func (r *Resource) compileTemplate() error {
	r.paramNames = r.paramNames[:0]
	for _, m := range templateParam.FindAllStringSubmatch(r.uriTemplate, -1) {
		r.paramNames = append(r.paramNames, m[1])
	}

	pattern := regexp.QuoteMeta(r.uriTemplate)
	pattern = strings.ReplaceAll(pattern, `\{`, "{")
	pattern = strings.ReplaceAll(pattern, `\}`, "}")
	pattern = templateParam.ReplaceAllString(pattern, `([^/]+)`)

	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return err
	}
	r.uriRegex = re
	return nil
}

// Info returns the listing entry for the resource.
func (r *Resource) Info() ResourceInfo {
	return ResourceInfo{
		URITemplate: r.uriTemplate,
		Name:        r.name,
		Description: r.description,
		MimeType:    r.mimeType,
		Templated:   len(r.paramNames) > 0,
	}
}

// Match reports whether uri matches the template and returns its
// percent-decoded parameters.
func (r *Resource) Match(uri string) (map[string]string, bool) {
	m := r.uriRegex.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(r.paramNames))
	for i, name := range r.paramNames {
		v, err := url.PathUnescape(m[i+1])
		if err != nil {
			v = m[i+1]
		}
		params[name] = v
	}
	return params, true
}

// Read runs the handler for uri.
func (r *Resource) Read(ctx context.Context, uri string) (*ResourceContent, error) {
	params, ok := r.Match(uri)
	if !ok {
		return nil, fmt.Errorf("URI %q does not match template %q", uri, r.uriTemplate)
	}
	content, err := r.handler(ctx, uri, params)
	if err != nil {
		return nil, err
	}
	if content.URI == "" {
		content.URI = uri
	}
	if content.MimeType == "" {
		content.MimeType = r.mimeType
	}
	return content, nil
}
