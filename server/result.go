package server

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
)

// ToolResult is the outcome of a tool invocation: an ordered list of
// content parts, flagged as an error when the tool could not produce its
// primary result.
type ToolResult struct {
	Content []protocol.ContentPart
	IsError bool
}

// TextResult returns a successful result with a single text part.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []protocol.ContentPart{protocol.TextPart(text)}}
}

// ErrorResult returns an error-flagged result with a single text part.
func ErrorResult(text string) *ToolResult {
	return &ToolResult{Content: []protocol.ContentPart{protocol.TextPart(text)}, IsError: true}
}

// Errorf is ErrorResult with formatting.
func Errorf(format string, args ...any) *ToolResult {
	return ErrorResult(fmt.Sprintf(format, args...))
}

// AddText appends a text part.
func (r *ToolResult) AddText(text string) *ToolResult {
	r.Content = append(r.Content, protocol.TextPart(text))
	return r
}

// AddImage appends a base64 image part.
func (r *ToolResult) AddImage(data, mimeType string) *ToolResult {
	r.Content = append(r.Content, protocol.ImagePart(data, mimeType))
	return r
}

// Text joins the text parts with newlines.
func (r *ToolResult) Text() string {
	var parts []string
	for _, c := range r.Content {
		if c.Type == protocol.ContentText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Wire converts the result to its tools/call payload.
func (r *ToolResult) Wire() protocol.CallToolResult {
	content := r.Content
	if content == nil {
		content = []protocol.ContentPart{}
	}
	return protocol.CallToolResult{Content: content, IsError: r.IsError}
}
