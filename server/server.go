package server

import (
	"errors"
	"sync"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/schema"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name    string
	Version string
}

// Manifest is the serverInfo/protocolVersion pair returned by initialize.
type Manifest struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
}

// ToolInfo describes a registered tool for tools/list.
type ToolInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema *schema.Schema   `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithSessionStore shares an existing session store with the server.
func WithSessionStore(store *SessionStore) Option {
	return func(s *Server) {
		s.sessions = store
	}
}

// Server holds the registered tools and resources of one tool server.
// Listing preserves registration order.
type Server struct {
	mu sync.RWMutex

	info      Info
	tools     []*Tool
	toolIndex map[string]*Tool
	resources []*Resource
	sessions  *SessionStore
	errs      []error
}

// New creates a server with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:      info,
		toolIndex: make(map[string]*Tool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = NewSessionStore()
	}
	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	return s.info
}

// Manifest returns the identity reported during initialize.
func (s *Server) Manifest() Manifest {
	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: protocol.MCPVersion,
	}
}

// Sessions returns the store that backs per-caller state.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Err reports every error recorded while registering tools and resources.
func (s *Server) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(s.errs...)
}

func (s *Server) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// Tool starts building a new tool with the given name.
func (s *Server) Tool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool:   &Tool{name: name},
		server: s,
	}
}

// Tools returns the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		result = append(result, t.Info())
	}
	return result
}

// GetTool retrieves a tool by name.
func (s *Server) GetTool(name string) (*Tool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.toolIndex[name]
	return t, ok
}

func (s *Server) registerTool(t *Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.toolIndex[t.name]; ok {
		for i, existing := range s.tools {
			if existing == prev {
				s.tools[i] = t
			}
		}
	} else {
		s.tools = append(s.tools, t)
	}
	s.toolIndex[t.name] = t
}

// Resource starts building a new resource with the given URI template.
func (s *Server) Resource(uriTemplate string) *ResourceBuilder {
	return &ResourceBuilder{
		resource: &Resource{uriTemplate: uriTemplate},
		server:   s,
	}
}

// Resources returns the registered resources in registration order.
func (s *Server) Resources() []ResourceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ResourceInfo, 0, len(s.resources))
	for _, r := range s.resources {
		result = append(result, r.Info())
	}
	return result
}

// FindResourceForURI returns the first registered resource whose template
// matches uri, with the extracted template parameters.
func (s *Server) FindResourceForURI(uri string) (*Resource, map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.resources {
		if params, ok := r.Match(uri); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}

func (s *Server) registerResource(r *Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, r)
}
