package server

// ToolAnnotations are behavior hints published with a tool.
type ToolAnnotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    *bool  `json:"readOnlyHint,omitempty"`
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  *bool  `json:"idempotentHint,omitempty"`
	// OpenWorldHint marks tools that reach systems outside the host,
	// such as a quote provider or a grading backend.
	OpenWorldHint *bool `json:"openWorldHint,omitempty"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

func (b *ToolBuilder) annotate(fn func(*ToolAnnotations)) *ToolBuilder {
	if b.err != nil {
		return b
	}
	if b.tool.annotations == nil {
		b.tool.annotations = &ToolAnnotations{}
	}
	fn(b.tool.annotations)
	return b
}

// Title sets a human-readable title for the tool.
func (b *ToolBuilder) Title(title string) *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) { a.Title = title })
}

// ReadOnly marks the tool as free of side effects.
func (b *ToolBuilder) ReadOnly() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) {
		a.ReadOnlyHint = Bool(true)
		a.DestructiveHint = Bool(false)
	})
}

// Idempotent marks repeated calls with the same input as equivalent.
func (b *ToolBuilder) Idempotent() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) { a.IdempotentHint = Bool(true) })
}

// OpenWorld marks the tool as calling external systems.
func (b *ToolBuilder) OpenWorld() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) { a.OpenWorldHint = Bool(true) })
}

// ClosedWorld marks the tool as touching only in-process data.
func (b *ToolBuilder) ClosedWorld() *ToolBuilder {
	return b.annotate(func(a *ToolAnnotations) { a.OpenWorldHint = Bool(false) })
}
