package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/felixgeelhaar/mcp-adapters/protocol"
	"github.com/felixgeelhaar/mcp-adapters/schema"
)

var (
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	toolResultType = reflect.TypeOf((*ToolResult)(nil))
)

// Tool is a named operation exposed through tools/call.
type Tool struct {
	name        string
	description string
	inputType   reflect.Type
	inputSchema *schema.Schema
	annotations *ToolAnnotations
	handler     reflect.Value
	hasContext  bool
}

// ToolBuilder provides a fluent API for building tools.
type ToolBuilder struct {
	tool   *Tool
	server *Server
	err    error
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.description = desc
	return b
}

// Handler sets the tool handler and registers the tool.
// The handler must be one of:
//   - func(input T) (*ToolResult, error)
//   - func(ctx context.Context, input T) (*ToolResult, error)
//
// where T is a struct describing the arguments.
func (b *ToolBuilder) Handler(fn any) *ToolBuilder {
	if b.err != nil {
		return b
	}
	if err := b.bind(fn); err != nil {
		b.err = fmt.Errorf("tool %q: %w", b.tool.name, err)
		b.server.recordErr(b.err)
		return b
	}
	b.server.registerTool(b.tool)
	return b
}

// Err returns the error recorded while building the tool, if any.
func (b *ToolBuilder) Err() error {
	return b.err
}

func (b *ToolBuilder) bind(fn any) error {
	if fn == nil {
		return errors.New("handler is nil")
	}
	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %s", fnType.Kind())
	}

	inputIdx := 0
	switch fnType.NumIn() {
	case 1:
	case 2:
		if !fnType.In(0).Implements(contextType) {
			return errors.New("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputIdx = 1
	default:
		return fmt.Errorf("handler must have 1 or 2 parameters, got %d", fnType.NumIn())
	}

	if fnType.NumOut() != 2 || fnType.Out(0) != toolResultType || fnType.Out(1) != errorType {
		return errors.New("handler must return (*ToolResult, error)")
	}

	inputType := fnType.In(inputIdx)
	if inputType.Kind() != reflect.Struct {
		return fmt.Errorf("input must be a struct, got %s", inputType.Kind())
	}
	inputSchema, err := schema.GenerateFromType(inputType)
	if err != nil {
		return fmt.Errorf("generate input schema: %w", err)
	}

	b.tool.inputType = inputType
	b.tool.inputSchema = inputSchema
	b.tool.handler = reflect.ValueOf(fn)
	return nil
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Info returns the tools/list entry for the tool.
func (t *Tool) Info() ToolInfo {
	return ToolInfo{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema,
		Annotations: t.annotations,
	}
}

// Execute fills defaults into the raw arguments, validates and decodes
// them, and runs the handler. Malformed arguments fail with an invalid
// params *protocol.Error. Any other handler error is folded into an
// isError result.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	args, err := t.inputSchema.ApplyDefaults(args)
	if err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("invalid arguments: %v", err))
	}
	if err := t.inputSchema.Validate(args); err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("input validation failed: %v", err))
	}

	input := reflect.New(t.inputType)
	if err := json.Unmarshal(args, input.Interface()); err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("failed to parse input: %v", err))
	}

	callArgs := make([]reflect.Value, 0, 2)
	if t.hasContext {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
	}
	callArgs = append(callArgs, input.Elem())

	out := t.handler.Call(callArgs)
	if errVal := out[1].Interface(); errVal != nil {
		err := errVal.(error)
		var protoErr *protocol.Error
		if errors.As(err, &protoErr) {
			return nil, protoErr
		}
		return ErrorResult(err.Error()), nil
	}

	result, _ := out[0].Interface().(*ToolResult)
	if result == nil {
		result = &ToolResult{}
	}
	return result, nil
}
