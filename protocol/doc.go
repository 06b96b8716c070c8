// Package protocol defines the JSON-RPC 2.0 envelopes, error codes and
// MCP payload shapes shared by the transports and the tool server.
//
// Requests and responses are plain structs:
//
//	req := protocol.Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: protocol.MethodToolsCall}
//	resp := protocol.NewResponse(req.ID, result)
//
// Tool invocations answer with a CallToolResult, a list of text or image
// parts plus an isError flag. Resource reads answer with a
// ReadResourceResult holding one or more ResourceContents.
//
// Errors that must reach the caller as JSON-RPC failures are *Error values:
//
//	return protocol.NewInvalidParams("missing required field: symbol")
package protocol
