// Package transport carries JSON-RPC messages between MCP clients and a
// Handler.
//
// Three transports are provided. Stdio reads newline-delimited requests
// from stdin and writes responses to stdout; the whole stream is a single
// session. HTTP serves POST /mcp through a chi router and tracks sessions
// with the Mcp-Session-Id header; DELETE /mcp ends a session. WebSocket
// treats every connection as a session.
//
// Handlers that implement SessionCloser are told when a session ends so
// per-session state can be released.
package transport
