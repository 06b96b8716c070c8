package protocol

// MCPVersion is the protocol revision announced during initialize.
const MCPVersion = "2024-11-05"

// Method names handled by the dispatcher.
const (
	MethodInitialize             = "initialize"
	MethodInitialized            = "notifications/initialized"
	MethodPing                   = "ping"
	MethodToolsList              = "tools/list"
	MethodToolsCall              = "tools/call"
	MethodResourcesList          = "resources/list"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesRead          = "resources/read"
)

// SessionHeader carries the session id on HTTP requests and responses.
const SessionHeader = "Mcp-Session-Id"
