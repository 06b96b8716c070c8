// Package server implements the tool server core: tool and resource
// registration, per-session state and JSON-RPC dispatch.
//
// # Tools
//
// Tools are registered with a fluent builder. The handler receives its
// decoded, validated and defaulted argument struct and returns a
// *ToolResult:
//
//	type AlertsInput struct {
//	    Symbol    schema.StringOrList `json:"symbol" jsonschema:"required,description=Ticker symbol"`
//	    Threshold schema.NumberOrList `json:"threshold,omitempty" jsonschema:"default=5"`
//	}
//
//	srv.Tool("get-stock-alerts").
//	    Description("Detect large day-over-day moves").
//	    ReadOnly().
//	    Handler(func(ctx context.Context, in AlertsInput) (*server.ToolResult, error) {
//	        return server.TextResult("..."), nil
//	    })
//
// A plain error returned by a handler becomes an isError result carrying
// the error text; only *protocol.Error values fail the JSON-RPC call.
//
// # Resources
//
// Resources are addressed by URI templates whose {params} match a single
// path segment:
//
//	srv.Resource("question://{id}").
//	    MimeType("application/json").
//	    Handler(func(ctx context.Context, uri string, params map[string]string) (*server.ResourceContent, error) {
//	        p, err := server.ExtractParams[struct{ ID int `uri:"id"` }](params)
//	        ...
//	    })
//
// # Sessions
//
// Every request runs with a *Session looked up by the id the transport
// placed in the request metadata. Handlers reach it with
// SessionFromContext and keep per-caller state in it.
package server
