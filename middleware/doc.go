// Package middleware provides the request middleware applied around the
// tool server dispatcher.
//
// Middleware follows the usual wrapping pattern; each one receives the
// next handler and may act before and after it:
//
//	handler := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.OTel(middleware.WithOTelServiceName("stock")),
//	    middleware.Logging(logger),
//	)(dispatch)
//
// DefaultStack returns that same ordering.
//
// Logging writes through the Logger interface so that callers can plug in
// their own structured logger. Tool calls that complete with an isError
// result are logged at warn level and counted by the OTel middleware, even
// though they are successful JSON-RPC responses.
package middleware
