// Package e2e runs both adapter servers end to end: a real client talks
// to the full middleware stack over the stdio and HTTP transports, with
// httptest servers standing in for Alpha Vantage and the language model.
package e2e
