// Package transport serves the responder API over HTTP/SSE.
//
// The transport layer bridges external clients and the completion engine.
// It deserializes incoming requests into the wire types defined in pkg/api,
// dispatches them for processing, and serializes responses back to the
// client in either synchronous (JSON) or streaming (SSE) format.
//
// The Responder interface defines the contract between the transport layer
// and the engine. The Adapter routes requests with Go 1.22+ ServeMux
// patterns; the Server wraps an http.Server and manages the full lifecycle
// including graceful shutdown. SSE flushing uses http.NewResponseController.
package transport
