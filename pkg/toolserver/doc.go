// Package toolserver exposes the relay operations as MCP tools.
//
// Two servers are provided: the messenger server wraps the dispatcher
// (send a message to the responder, inspect its health and models), and
// the responder server wraps the completion engine directly. Both can be
// served over stdio or streamable HTTP.
//
// MCP has no streaming tool results, so the *_stream tools consume the
// event stream and return the assembled text.
package toolserver
