// Package api defines the wire-level contract between the messenger and
// responder roles: the process request/response payloads, streaming frames,
// and the typed error taxonomy shared by every layer. The types here are
// transport-neutral; the HTTP adapter and the MCP tool surface both
// serialize them as-is.
package api
