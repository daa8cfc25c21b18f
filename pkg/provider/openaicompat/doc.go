// Package openaicompat implements the shared HTTP client for OpenAI-style
// Chat Completions backends. Messages pass through unchanged, usage counters
// are read directly from the response envelope, and streaming delivers
// incremental content deltas over SSE. Provider adapters embed Client and
// delegate their Complete/Stream/ListModels/HealthCheck calls to it.
package openaicompat
