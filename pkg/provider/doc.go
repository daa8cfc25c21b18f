// Package provider defines the backend-agnostic interface for LLM
// completion backends. Each adapter (openai, bedrock, mock) handles its own
// protocol translation internally, so backend details stay invisible to the
// orchestrator. The interface operates on relay's own types (Request,
// Result, Event).
package provider
