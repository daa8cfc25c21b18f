// Package openai implements the Provider interface for OpenAI and
// OpenAI-compatible Chat Completions backends. All HTTP communication is
// delegated to the shared openaicompat.Client; this adapter adds API key
// enforcement and default model selection.
package openai
