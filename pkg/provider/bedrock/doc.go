// Package bedrock implements the Provider interface for AWS Bedrock
// Anthropic models. Requests are translated into the Anthropic messages
// envelope and sent through the Bedrock runtime invoke-model API; streaming
// uses invoke-model-with-response-stream and surfaces only text deltas.
package bedrock
