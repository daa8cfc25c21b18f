package api

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       ProcessRequest
		wantParam string // empty means valid
	}{
		{
			"valid minimal",
			ProcessRequest{Message: "hello", MaxTokens: 100},
			"",
		},
		{
			"valid with everything",
			ProcessRequest{Message: "hello", Context: "be brief", Model: "gpt-4", Temperature: floatPtr(1.5), MaxTokens: 4000},
			"",
		},
		{
			"explicit zero temperature",
			ProcessRequest{Message: "hello", Temperature: floatPtr(0.0), MaxTokens: 50},
			"",
		},
		{
			"empty message",
			ProcessRequest{MaxTokens: 100},
			"message",
		},
		{
			"message too long",
			ProcessRequest{Message: strings.Repeat("x", MaxMessageChars+1), MaxTokens: 100},
			"message",
		},
		{
			"context too long",
			ProcessRequest{Message: "hello", Context: strings.Repeat("x", MaxContextChars+1), MaxTokens: 100},
			"context",
		},
		{
			"temperature too high",
			ProcessRequest{Message: "hello", Temperature: floatPtr(2.1), MaxTokens: 100},
			"temperature",
		},
		{
			"negative temperature",
			ProcessRequest{Message: "hello", Temperature: floatPtr(-0.1), MaxTokens: 100},
			"temperature",
		},
		{
			"zero max tokens",
			ProcessRequest{Message: "hello"},
			"max_tokens",
		},
		{
			"max tokens over limit",
			ProcessRequest{Message: "hello", MaxTokens: MaxTokensLimit + 1},
			"max_tokens",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(&tt.req)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
			if err.Type != ErrorTypeInvalidRequest {
				t.Errorf("Type = %q, want %q", err.Type, ErrorTypeInvalidRequest)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	req := ProcessRequest{Message: "hi"}
	req.ApplyDefaults()
	if req.Temperature == nil || *req.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", req.Temperature, DefaultTemperature)
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}

	// Explicit values are preserved.
	req = ProcessRequest{Message: "hi", Temperature: floatPtr(0.0), MaxTokens: 42}
	req.ApplyDefaults()
	if *req.Temperature != 0.0 {
		t.Errorf("explicit zero temperature overwritten: %v", *req.Temperature)
	}
	if req.MaxTokens != 42 {
		t.Errorf("explicit max tokens overwritten: %d", req.MaxTokens)
	}
}
