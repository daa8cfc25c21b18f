package dispatch

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
)

// Health fetches the responder's health payload.
func (d *Dispatcher) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := d.getJSON(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Models fetches the responder's provider listing.
func (d *Dispatcher) Models(ctx context.Context) (*api.ModelList, error) {
	var resp api.ModelList
	if err := d.getJSON(ctx, "/models", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Config fetches the responder's configuration read payload.
func (d *Dispatcher) Config(ctx context.Context) (*api.ConfigResponse, error) {
	var resp api.ConfigResponse
	if err := d.getJSON(ctx, "/config", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getJSON performs an auxiliary GET with the short aux timeout and decodes
// the JSON reply into out.
func (d *Dispatcher) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.ResponderURL+path, nil)
	if err != nil {
		return api.NewConnectivityError("failed to create HTTP request: " + err.Error())
	}

	httpResp, err := d.auxClient.Do(httpReq)
	if err != nil {
		return mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return mapHTTPError(httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return api.NewUpstreamServerError(0, "failed to parse responder reply: "+err.Error())
	}
	return nil
}
