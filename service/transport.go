package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CarrierResponse is the raw result of one logical carrier call: whichever
// endpoint answered first, success or carrier-reported HTTP error alike.
type CarrierResponse struct {
	StatusCode int
	Body       []byte
}

// Transport sends one logical request to the carrier. Implementations decide
// how to reach it; the orchestrator only classifies the HTTP status it gets.
type Transport interface {
	Send(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*CarrierResponse, error)
}

// Doer is the subset of *http.Client we need. Tests inject a fake to count
// calls and script per-endpoint behavior without a real network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FailoverTransport walks an ordered list of candidate base URLs and returns
// the first response obtained. A connectivity failure on one endpoint (DNS,
// connection refused, timeout) is not surfaced, it just moves to the next
// candidate. Only exhausting the whole list is an error, and that error
// aggregates every endpoint's failure reason for diagnosability.
//
// HTTP error statuses are NOT failures here: a 500 from the carrier is a
// response, and classifying it is the orchestrator's job.
type FailoverTransport struct {
	endpoints []string
	client    Doer
	timeout   time.Duration
}

// NewFailoverTransport builds a transport over the given base URLs with a
// per-call timeout. A nil client gets a default http.Client.
func NewFailoverTransport(endpoints []string, client Doer, timeout time.Duration) *FailoverTransport {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FailoverTransport{
		endpoints: endpoints,
		client:    client,
		timeout:   timeout,
	}
}

// Send marshals body to JSON (when non-nil) and tries each endpoint in order.
// Stateless between invocations.
func (t *FailoverTransport) Send(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*CarrierResponse, error) {
	if len(t.endpoints) == 0 {
		return nil, fmt.Errorf("no carrier endpoints configured")
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal carrier request: %v", err)
		}
		payload = b
	}

	var reasons []string
	for _, base := range t.endpoints {
		resp, err := t.sendOne(ctx, method, base+path, payload, headers)
		if err != nil {
			// Local/network-layer failure. Remember why and try the next one.
			reasons = append(reasons, fmt.Sprintf("%s: %v", base, err))
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("all %d carrier endpoints failed: %s", len(t.endpoints), strings.Join(reasons, "; "))
}

func (t *FailoverTransport) sendOne(ctx context.Context, method, url string, payload []byte, headers map[string]string) (*CarrierResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(callCtx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read carrier response body: %v", err)
	}
	return &CarrierResponse{StatusCode: resp.StatusCode, Body: b}, nil
}
