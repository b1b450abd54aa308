package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// Carrier API paths, relative to whichever base endpoint answers.
const (
	createConsignmentPath = "/consignment/create"
	labelPath             = "/consignment/label"
	cancelPath            = "/consignment/cancel"
	trackingDetailsPath   = "/tracking/details"
	serviceabilityPath    = "/serviceability/check"
)

const (
	maxCreateAttempts = 3
	retryDelay        = 2 * time.Second // linear, the carrier rate-limits aggressive retries

	trackBatchSize  = 10
	trackBatchPause = 1 * time.Second
)

// CarrierGateway is the single entry point for turning shipment requests
// into AWB numbers and answering tracking queries. The fallback-vs-real
// branching lives here and nowhere else; transport, fallback generation and
// audit are injected collaborators.
type CarrierGateway struct {
	profile   models.CarrierAccountProfile
	transport Transport
	fallback  *FallbackGenerator
	audit     AuditLogger

	// injectable for deterministic tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewCarrierGateway wires the gateway. transport may be nil when no endpoints
// are configured, the gateway then operates permanently in fallback mode,
// which is a supported configuration, not an error.
func NewCarrierGateway(profile models.CarrierAccountProfile, transport Transport, fallback *FallbackGenerator, audit AuditLogger) *CarrierGateway {
	if fallback == nil {
		fallback = NewFallbackGenerator()
	}
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &CarrierGateway{
		profile:   profile,
		transport: transport,
		fallback:  fallback,
		audit:     audit,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// WithClock overrides the gateway's clock and sleep, for tests.
func (g *CarrierGateway) WithClock(now func() time.Time, sleep func(time.Duration)) *CarrierGateway {
	if now != nil {
		g.now = now
	}
	if sleep != nil {
		g.sleep = sleep
	}
	return g
}

func (g *CarrierGateway) authHeaders() map[string]string {
	return map[string]string{
		"api-key":       g.profile.APIKey,
		"customer-code": g.profile.CustomerCode,
	}
}

func (g *CarrierGateway) trackingHeaders() map[string]string {
	return map[string]string{
		"tracking-user": g.profile.TrackingUsername,
		"tracking-pass": g.profile.TrackingPassword,
	}
}

// canAttemptCarrier reports whether a real network attempt is possible at all.
func (g *CarrierGateway) canAttemptCarrier() bool {
	return g.transport != nil && g.profile.HasValidCredentials()
}

// createResponse is the carrier's consignment-create response body.
type createResponse struct {
	Success         bool   `json:"success"`
	AWBNumber       string `json:"awb_number"`
	ReferenceNumber string `json:"reference_number"`
	TrackingURL     string `json:"tracking_url"`
	Message         string `json:"message"`
}

// CreateShipment books one shipment and always resolves to a terminal
// AWBResult. Carrier-side problems never surface as errors to the caller:
// the dominant degraded outcome is success=true with fallbackUsed=true.
// Only an invalid request yields success=false.
//
// Attempts and ElapsedMs reflect exactly what happened, so callers can tell
// "fell back after 3 failed tries" from "fell back immediately, unconfigured".
func (g *CarrierGateway) CreateShipment(ctx context.Context, req models.ShipmentRequest) models.AWBResult {
	start := g.now()

	// 1. Validation. A malformed request is a caller bug: zero attempts,
	// zero network calls, no fallback.
	if err := ValidateShipmentRequest(req); err != nil {
		return models.AWBResult{
			Success:   false,
			Error:     err.Error(),
			ElapsedMs: g.now().Sub(start).Milliseconds(),
		}
	}

	// 2. Unconfigured environments go straight to fallback. Shipment
	// creation must never hard-fail just because the carrier integration
	// is absent in this environment.
	if !g.canAttemptCarrier() {
		result := g.fallback.Generate(req, "missing credentials")
		result.Attempts = 0
		result.ElapsedMs = g.now().Sub(start).Milliseconds()
		g.recordOutcome(ctx, req, result, "missing credentials")
		return result
	}

	// 3. Bounded retry loop against the real carrier.
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		attempts = attempt
		payload := BuildConsignment(req, g.profile)

		resp, err := g.transport.Send(ctx, http.MethodPost, createConsignmentPath, payload, g.authHeaders())
		if err != nil {
			// Endpoint exhaustion: retryable.
			lastErr = err
		} else if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			// Bad credentials never self-resolve by retrying.
			lastErr = fmt.Errorf("carrier rejected credentials: status %d", resp.StatusCode)
			break
		} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var body createResponse
			if jsonErr := json.Unmarshal(resp.Body, &body); jsonErr != nil {
				lastErr = fmt.Errorf("malformed carrier response: %v", jsonErr)
			} else if !body.Success || body.AWBNumber == "" {
				// 200 with success:false is a carrier business error.
				lastErr = fmt.Errorf("carrier declined consignment: %s", body.Message)
			} else {
				result := models.AWBResult{
					Success:         true,
					AWBNumber:       body.AWBNumber,
					TrackingURL:     body.TrackingURL,
					ReferenceNumber: firstNonEmpty(body.ReferenceNumber, payload.CustomerReferenceNumber),
					Attempts:        attempt,
					ElapsedMs:       g.now().Sub(start).Milliseconds(),
				}
				g.recordOutcome(ctx, req, result, "")
				return result
			}
		} else {
			lastErr = fmt.Errorf("carrier error: status %d: %s", resp.StatusCode, truncateBody(resp.Body))
		}

		if attempt < maxCreateAttempts {
			g.sleep(retryDelay)
		}
	}

	// 4. Attempt budget exhausted (or auth aborted): fall back.
	reason := "carrier unavailable"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	result := g.fallback.Generate(req, reason)
	result.Attempts = attempts
	result.ElapsedMs = g.now().Sub(start).Milliseconds()
	g.recordOutcome(ctx, req, result, reason)
	return result
}

// recordOutcome hands the terminal result to the audit logger. Best-effort:
// the logger can never alter or fail the result.
func (g *CarrierGateway) recordOutcome(ctx context.Context, req models.ShipmentRequest, result models.AWBResult, reason string) {
	g.audit.Record(ctx, models.AttemptLogEntry{
		ShipmentRef:  firstNonEmpty(req.ShipmentID, result.ReferenceNumber),
		Success:      result.Success,
		AWBNumber:    result.AWBNumber,
		IsFallback:   result.FallbackUsed,
		Error:        reason,
		TimestampUTC: g.now().UTC(),
	})
}

// trackingResponse is the carrier's tracking-details response body.
type trackingResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Events  []CarrierScanEvent `json:"events"`
}

// TrackShipment answers "where is this shipment" for both real and fallback
// AWBs. Fallback AWBs are tracked with no carrier involvement: the history is
// synthesized from the timestamp embedded in the number.
func (g *CarrierGateway) TrackShipment(ctx context.Context, awb string) (models.TrackingSnapshot, error) {
	if awb == "" {
		return models.TrackingSnapshot{}, fmt.Errorf("awb number is required")
	}

	if IsFallbackAWB(awb) {
		events, err := SynthesizeHistory(awb, g.now())
		if err != nil {
			return models.TrackingSnapshot{}, err
		}
		return snapshotFromEvents(awb, events), nil
	}

	if !g.canAttemptCarrier() {
		return models.TrackingSnapshot{AWBNumber: awb, CurrentStatus: models.StatusUnknown},
			fmt.Errorf("carrier tracking is not configured")
	}

	resp, err := g.transport.Send(ctx, http.MethodPost, trackingDetailsPath,
		map[string]string{"awb": awb}, g.trackingHeaders())
	if err != nil {
		return models.TrackingSnapshot{AWBNumber: awb, CurrentStatus: models.StatusUnknown},
			fmt.Errorf("failed to fetch tracking details: %v", err)
	}
	var body trackingResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.TrackingSnapshot{AWBNumber: awb, CurrentStatus: models.StatusUnknown},
			fmt.Errorf("malformed tracking response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return models.TrackingSnapshot{AWBNumber: awb, CurrentStatus: models.StatusUnknown},
			fmt.Errorf("carrier tracking error: status %d: %s", resp.StatusCode, body.Message)
	}
	return snapshotFromEvents(awb, NormalizeEvents(body.Events)), nil
}

func snapshotFromEvents(awb string, events []models.TrackingEvent) models.TrackingSnapshot {
	current := models.StatusUnknown
	if len(events) > 0 {
		current = events[len(events)-1].CanonicalStatus
	}
	return models.TrackingSnapshot{
		AWBNumber:     awb,
		CurrentStatus: current,
		History:       events,
	}
}

// TrackShipments tracks a list of AWBs in bounded batches to respect the
// carrier's rate limits: up to trackBatchSize concurrent lookups, then a
// pause before the next batch. Per-AWB failures land in the snapshot's Error
// field so one bad number never sinks the batch.
func (g *CarrierGateway) TrackShipments(ctx context.Context, awbs []string) []models.TrackingSnapshot {
	snapshots := make([]models.TrackingSnapshot, len(awbs))

	for batchStart := 0; batchStart < len(awbs); batchStart += trackBatchSize {
		batchEnd := batchStart + trackBatchSize
		if batchEnd > len(awbs) {
			batchEnd = len(awbs)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				snap, err := g.TrackShipment(ctx, awbs[idx])
				if err != nil {
					snap.AWBNumber = awbs[idx]
					snap.Error = err.Error()
				}
				snapshots[idx] = snap
			}(i)
		}
		wg.Wait()

		if batchEnd < len(awbs) {
			g.sleep(trackBatchPause)
		}
	}
	return snapshots
}

// cancelResponse is the carrier's cancel response body.
type cancelResponse struct {
	Success   bool     `json:"success"`
	Cancelled []string `json:"cancelled"`
	Failed    []string `json:"failed"`
	Message   string   `json:"message"`
}

// CancelShipments cancels a batch of AWBs. Fallback AWBs were never booked
// with the carrier, so they cancel locally and always succeed. Real AWBs go
// to the carrier in one call; if the carrier is unreachable or unconfigured
// they are all reported failed rather than silently dropped.
func (g *CarrierGateway) CancelShipments(ctx context.Context, awbs []string) models.CancelResult {
	var result models.CancelResult
	var real []string
	for _, awb := range awbs {
		if IsFallbackAWB(awb) {
			result.Cancelled = append(result.Cancelled, awb)
		} else {
			real = append(real, awb)
		}
	}
	if len(real) == 0 {
		return result
	}

	if !g.canAttemptCarrier() {
		result.Failed = append(result.Failed, real...)
		return result
	}

	resp, err := g.transport.Send(ctx, http.MethodPost, cancelPath,
		map[string][]string{"awb_numbers": real}, g.authHeaders())
	if err != nil {
		result.Failed = append(result.Failed, real...)
		return result
	}
	var body cancelResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || resp.StatusCode != http.StatusOK {
		result.Failed = append(result.Failed, real...)
		return result
	}
	result.Cancelled = append(result.Cancelled, body.Cancelled...)
	if len(body.Failed) > 0 {
		result.Failed = append(result.Failed, body.Failed...)
	} else if !body.Success && len(body.Cancelled) == 0 {
		result.Failed = append(result.Failed, real...)
	}
	return result
}

// serviceabilityResponse is the carrier's serviceability response body.
type serviceabilityResponse struct {
	Success       bool `json:"success"`
	Serviceable   bool `json:"serviceable"`
	EstimatedDays int  `json:"estimated_days"`
}

// CheckServiceability asks whether the carrier serves a pincode pair. With no
// carrier configured it answers from a coarse zone heuristic so the pricing
// screens keep working in unconfigured environments.
func (g *CarrierGateway) CheckServiceability(ctx context.Context, originPincode, destinationPincode string) (models.ServiceabilityResult, error) {
	if !ValidPincode(originPincode) {
		return models.ServiceabilityResult{}, fmt.Errorf("origin pincode %q must be 6 digits", originPincode)
	}
	if !ValidPincode(destinationPincode) {
		return models.ServiceabilityResult{}, fmt.Errorf("destination pincode %q must be 6 digits", destinationPincode)
	}

	if !g.canAttemptCarrier() {
		return estimateServiceability(originPincode, destinationPincode), nil
	}

	path := serviceabilityPath + "?" + url.Values{
		"origin":      {originPincode},
		"destination": {destinationPincode},
	}.Encode()
	resp, err := g.transport.Send(ctx, http.MethodGet, path, nil, g.authHeaders())
	if err != nil {
		// Carrier unreachable: degrade to the heuristic rather than failing
		// a read-only question.
		return estimateServiceability(originPincode, destinationPincode), nil
	}
	var body serviceabilityResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || resp.StatusCode != http.StatusOK || !body.Success {
		return estimateServiceability(originPincode, destinationPincode), nil
	}
	return models.ServiceabilityResult{
		Serviceable:   body.Serviceable,
		EstimatedDays: body.EstimatedDays,
	}, nil
}

// estimateServiceability is the offline heuristic: every valid pincode pair
// is serviceable, estimated days grow with postal-zone distance (the first
// pincode digit is the zone).
func estimateServiceability(origin, destination string) models.ServiceabilityResult {
	if origin == destination {
		return models.ServiceabilityResult{Serviceable: true, EstimatedDays: 1}
	}
	diff := int(origin[0]) - int(destination[0])
	if diff < 0 {
		diff = -diff
	}
	return models.ServiceabilityResult{Serviceable: true, EstimatedDays: 2 + diff}
}

// labelResponse is the carrier's label response body.
type labelResponse struct {
	Success  bool   `json:"success"`
	LabelURL string `json:"label_url"`
	Message  string `json:"message"`
}

// GetLabel returns a printable label reference for an AWB. Fallback AWBs get
// a deterministic internal label route, real ones are fetched from the
// carrier.
func (g *CarrierGateway) GetLabel(ctx context.Context, awb string) (string, error) {
	if awb == "" {
		return "", fmt.Errorf("awb number is required")
	}
	if IsFallbackAWB(awb) {
		return "/labels/fallback/" + awb + ".pdf", nil
	}
	if !g.canAttemptCarrier() {
		return "", fmt.Errorf("carrier label fetch is not configured")
	}

	path := labelPath + "?" + url.Values{"ref": {awb}}.Encode()
	resp, err := g.transport.Send(ctx, http.MethodGet, path, nil, g.authHeaders())
	if err != nil {
		return "", fmt.Errorf("failed to fetch label: %v", err)
	}
	var body labelResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("malformed label response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success || body.LabelURL == "" {
		return "", fmt.Errorf("carrier label error: status %d: %s", resp.StatusCode, body.Message)
	}
	return body.LabelURL, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
