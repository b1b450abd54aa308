package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// fakeTransport scripts one reply per call and counts every call.
type fakeTransport struct {
	mu      sync.Mutex
	calls   int
	paths   []string
	replies []transportReply // consumed in order; last reply repeats
}

type transportReply struct {
	resp *CarrierResponse
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*CarrierResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.paths = append(f.paths, path)
	if len(f.replies) == 0 {
		return &CarrierResponse{StatusCode: http.StatusOK, Body: []byte(`{"success":true,"awb_number":"D9000001"}`)}, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply.resp, reply.err
}

// captureAudit records every entry handed to the audit logger.
type captureAudit struct {
	mu      sync.Mutex
	entries []models.AttemptLogEntry
}

func (c *captureAudit) Record(ctx context.Context, entry models.AttemptLogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func reply(status int, body string) transportReply {
	return transportReply{resp: &CarrierResponse{StatusCode: status, Body: []byte(body)}}
}

func newTestGateway(profile models.CarrierAccountProfile, transport Transport, audit AuditLogger) *CarrierGateway {
	g := NewCarrierGateway(profile, transport, NewFallbackGenerator(), audit)
	// No real sleeping in tests.
	return g.WithClock(time.Now, func(time.Duration) {})
}

func TestCreateShipmentSuccessFirstAttempt(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		reply(http.StatusOK, `{"success":true,"awb_number":"D7001234","tracking_url":"https://carrier.test/track/D7001234"}`),
	}}
	audit := &captureAudit{}
	g := newTestGateway(normalProfile(), ft, audit)

	result := g.CreateShipment(context.Background(), validRequest())

	if !result.Success || result.FallbackUsed {
		t.Fatalf("expected real carrier success, got %+v", result)
	}
	if result.AWBNumber != "D7001234" {
		t.Errorf("expected carrier awb, got %q", result.AWBNumber)
	}
	if result.Attempts != 1 || ft.calls != 1 {
		t.Errorf("expected exactly one attempt, got attempts=%d calls=%d", result.Attempts, ft.calls)
	}
	if len(audit.entries) != 1 || audit.entries[0].IsFallback {
		t.Errorf("expected one non-fallback audit entry, got %+v", audit.entries)
	}
}

func TestCreateShipmentValidationFailureMakesNoNetworkCalls(t *testing.T) {
	ft := &fakeTransport{}
	g := newTestGateway(normalProfile(), ft, &captureAudit{})

	req := validRequest()
	req.Recipient.Pincode = "12AB"
	result := g.CreateShipment(context.Background(), req)

	if result.Success {
		t.Fatal("invalid request must not succeed")
	}
	if result.FallbackUsed {
		t.Error("a caller bug must not be masked by fallback")
	}
	if result.Attempts != 0 || ft.calls != 0 {
		t.Errorf("expected zero attempts and zero network calls, got attempts=%d calls=%d", result.Attempts, ft.calls)
	}
	if result.Error == "" {
		t.Error("expected a validation error message")
	}
}

func TestCreateShipmentMissingCredentialsGoesStraightToFallback(t *testing.T) {
	ft := &fakeTransport{}
	audit := &captureAudit{}
	g := newTestGateway(models.CarrierAccountProfile{}, ft, audit) // fully unconfigured

	result := g.CreateShipment(context.Background(), validRequest())

	if !result.Success || !result.FallbackUsed {
		t.Fatalf("unconfigured gateway must still book via fallback, got %+v", result)
	}
	if result.Attempts != 0 || ft.calls != 0 {
		t.Errorf("missing credentials must never touch the network, attempts=%d calls=%d", result.Attempts, ft.calls)
	}
	if !strings.HasPrefix(result.AWBNumber, "MFWD") {
		t.Errorf("expected fallback awb prefix, got %q", result.AWBNumber)
	}
	if len(audit.entries) != 1 || !audit.entries[0].IsFallback || audit.entries[0].Error != "missing credentials" {
		t.Errorf("expected a fallback audit entry with the reason, got %+v", audit.entries)
	}
}

func TestCreateShipmentAuthFailureNeverRetries(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		reply(http.StatusUnauthorized, `{"success":false,"message":"bad api key"}`),
	}}
	g := newTestGateway(normalProfile(), ft, &captureAudit{})

	result := g.CreateShipment(context.Background(), validRequest())

	if ft.calls != 1 {
		t.Fatalf("401 must abort the retry loop, got %d calls", ft.calls)
	}
	if !result.Success || !result.FallbackUsed || result.Attempts != 1 {
		t.Errorf("expected fallback after exactly one attempt, got %+v", result)
	}
}

func TestCreateShipmentRetriesThenFallsBack(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		{err: errors.New("all 2 carrier endpoints failed: ...")},
		reply(http.StatusBadGateway, `upstream down`),
		reply(http.StatusOK, `{"success":false,"message":"pincode not serviceable for COD"}`),
	}}
	audit := &captureAudit{}
	g := newTestGateway(normalProfile(), ft, audit)

	slept := 0
	g.WithClock(nil, func(time.Duration) { slept++ })

	result := g.CreateShipment(context.Background(), validRequest())

	if ft.calls != 3 {
		t.Fatalf("expected the full attempt budget of 3, got %d", ft.calls)
	}
	if slept != 2 {
		t.Errorf("expected a delay between attempts (2 sleeps), got %d", slept)
	}
	if !result.Success || !result.FallbackUsed || result.Attempts != 3 {
		t.Errorf("expected fallback after 3 attempts, got %+v", result)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one terminal audit entry, got %d", len(audit.entries))
	}
	if !strings.Contains(audit.entries[0].Error, "pincode not serviceable") {
		t.Errorf("audit entry should carry the last carrier error, got %q", audit.entries[0].Error)
	}
}

func TestCreateShipmentSucceedsOnSecondAttempt(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		reply(http.StatusInternalServerError, `boom`),
		reply(http.StatusOK, `{"success":true,"awb_number":"D7009999"}`),
	}}
	g := newTestGateway(normalProfile(), ft, &captureAudit{})

	result := g.CreateShipment(context.Background(), validRequest())
	if !result.Success || result.FallbackUsed {
		t.Fatalf("expected recovery on retry, got %+v", result)
	}
	if result.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", result.Attempts)
	}
}

func TestEndToEndUnconfiguredProfile(t *testing.T) {
	// A fully-unconfigured profile still books a forward shipment,
	// immediately via fallback.
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)

	result := g.CreateShipment(context.Background(), models.ShipmentRequest{
		Direction:     models.DirectionForward,
		WeightKg:      1.2,
		DeclaredValue: 1500,
		PieceCount:    1,
		Recipient: models.Address{
			Name:    "Test SC",
			Phone:   "9876543210",
			Street:  "9 MG Road",
			City:    "Mumbai",
			State:   "Maharashtra",
			Pincode: "400001",
			Country: "India",
		},
	})

	if !result.Success || !result.FallbackUsed {
		t.Fatalf("expected fallback success, got %+v", result)
	}
	if !fallbackAWBPattern.MatchString(result.AWBNumber) {
		t.Errorf("awb %q does not match the fallback pattern", result.AWBNumber)
	}
	if result.Attempts != 0 {
		t.Errorf("expected zero attempts, got %d", result.Attempts)
	}
}

func TestTrackShipmentNormalizesCarrierEvents(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		reply(http.StatusOK, `{"success":true,"events":[
			{"scan_code":"BKD","location":"Mumbai","scan_datetime":"2026-03-14T08:00:00Z","remarks":"Booked"},
			{"scan_code":"OFD","location":"Delhi","scan_datetime":"2026-03-15T09:00:00Z","remarks":"Out for delivery"}
		]}`),
	}}
	g := newTestGateway(normalProfile(), ft, &captureAudit{})

	snap, err := g.TrackShipment(context.Background(), "D7001234")
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if snap.CurrentStatus != models.StatusOutForDelivery {
		t.Errorf("expected OUT_FOR_DELIVERY, got %q", snap.CurrentStatus)
	}
	if len(snap.History) != 2 {
		t.Errorf("expected 2 events, got %d", len(snap.History))
	}
	if ft.paths[0] != trackingDetailsPath {
		t.Errorf("expected tracking path, got %q", ft.paths[0])
	}
}

func TestTrackShipmentFallbackAWBNeedsNoCarrier(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	awb := g.fallback.Generate(validRequest(), "x").AWBNumber

	snap, err := g.TrackShipment(context.Background(), awb)
	if err != nil {
		t.Fatalf("fallback tracking must work with no carrier at all: %v", err)
	}
	if snap.AWBNumber != awb || len(snap.History) == 0 {
		t.Errorf("expected a synthetic history, got %+v", snap)
	}
}

func TestTrackShipmentsBatchesAndPauses(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	pauses := 0
	g.WithClock(nil, func(time.Duration) { pauses++ })

	awbs := make([]string, 25)
	for i := range awbs {
		awbs[i] = g.fallback.Generate(validRequest(), "x").AWBNumber
	}

	snapshots := g.TrackShipments(context.Background(), awbs)
	if len(snapshots) != 25 {
		t.Fatalf("expected 25 snapshots, got %d", len(snapshots))
	}
	for i, snap := range snapshots {
		if snap.AWBNumber != awbs[i] {
			t.Errorf("snapshot %d out of order: want %s, got %s", i, awbs[i], snap.AWBNumber)
		}
		if snap.Error != "" {
			t.Errorf("unexpected error for %s: %s", snap.AWBNumber, snap.Error)
		}
	}
	// 25 AWBs = 3 batches of 10/10/5 with a pause after each non-final batch.
	if pauses != 2 {
		t.Errorf("expected 2 inter-batch pauses, got %d", pauses)
	}
}

func TestCancelShipmentsSplitsFallbackAndReal(t *testing.T) {
	ft := &fakeTransport{replies: []transportReply{
		reply(http.StatusOK, `{"success":true,"cancelled":["D7001234"],"failed":["D7005678"]}`),
	}}
	g := newTestGateway(normalProfile(), ft, &captureAudit{})
	mock := g.fallback.Generate(validRequest(), "x").AWBNumber

	result := g.CancelShipments(context.Background(), []string{mock, "D7001234", "D7005678"})

	if len(result.Cancelled) != 2 {
		t.Errorf("expected the fallback and one real awb cancelled, got %v", result.Cancelled)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "D7005678" {
		t.Errorf("expected D7005678 failed, got %v", result.Failed)
	}
	if ft.calls != 1 {
		t.Errorf("expected one carrier cancel call, got %d", ft.calls)
	}
}

func TestCancelShipmentsUnconfiguredFailsRealAWBs(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	mock := g.fallback.Generate(validRequest(), "x").AWBNumber

	result := g.CancelShipments(context.Background(), []string{mock, "D7001234"})
	if len(result.Cancelled) != 1 || result.Cancelled[0] != mock {
		t.Errorf("fallback awb should cancel locally, got %v", result.Cancelled)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "D7001234" {
		t.Errorf("real awb should fail without a carrier, got %v", result.Failed)
	}
}

func TestCheckServiceabilityValidatesPincodes(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	if _, err := g.CheckServiceability(context.Background(), "40001", "110024"); err == nil {
		t.Fatal("expected an error for a 5 digit origin pincode")
	}
}

func TestCheckServiceabilityOfflineHeuristic(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	result, err := g.CheckServiceability(context.Background(), "400001", "400001")
	if err != nil {
		t.Fatalf("serviceability failed: %v", err)
	}
	if !result.Serviceable || result.EstimatedDays != 1 {
		t.Errorf("same-pincode estimate should be 1 day, got %+v", result)
	}
}

func TestGetLabelForFallbackAWB(t *testing.T) {
	g := NewCarrierGateway(models.CarrierAccountProfile{}, nil, nil, nil)
	awb := g.fallback.Generate(validRequest(), "x").AWBNumber

	label, err := g.GetLabel(context.Background(), awb)
	if err != nil {
		t.Fatalf("fallback label failed: %v", err)
	}
	if !strings.Contains(label, awb) {
		t.Errorf("expected a deterministic label reference embedding the awb, got %q", label)
	}
}
