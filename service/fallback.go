package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// Fallback AWB prefixes. They are deliberately unlike any real carrier AWB so
// downstream systems and audits can tell a synthetic number from a real one.
const (
	fallbackForwardPrefix = "MFWD"
	fallbackReversePrefix = "MREV"
)

// FallbackGenerator produces synthetic AWB numbers when the real carrier path
// is unavailable, unconfigured, or exhausted. Numbers have the shape
//
//	{MFWD|MREV}{epochMillis:13}{sequence:06}
//
// The embedded timestamp lets the tracking normalizer later derive a
// synthetic history purely from the AWB string, so "track my shipment" keeps
// working indefinitely without a carrier. The sequence is a single atomic
// counter shared across all shipments, which guarantees two concurrent
// generations never collide within a process lifetime.
type FallbackGenerator struct {
	seq uint64
	now func() time.Time
}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{now: time.Now}
}

// NewFallbackGeneratorWithClock injects a clock for deterministic tests.
func NewFallbackGeneratorWithClock(now func() time.Time) *FallbackGenerator {
	return &FallbackGenerator{now: now}
}

// Generate produces a degraded-but-functional AWBResult for the request.
// Success is true: from the caller's perspective the shipment is booked, the
// carrier side will be reconciled by operations later.
func (g *FallbackGenerator) Generate(req models.ShipmentRequest, reason string) models.AWBResult {
	prefix := fallbackForwardPrefix
	if req.Direction == models.DirectionReverse {
		prefix = fallbackReversePrefix
	}
	seq := atomic.AddUint64(&g.seq, 1)
	awb := fmt.Sprintf("%s%013d%06d", prefix, g.now().UnixMilli(), seq)

	ref := req.ShipmentID
	if ref == "" {
		ref = uuid.NewString()
	}

	return models.AWBResult{
		Success:         true,
		AWBNumber:       awb,
		TrackingURL:     "/api/shipments/track?awb=" + awb,
		ReferenceNumber: ref,
		FallbackUsed:    true,
	}
}

// IsFallbackAWB reports whether an AWB number was generated by the fallback
// path rather than a real carrier.
func IsFallbackAWB(awb string) bool {
	return strings.HasPrefix(awb, fallbackForwardPrefix) || strings.HasPrefix(awb, fallbackReversePrefix)
}

// parseFallbackAWB extracts the embedded creation time from a fallback AWB.
func parseFallbackAWB(awb string) (created time.Time, ok bool) {
	if !IsFallbackAWB(awb) || len(awb) < len(fallbackForwardPrefix)+13 {
		return time.Time{}, false
	}
	millisPart := awb[len(fallbackForwardPrefix) : len(fallbackForwardPrefix)+13]
	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}
