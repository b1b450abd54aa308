package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// NormalizePhone strips everything but digits from a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPincode reports whether a pincode matches the carrier's required
// format, 6 ASCII digits.
func ValidPincode(pincode string) bool {
	return pincodePattern.MatchString(pincode)
}

func validateAddress(label string, addr models.Address) error {
	if strings.TrimSpace(addr.Name) == "" {
		return fmt.Errorf("%s name is required", label)
	}
	if !ValidPincode(addr.Pincode) {
		return fmt.Errorf("%s pincode %q must be 6 digits", label, addr.Pincode)
	}
	if len(NormalizePhone(addr.Phone)) < 10 {
		return fmt.Errorf("%s phone %q must have at least 10 digits", label, addr.Phone)
	}
	return nil
}

// ValidateShipmentRequest rejects malformed requests before any network call.
// A request that fails here is a caller bug, not a carrier outage, so it is
// never retried and never sent to the fallback generator.
func ValidateShipmentRequest(req models.ShipmentRequest) error {
	if req.Direction != models.DirectionForward && req.Direction != models.DirectionReverse {
		return fmt.Errorf("direction must be %s or %s", models.DirectionForward, models.DirectionReverse)
	}
	if err := validateAddress("recipient", req.Recipient); err != nil {
		return err
	}
	if req.Direction == models.DirectionReverse && req.Sender == nil {
		return errors.New("reverse shipments require a sender address")
	}
	if req.Sender != nil {
		if err := validateAddress("sender", *req.Sender); err != nil {
			return err
		}
	}
	if req.WeightKg <= 0 {
		return fmt.Errorf("weight must be positive, got %v", req.WeightKg)
	}
	if req.DeclaredValue <= 0 {
		return fmt.Errorf("declared value must be positive, got %v", req.DeclaredValue)
	}
	if req.PieceCount <= 0 {
		return fmt.Errorf("piece count must be positive, got %d", req.PieceCount)
	}
	return nil
}
