package models

// Direction says which way the parts flow for a shipment.
// FORWARD moves stock from a warehouse to a service center or customer,
// REVERSE brings a defective/returned part back to the warehouse.
type Direction string

const (
	DirectionForward Direction = "FORWARD"
	DirectionReverse Direction = "REVERSE"
)

// Address is a physical pickup or delivery point in the carrier's format.
// Pincode must be the 6 digit postal code the carrier requires; Phone is
// normalized to digits only before validation.
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	Area    string `json:"area"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// ShipmentRequest is what the surrounding application submits to the gateway.
// It is treated as immutable once handed to CreateShipment.
type ShipmentRequest struct {
	ShipmentID    string    `json:"shipment_id,omitempty"` // caller's reference, optional
	Direction     Direction `json:"direction"`             // FORWARD or REVERSE
	Recipient     Address   `json:"recipient"`
	Sender        *Address  `json:"sender,omitempty"` // nil means ship from the default warehouse
	WeightKg      float64   `json:"weight_kg"`
	DeclaredValue float64   `json:"declared_value"`
	PieceCount    int       `json:"piece_count"`
	Priority      string    `json:"priority,omitempty"` // e.g. "standard", "express"
}

// CarrierAccountProfile holds the carrier account settings resolved once at
// process start. It is read-only after resolution and safe for concurrent use.
type CarrierAccountProfile struct {
	CustomerCode         string
	APIKey               string
	ServiceType          string
	CommodityID          string
	IsReverseOnlyAccount bool // account contractually limited to reverse consignments
	TrackingUsername     string
	TrackingPassword     string
}

// HasValidCredentials reports whether the account can attempt real carrier
// calls at all. Without both values the gateway runs in fallback mode.
func (p CarrierAccountProfile) HasValidCredentials() bool {
	return p.CustomerCode != "" && p.APIKey != ""
}

// ConsignmentPayload is the carrier-shaped create request. It is derived per
// call by the builder and never persisted.
type ConsignmentPayload struct {
	ConsignmentType         string  `json:"consignment_type"` // "forward" or "reverse"
	CustomerCode            string  `json:"customer_code"`
	ServiceType             string  `json:"service_type"`
	CommodityID             string  `json:"commodity_id"`
	Origin                  Address `json:"origin"`
	Destination             Address `json:"destination"`
	ReturnTo                Address `json:"return_address"` // where undeliverable packages go
	WeightKg                float64 `json:"weight"`
	DeclaredValue           float64 `json:"declared_value"`
	Pieces                  int     `json:"pieces"`
	CustomerReferenceNumber string  `json:"customer_reference_number"`
}

// AWBResult is the terminal outcome of one CreateShipment call. Exactly one
// is produced per ShipmentRequest.
type AWBResult struct {
	Success         bool   `json:"success"`
	AWBNumber       string `json:"awb_number,omitempty"`
	TrackingURL     string `json:"tracking_url,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	FallbackUsed    bool   `json:"fallback_used"`
	Attempts        int    `json:"attempts"`
	ElapsedMs       int64  `json:"elapsed_ms"`
	Error           string `json:"error,omitempty"`
}

// CancelResult partitions a batch cancel into the AWBs the carrier (or the
// gateway, for fallback AWBs) accepted and the ones it did not.
type CancelResult struct {
	Cancelled []string `json:"cancelled"`
	Failed    []string `json:"failed"`
}

// ServiceabilityResult answers "can the carrier move a package between these
// two pincodes, and roughly how long would it take".
type ServiceabilityResult struct {
	Serviceable   bool `json:"serviceable"`
	EstimatedDays int  `json:"estimated_days,omitempty"`
}
