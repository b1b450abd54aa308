package service

import (
	"github.com/google/uuid"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// DefaultWarehouseAddress is used as the shipping side of a consignment
// whenever the caller does not supply a sender.
var DefaultWarehouseAddress = models.Address{
	Name:    "SpareFlow Central Warehouse",
	Phone:   "9822004500",
	Street:  "Plot 14, MIDC Industrial Estate",
	Area:    "Andheri East",
	City:    "Mumbai",
	State:   "Maharashtra",
	Pincode: "400093",
	Country: "India",
}

// OperationsReturnAddress is where the carrier redirects undeliverable
// packages. Always populated, independent of shipment direction.
var OperationsReturnAddress = models.Address{
	Name:    "SpareFlow Operations Desk",
	Phone:   "9822004501",
	Street:  "Plot 14, MIDC Industrial Estate",
	Area:    "Andheri East",
	City:    "Mumbai",
	State:   "Maharashtra",
	Pincode: "400093",
	Country: "India",
}

// BuildConsignment maps an internal ShipmentRequest onto the carrier-shaped
// payload, assigning the origin/destination/return address roles.
//
// The tricky case is a reverse-only carrier account: that account can only
// book reverse consignments, so a FORWARD shipment has to be emulated by
// sending consignment_type=reverse with the sender in the carrier's "reverse
// pickup origin" slot and the recipient in its "reverse destination" slot.
// Parts still physically flow sender -> recipient, the carrier just sees it
// as its reverse product. This is a workaround for that specific account
// limitation, not a general carrier rule.
func BuildConsignment(req models.ShipmentRequest, profile models.CarrierAccountProfile) models.ConsignmentPayload {
	sender := DefaultWarehouseAddress
	if req.Sender != nil {
		sender = *req.Sender
	}

	var consignmentType string
	var origin, destination models.Address

	if profile.IsReverseOnlyAccount {
		// The account always books reverse, whatever the caller intended.
		consignmentType = "reverse"
		if req.Direction == models.DirectionForward {
			// Emulated forward: pickup at the sender, deliver to the recipient.
			origin = sender
			destination = req.Recipient
		} else {
			// Genuine reverse: pickup at the recipient, return to the sender.
			origin = req.Recipient
			destination = sender
		}
	} else if req.Direction == models.DirectionReverse {
		consignmentType = "reverse"
		origin = req.Recipient
		destination = sender
	} else {
		consignmentType = "forward"
		origin = sender
		destination = req.Recipient
	}

	ref := req.ShipmentID
	if ref == "" {
		ref = uuid.NewString()
	}

	return models.ConsignmentPayload{
		ConsignmentType:         consignmentType,
		CustomerCode:            profile.CustomerCode,
		ServiceType:             profile.ServiceType,
		CommodityID:             profile.CommodityID,
		Origin:                  origin,
		Destination:             destination,
		ReturnTo:                OperationsReturnAddress,
		WeightKg:                req.WeightKg,
		DeclaredValue:           req.DeclaredValue,
		Pieces:                  req.PieceCount,
		CustomerReferenceNumber: ref,
	}
}
