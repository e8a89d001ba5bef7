package domain

import "time"

// TrackingKind is the structural category of a tracking identifier.
type TrackingKind string

const (
	KindContainer    TrackingKind = "CONTAINER"
	KindBillOfLading TrackingKind = "BILL_OF_LADING"
	KindAirWaybill   TrackingKind = "AIR_WAYBILL"
	KindParcel       TrackingKind = "PARCEL"
	KindExpress      TrackingKind = "EXPRESS"
	KindUnknown      TrackingKind = "UNKNOWN"
)

// CanonicalStatus is the closed set of internal shipment states every
// provider-specific vocabulary is mapped onto.
type CanonicalStatus string

const (
	StatusRegistered     CanonicalStatus = "registered"
	StatusInTransit      CanonicalStatus = "in_transit"
	StatusArrived        CanonicalStatus = "arrived"
	StatusDelivered      CanonicalStatus = "delivered"
	StatusOutForDelivery CanonicalStatus = "out_for_delivery"
	StatusCustomsCleared CanonicalStatus = "customs_cleared"
	StatusCustomsHold    CanonicalStatus = "customs_hold"
	StatusDelayed        CanonicalStatus = "delayed"
	StatusException      CanonicalStatus = "exception"
)

// Route describes the origin and destination of a shipment. Port fields hold
// UN/LOCODE or IATA codes depending on the tracking kind.
type Route struct {
	OriginPort      string `json:"origin_port,omitempty" bson:"origin_port,omitempty"`
	OriginName      string `json:"origin_name,omitempty" bson:"origin_name,omitempty"`
	DestinationPort string `json:"destination_port,omitempty" bson:"destination_port,omitempty"`
	DestinationName string `json:"destination_name,omitempty" bson:"destination_name,omitempty"`
}

// Schedule holds the planned and observed shipment dates. All fields are
// optional; providers frequently omit them.
type Schedule struct {
	ETD           *time.Time `json:"etd,omitempty" bson:"etd,omitempty"`
	ETA           *time.Time `json:"eta,omitempty" bson:"eta,omitempty"`
	LastEventDate *time.Time `json:"last_event_date,omitempty" bson:"last_event_date,omitempty"`
}

// Transport carries the provider-specific conveyance details: vessel fields
// for ocean shipments, flight fields for air.
type Transport struct {
	VesselName   string `json:"vessel_name,omitempty" bson:"vessel_name,omitempty"`
	Voyage       string `json:"voyage,omitempty" bson:"voyage,omitempty"`
	VesselIMO    string `json:"vessel_imo,omitempty" bson:"vessel_imo,omitempty"`
	FlightNumber string `json:"flight_number,omitempty" bson:"flight_number,omitempty"`
	FlightDate   string `json:"flight_date,omitempty" bson:"flight_date,omitempty"`
}

// SubEvent is a single entry in a shipment's event history, in the order the
// provider delivered it. The normalizer never re-sorts.
type SubEvent struct {
	Date        *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	Location    string     `json:"location,omitempty" bson:"location,omitempty"`
	Status      string     `json:"status,omitempty" bson:"status,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Vessel      string     `json:"vessel,omitempty" bson:"vessel,omitempty"`
	Voyage      string     `json:"voyage,omitempty" bson:"voyage,omitempty"`
	Flight      string     `json:"flight,omitempty" bson:"flight,omitempty"`
}

// CanonicalTrackingEvent is the normalized shipment record produced by the
// webhook normalizer (and by gateway response mapping). Immutable once built;
// persistence is the store's concern.
type CanonicalTrackingEvent struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	TrackingNumber  string          `json:"tracking_number" bson:"tracking_number"`
	TrackingKind    TrackingKind    `json:"tracking_kind" bson:"tracking_kind"`
	CarrierCode     string          `json:"carrier_code,omitempty" bson:"carrier_code,omitempty"`
	RawStatus       string          `json:"raw_status,omitempty" bson:"raw_status,omitempty"`
	CanonicalStatus CanonicalStatus `json:"canonical_status" bson:"canonical_status"`
	Route           Route           `json:"route" bson:"route"`
	Schedule        Schedule        `json:"schedule" bson:"schedule"`
	Transport       Transport       `json:"transport" bson:"transport"`
	LastLocation    string          `json:"last_location,omitempty" bson:"last_location,omitempty"`
	Events          []SubEvent      `json:"events,omitempty" bson:"events,omitempty"`
	// Metadata is the provider-specific extras bag (container size, booking
	// number, piece count, service type, ...). Keys are provider-version scoped.
	Metadata map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	// RawPayload retains the unmodified provider payload for audit.
	RawPayload map[string]any `json:"raw_payload,omitempty" bson:"raw_payload,omitempty"`
	ReceivedAt time.Time      `json:"received_at" bson:"received_at"`
}
