package classify

import (
	"regexp"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// kindPattern ties a tracking kind to the identifier shape that selects it.
// Patterns are tried in slice order; the first match wins.
type kindPattern struct {
	kind domain.TrackingKind
	re   *regexp.Regexp
}

// kindPatterns is ordered most-specific first. PARCEL is the alphanumeric
// catch-all and must stay last.
var kindPatterns = []kindPattern{
	{domain.KindContainer, regexp.MustCompile(`^[A-Za-z]{4}\d{7}$`)},
	{domain.KindBillOfLading, regexp.MustCompile(`^[A-Za-z]{4}\d{8,12}$`)},
	{domain.KindAirWaybill, regexp.MustCompile(`^\d{3}-\d{8}$`)},
	{domain.KindExpress, regexp.MustCompile(`^1Z[0-9A-Za-z]{16}$`)},           // UPS
	{domain.KindExpress, regexp.MustCompile(`^[A-Za-z]{2}\d{9}[A-Za-z]{2}$`)}, // UPU registered mail
	{domain.KindExpress, regexp.MustCompile(`^\d{12}$`)},                      // FedEx
	{domain.KindExpress, regexp.MustCompile(`^\d{10}$`)},                      // DHL Express
	{domain.KindParcel, regexp.MustCompile(`^[A-Za-z0-9]{10,30}$`)},
}

// carrierPrefix maps an identifier prefix to a carrier code. The table is
// ordered and matched case-insensitively; the first match wins.
type carrierPrefix struct {
	prefix  string
	carrier string
}

var carrierPrefixes = []carrierPrefix{
	// Ocean container owner codes.
	{"MSCU", "MSC"},
	{"MSDU", "MSC"},
	{"MEDU", "MSC"},
	{"MAEU", "MAERSK"},
	{"MSKU", "MAERSK"},
	{"MRKU", "MAERSK"},
	{"CMAU", "CMA-CGM"},
	{"CGMU", "CMA-CGM"},
	{"COSU", "COSCO"},
	{"CSNU", "COSCO"},
	{"HLCU", "HAPAG-LLOYD"},
	{"HLXU", "HAPAG-LLOYD"},
	{"EGLV", "EVERGREEN"},
	{"EGHU", "EVERGREEN"},
	{"OOLU", "OOCL"},
	{"OOCU", "OOCL"},
	{"ONEY", "ONE"},
	{"ZIMU", "ZIM"},
	{"YMLU", "YANG-MING"},
	{"HDMU", "HMM"},
	// Airline AWB prefixes (three-digit IATA codes).
	{"176-", "EK"},
	{"020-", "LH"},
	{"618-", "SQ"},
	{"160-", "CX"},
	{"057-", "AF"},
	{"235-", "TK"},
	{"006-", "DL"},
	{"001-", "AA"},
	// Express couriers.
	{"1Z", "UPS"},
	{"JD", "DHL-ECOM"},
	{"TBA", "AMZL"},
}

// v1StatusTable maps the V1 (ocean container) provider vocabulary onto
// canonical statuses. Lookup is exact-match first, then case-insensitive.
var v1StatusTable = map[string]domain.CanonicalStatus{
	"Booking Confirmed": domain.StatusRegistered,
	"Empty to Shipper":  domain.StatusRegistered,
	"Gate In":           domain.StatusInTransit,
	"Loaded on Vessel":  domain.StatusInTransit,
	"Vessel Departure":  domain.StatusInTransit,
	"Transshipment":     domain.StatusInTransit,
	"Vessel Arrival":    domain.StatusArrived,
	"Discharged":        domain.StatusArrived,
	"Gate Out":          domain.StatusDelivered,
	"Empty Returned":    domain.StatusDelivered,
	"On Rail":           domain.StatusInTransit,
	"Customs Released":  domain.StatusCustomsCleared,
	"Customs Hold":      domain.StatusCustomsHold,
	"Rolled":            domain.StatusDelayed,
	"Vessel Delay":      domain.StatusDelayed,
	"Shipment Damaged":  domain.StatusException,
	"Shipment Lost":     domain.StatusException,
}

// v2StatusTable maps the V2 (air waybill) vocabulary, a mix of IATA CIMP
// milestone codes and spelled-out statuses, onto canonical statuses.
var v2StatusTable = map[string]domain.CanonicalStatus{
	"BKD":              domain.StatusRegistered,
	"RCS":              domain.StatusRegistered,
	"Booked":           domain.StatusRegistered,
	"MAN":              domain.StatusInTransit,
	"DEP":              domain.StatusInTransit,
	"Departed":         domain.StatusInTransit,
	"TFD":              domain.StatusInTransit,
	"ARR":              domain.StatusArrived,
	"RCF":              domain.StatusArrived,
	"Arrived":          domain.StatusArrived,
	"AWD":              domain.StatusArrived,
	"DLV":              domain.StatusDelivered,
	"Delivered":        domain.StatusDelivered,
	"OFD":              domain.StatusOutForDelivery,
	"Out for Delivery": domain.StatusOutForDelivery,
	"CCD":              domain.StatusCustomsCleared,
	"Customs Cleared":  domain.StatusCustomsCleared,
	"CUS":              domain.StatusCustomsHold,
	"Customs Hold":     domain.StatusCustomsHold,
	"DLA":              domain.StatusDelayed,
	"Flight Delayed":   domain.StatusDelayed,
	"NFD":              domain.StatusException,
	"DIS":              domain.StatusException,
	"Discrepancy":      domain.StatusException,
}

func statusTable(version domain.ProviderVersion) map[string]domain.CanonicalStatus {
	if version == domain.VersionV2 {
		return v2StatusTable
	}
	return v1StatusTable
}
