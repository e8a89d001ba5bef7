package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/core/classify"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// payloadKind is the discriminator for the two webhook schemas the provider
// pushes. Identified once, up front, instead of probing fields throughout the
// mapping code.
type payloadKind int

const (
	payloadUnknown payloadKind = iota
	payloadContainer
	payloadAirWaybill
)

// containerPayload is the ocean-container webhook schema (provider V1).
type containerPayload struct {
	ContainerNumber string          `json:"ContainerNumber"`
	Status          string          `json:"Status"`
	ShippingLine    string          `json:"ShippingLine"`
	ReferenceNo     string          `json:"ReferenceNo"`
	Pol             string          `json:"Pol"`
	PolName         string          `json:"PolName"`
	Pod             string          `json:"Pod"`
	PodName         string          `json:"PodName"`
	Etd             string          `json:"Etd"`
	Eta             string          `json:"Eta"`
	Vessel          string          `json:"Vessel"`
	Voyage          string          `json:"Voyage"`
	VesselIMO       string          `json:"VesselIMO"`
	LastLocation    string          `json:"LastLocation"`
	LastDate        string          `json:"LastDate"`
	ContainerSize   string          `json:"ContainerSize"`
	ContainerType   string          `json:"ContainerType"`
	BookingNumber   string          `json:"BookingNumber"`
	BlNumber        string          `json:"BlNumber"`
	Co2Emission     json.Number     `json:"Co2Emission"`
	TransitTime     string          `json:"FormatedTransitTime"`
	Events          []providerEvent `json:"Events"`
}

// awbPayload is the air-waybill webhook schema (provider V2).
type awbPayload struct {
	AwbNumber          string          `json:"AwbNumber"`
	Status             string          `json:"Status"`
	Airline            string          `json:"Airline"`
	Origin             string          `json:"Origin"`
	OriginName         string          `json:"OriginName"`
	Destination        string          `json:"Destination"`
	DestinationName    string          `json:"DestinationName"`
	FlightNumber       string          `json:"FlightNumber"`
	FlightDate         string          `json:"FlightDate"`
	Pieces             json.Number     `json:"Pieces"`
	Weight             json.Number     `json:"Weight"`
	WeightUnit         string          `json:"WeightUnit"`
	LastLocation       string          `json:"LastLocation"`
	LastDate           string          `json:"LastDate"`
	LastEventCode      string          `json:"LastEventCode"`
	TransshipmentCount json.Number     `json:"TransshipmentCount"`
	TransitTime        string          `json:"TransitTime"`
	ServiceType        string          `json:"ServiceType"`
	Commodity          string          `json:"Commodity"`
	Events             []providerEvent `json:"Events"`
}

// providerEvent is one raw history entry; both schemas share the shape.
type providerEvent struct {
	Date        string `json:"Date"`
	Location    string `json:"Location"`
	Status      string `json:"Status"`
	Description string `json:"Description"`
	Vessel      string `json:"Vessel"`
	Voyage      string `json:"Voyage"`
	Flight      string `json:"Flight"`
}

// NormalizerService maps heterogeneous provider webhook payloads onto the
// canonical tracking-event schema. Stateless and idempotent: the same payload
// normalizes to the same record, except for the reception timestamp.
type NormalizerService struct {
	now func() time.Time
	log zerolog.Logger
}

// NewNormalizerService builds a normalizer. now == nil selects time.Now.
func NewNormalizerService(now func() time.Time, log zerolog.Logger) *NormalizerService {
	if now == nil {
		now = time.Now
	}
	return &NormalizerService{now: now, log: log}
}

// Ingest validates and normalizes one raw webhook payload. A payload carrying
// neither a container number nor an AWB number is rejected without emitting a
// partial record. The normalizer performs no writes.
func (n *NormalizerService) Ingest(_ context.Context, rawPayload []byte) (*domain.CanonicalTrackingEvent, error) {
	var probe struct {
		ContainerNumber string `json:"ContainerNumber"`
		AwbNumber       string `json:"AwbNumber"`
	}
	if err := json.Unmarshal(rawPayload, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	kind := payloadUnknown
	switch {
	case probe.ContainerNumber != "":
		kind = payloadContainer
	case probe.AwbNumber != "":
		kind = payloadAirWaybill
	default:
		return nil, domain.ErrMissingTrackingNumber
	}

	var raw map[string]any
	if err := json.Unmarshal(rawPayload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	var (
		event *domain.CanonicalTrackingEvent
		err   error
	)
	switch kind {
	case payloadContainer:
		event, err = n.normalizeContainer(rawPayload)
	case payloadAirWaybill:
		event, err = n.normalizeAirWaybill(rawPayload)
	}
	if err != nil {
		return nil, err
	}

	// Provenance: the unmodified payload rides along for audit, the record ID
	// is derived from the payload bytes so re-ingestion is stable, and the
	// reception time is stamped last.
	event.ID = uuid.NewSHA1(uuid.NameSpaceOID, rawPayload).String()
	event.RawPayload = raw
	event.ReceivedAt = n.now().UTC()

	n.log.Info().
		Str("tracking_number", event.TrackingNumber).
		Str("kind", string(event.TrackingKind)).
		Str("status", string(event.CanonicalStatus)).
		Msg("webhook normalized")

	return event, nil
}

func (n *NormalizerService) normalizeContainer(rawPayload []byte) (*domain.CanonicalTrackingEvent, error) {
	var p containerPayload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	carrier := p.ShippingLine
	if carrier == "" {
		carrier = classify.Carrier(p.ContainerNumber)
	}

	lastDate := parseProviderDate(p.LastDate)
	event := &domain.CanonicalTrackingEvent{
		TrackingNumber:  p.ContainerNumber,
		TrackingKind:    domain.KindContainer,
		CarrierCode:     carrier,
		RawStatus:       p.Status,
		CanonicalStatus: classify.MapStatus(domain.VersionV1, p.Status),
		Route: domain.Route{
			OriginPort:      p.Pol,
			OriginName:      p.PolName,
			DestinationPort: p.Pod,
			DestinationName: p.PodName,
		},
		Schedule: domain.Schedule{
			ETD:           parseProviderDate(p.Etd),
			ETA:           parseProviderDate(p.Eta),
			LastEventDate: lastDate,
		},
		Transport: domain.Transport{
			VesselName: p.Vessel,
			Voyage:     p.Voyage,
			VesselIMO:  p.VesselIMO,
		},
		LastLocation: p.LastLocation,
		Events:       mapEvents(p.Events),
		Metadata:     containerMetadata(p),
	}
	return event, nil
}

func (n *NormalizerService) normalizeAirWaybill(rawPayload []byte) (*domain.CanonicalTrackingEvent, error) {
	var p awbPayload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	carrier := p.Airline
	if carrier == "" {
		carrier = classify.Carrier(p.AwbNumber)
	}

	event := &domain.CanonicalTrackingEvent{
		TrackingNumber:  p.AwbNumber,
		TrackingKind:    domain.KindAirWaybill,
		CarrierCode:     carrier,
		RawStatus:       p.Status,
		CanonicalStatus: classify.MapStatus(domain.VersionV2, p.Status),
		Route: domain.Route{
			OriginPort:      p.Origin,
			OriginName:      p.OriginName,
			DestinationPort: p.Destination,
			DestinationName: p.DestinationName,
		},
		Schedule: domain.Schedule{
			LastEventDate: parseProviderDate(p.LastDate),
		},
		Transport: domain.Transport{
			FlightNumber: p.FlightNumber,
			FlightDate:   p.FlightDate,
		},
		LastLocation: p.LastLocation,
		Events:       mapEvents(p.Events),
		Metadata:     awbMetadata(p),
	}
	return event, nil
}

// mapEvents preserves provider ordering; chronology is the provider's call,
// never re-sorted here.
func mapEvents(raw []providerEvent) []domain.SubEvent {
	if len(raw) == 0 {
		return nil
	}
	events := make([]domain.SubEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, domain.SubEvent{
			Date:        parseProviderDate(e.Date),
			Location:    e.Location,
			Status:      e.Status,
			Description: e.Description,
			Vessel:      e.Vessel,
			Voyage:      e.Voyage,
			Flight:      e.Flight,
		})
	}
	return events
}

func containerMetadata(p containerPayload) map[string]any {
	meta := map[string]any{}
	putString(meta, "container_size", p.ContainerSize)
	putString(meta, "container_type", p.ContainerType)
	putString(meta, "booking_number", p.BookingNumber)
	putString(meta, "bl_number", p.BlNumber)
	putString(meta, "transit_time", p.TransitTime)
	if p.Co2Emission != "" {
		meta["co2_emission"] = p.Co2Emission.String()
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func awbMetadata(p awbPayload) map[string]any {
	meta := map[string]any{}
	putString(meta, "service_type", p.ServiceType)
	putString(meta, "commodity", p.Commodity)
	putString(meta, "transit_time", p.TransitTime)
	putString(meta, "weight_unit", p.WeightUnit)
	putString(meta, "last_event_code", p.LastEventCode)
	if p.Pieces != "" {
		meta["pieces"] = p.Pieces.String()
	}
	if p.Weight != "" {
		meta["weight"] = p.Weight.String()
	}
	if p.TransshipmentCount != "" {
		meta["transshipment_count"] = p.TransshipmentCount.String()
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func putString(meta map[string]any, key, value string) {
	if value != "" {
		meta[key] = value
	}
}

// providerDateLayouts covers the formats seen across both provider versions.
var providerDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

func parseProviderDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range providerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
