// Package classify is the pure classification engine: it derives the tracking
// kind and carrier from an identifier's shape, and maps provider status
// vocabularies onto the canonical status set. No I/O, fully deterministic.
package classify

import (
	"fmt"
	"strings"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// Classification is the result of classifying one tracking identifier.
type Classification struct {
	Kind domain.TrackingKind
	// Carrier is the inferred carrier code, or "" when no prefix matched.
	// An empty carrier is a valid outcome, not an error.
	Carrier string
}

// Classify derives the tracking kind and carrier for an identifier.
// Kind patterns are tested in fixed priority order; the first match wins.
// An identifier matching no pattern is an error — kind shapes are a closed
// set controlled by this system, so an unknown shape must surface loudly.
func Classify(identifier string) (Classification, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return Classification{Kind: domain.KindUnknown}, fmt.Errorf("classify %q: %w", identifier, domain.ErrUnknownTrackingKind)
	}

	for _, kp := range kindPatterns {
		if kp.re.MatchString(id) {
			return Classification{Kind: kp.kind, Carrier: Carrier(id)}, nil
		}
	}
	return Classification{Kind: domain.KindUnknown}, fmt.Errorf("classify %q: %w", identifier, domain.ErrUnknownTrackingKind)
}

// Carrier scans the identifier's prefix against the ordered carrier table,
// case-insensitively. Returns "" when nothing matches.
func Carrier(identifier string) string {
	upper := strings.ToUpper(strings.TrimSpace(identifier))
	for _, cp := range carrierPrefixes {
		if strings.HasPrefix(upper, cp.prefix) {
			return cp.carrier
		}
	}
	return ""
}

// MapStatus maps a raw provider status string onto the canonical status set
// for the given provider version: exact lookup first, then a case-insensitive
// scan. Unknown statuses map to in_transit — provider vocabularies are an
// open set, and losing an event is worse than under-classifying it.
func MapStatus(version domain.ProviderVersion, raw string) domain.CanonicalStatus {
	table := statusTable(version)

	if status, ok := table[raw]; ok {
		return status
	}
	for k, status := range table {
		if strings.EqualFold(k, raw) {
			return status
		}
	}
	return domain.StatusInTransit
}
