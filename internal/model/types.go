package model

import "time"

// Source names used as keys in Envelope.Data and Envelope.Meta.Status.
const (
	SourceHHS   = "hhs"
	SourceMaine = "maine"
	SourceTexas = "texas"
)

// SourceNames lists all sources in aggregation order.
var SourceNames = []string{SourceHHS, SourceMaine, SourceTexas}

// Record is one normalized breach-disclosure entry: field name to value.
// Values are strings, or nil when a source row is shorter than its header
// set (nil serializes as JSON null). Field names are source-defined; the
// per-source contract is:
//   - hhs: field set = the table headers of that fetch, uniform per fetch
//   - maine: varies per detail page, plus a guaranteed "URL" field
//   - texas: field set = table headers plus a constant "URL" field
type Record map[string]any

// Meta describes one aggregation run: when it completed and which sources
// contributed data.
type Meta struct {
	Timestamp time.Time       `json:"timestamp"`
	Status    map[string]bool `json:"status"`
}

// Envelope is the unified aggregation result returned to API callers and
// stored in the cache. Data slices are always non-nil so an empty source
// serializes as [] rather than null.
type Envelope struct {
	Meta Meta                `json:"meta"`
	Data map[string][]Record `json:"data"`
}

// NewEnvelope returns an envelope with every source marked failed and an
// empty data slot, ready for the orchestrator to fill in.
func NewEnvelope() Envelope {
	env := Envelope{
		Meta: Meta{Status: make(map[string]bool, len(SourceNames))},
		Data: make(map[string][]Record, len(SourceNames)),
	}
	for _, name := range SourceNames {
		env.Meta.Status[name] = false
		env.Data[name] = []Record{}
	}
	return env
}
