// Package registry defines the canonical field schema for fused records and
// the per-provider bindings that map raw payloads onto it.
package registry

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/bobmcallan/verdict/internal/models"
)

// Section identifies which part of a StandardizedRecord a field belongs to.
type Section string

const (
	SectionIncome   Section = "income"
	SectionBalance  Section = "balance"
	SectionCashFlow Section = "cashflow"
	SectionProfile  Section = "profile"
	SectionForecast Section = "forecast"
)

// FieldDef binds one canonical field to its provider-specific locations.
// Paths are JSONPath expressions probed in order against a provider's raw
// map; the first that yields a usable value wins.
type FieldDef struct {
	Canonical string
	Section   Section
	Paths     map[models.Source][]string

	// Priority ranks sources for this field. Empty means tier order.
	Priority []models.Source

	// OverrideAllowed lets a higher-priority source replace an occupied
	// slot. Fields without it are first-write-wins.
	OverrideAllowed bool

	// Monetary fields are scaled during currency normalization.
	Monetary bool
	// PerShare fields are monetary but recomputed rather than scaled when
	// share counts change.
	PerShare bool
	// Text fields carry strings (sector, currency codes) instead of values.
	Text bool
}

// Rank returns the priority position of a source for this field, lower is
// better. Unknown sources rank after all listed ones.
func (d *FieldDef) Rank(src models.Source) int {
	order := d.Priority
	if len(order) == 0 {
		order = models.TierOrder
	}
	for i, s := range order {
		if s == src {
			return i
		}
	}
	return len(order)
}

// Resolve probes the provider's raw map for this field and returns the value
// as a float64. The second return is false when no path yields a parseable
// number.
func (d *FieldDef) Resolve(src models.Source, raw map[string]any) (float64, bool) {
	paths, ok := d.Paths[src]
	if !ok || raw == nil {
		return 0, false
	}
	for _, path := range paths {
		v, err := probe(path, raw)
		if err != nil || v == nil {
			continue
		}
		if f, ok := coerceFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// ResolveText probes the provider's raw map for a text field.
func (d *FieldDef) ResolveText(src models.Source, raw map[string]any) (string, bool) {
	paths, ok := d.Paths[src]
	if !ok || raw == nil {
		return "", false
	}
	for _, path := range paths {
		v, err := probe(path, raw)
		if err != nil || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" && !isNullToken(s) {
				return s, true
			}
		}
	}
	return "", false
}

func probe(path string, raw map[string]any) (any, error) {
	if !strings.HasPrefix(path, "$") {
		// bare key shortcut, the common case
		v, ok := raw[path]
		if !ok {
			return nil, nil
		}
		return v, nil
	}
	return jsonpath.Get(path, any(raw))
}

// coerceFloat accepts the numeric shapes providers actually emit: JSON
// numbers, quoted numbers, and json.Number from decoders with UseNumber.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" || isNullToken(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "none", "null", "nan", "n/a", "-":
		return true
	}
	return false
}

// Registry is the full canonical schema.
type Registry struct {
	defs   []*FieldDef
	byName map[string]*FieldDef
}

// New builds a registry from field definitions. Duplicate canonical names
// keep the last definition.
func New(defs []*FieldDef) *Registry {
	r := &Registry{defs: defs, byName: make(map[string]*FieldDef, len(defs))}
	for _, d := range defs {
		r.byName[d.Canonical] = d
	}
	return r
}

// Lookup returns the definition for a canonical field name.
func (r *Registry) Lookup(name string) (*FieldDef, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Section returns all definitions belonging to a section, in declaration
// order.
func (r *Registry) Section(s Section) []*FieldDef {
	var out []*FieldDef
	for _, d := range r.defs {
		if d.Section == s {
			out = append(out, d)
		}
	}
	return out
}

// Fields returns every definition in declaration order.
func (r *Registry) Fields() []*FieldDef {
	return r.defs
}
