package models

// RawStatement is one fiscal period of provider-shaped statement data.
// The client normalizes the envelope (period label, annual flag) but leaves
// field names exactly as the provider returned them; the field registry maps
// them to canonical slots.
type RawStatement struct {
	Period string         `json:"period"`
	Annual bool           `json:"annual"`
	Fields map[string]any `json:"fields"`
}

// RawPayload is the opaque, provider-shaped result of one tier fetch.
type RawPayload struct {
	Source   Source         `json:"source"`
	Symbol   string         `json:"symbol"`
	Currency string         `json:"currency,omitempty"` // statement currency, when the provider reports one
	Profile  map[string]any `json:"profile,omitempty"`
	Forecast map[string]any `json:"forecast,omitempty"`
	Income   []RawStatement `json:"income,omitempty"`
	Balance  []RawStatement `json:"balance,omitempty"`
	CashFlow []RawStatement `json:"cashflow,omitempty"`
}

// Empty reports whether the payload carries no usable data.
func (p *RawPayload) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.Profile) == 0 && len(p.Forecast) == 0 &&
		len(p.Income) == 0 && len(p.Balance) == 0 && len(p.CashFlow) == 0
}
