package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/verdict/internal/models"
)

func TestResolve_BareKey(t *testing.T) {
	reg := Default()
	def, ok := reg.Lookup("revenue")
	require.True(t, ok)

	raw := map[string]any{"totalRevenue": 391035000000.0}
	v, found := def.Resolve(models.SourceEODHD, raw)
	require.True(t, found)
	assert.Equal(t, 391035000000.0, v)
}

func TestResolve_StringNumber(t *testing.T) {
	reg := Default()
	def, ok := reg.Lookup("net_income")
	require.True(t, ok)

	// AlphaVantage quotes every number
	raw := map[string]any{"netIncome": "93736000000"}
	v, found := def.Resolve(models.SourceAlphaVantage, raw)
	require.True(t, found)
	assert.Equal(t, 93736000000.0, v)
}

func TestResolve_NullTokensSkipped(t *testing.T) {
	reg := Default()
	def, _ := reg.Lookup("ebitda")

	for _, token := range []string{"None", "null", "N/A", "-", ""} {
		raw := map[string]any{"ebitda": token}
		_, found := def.Resolve(models.SourceAlphaVantage, raw)
		assert.False(t, found, "token %q should not resolve", token)
	}
}

func TestResolve_PathFallback(t *testing.T) {
	reg := Default()
	def, _ := reg.Lookup("cash")

	// EODHD renamed this key at some point; the alias still resolves
	raw := map[string]any{"cashAndEquivalents": 29943000000.0}
	v, found := def.Resolve(models.SourceEODHD, raw)
	require.True(t, found)
	assert.Equal(t, 29943000000.0, v)
}

func TestResolve_NestedJSONPath(t *testing.T) {
	reg := Default()
	def, _ := reg.Lookup("sector")

	raw := map[string]any{
		"General": map[string]any{"Sector": "Technology"},
	}
	s, found := def.ResolveText(models.SourceEODHD, raw)
	require.True(t, found)
	assert.Equal(t, "Technology", s)
}

func TestResolve_UnknownSource(t *testing.T) {
	reg := Default()
	def, _ := reg.Lookup("target_high")

	// only FMP carries target ranges
	_, found := def.Resolve(models.SourceEODHD, map[string]any{"targetHigh": 250.0})
	assert.False(t, found)
}

func TestRank_DefaultTierOrder(t *testing.T) {
	def := &FieldDef{Canonical: "revenue"}

	assert.Equal(t, 0, def.Rank(models.SourceEODHD))
	assert.Equal(t, 1, def.Rank(models.SourceFMP))
	assert.Equal(t, 2, def.Rank(models.SourceAlphaVantage))
	assert.Equal(t, 3, def.Rank(models.SourceDerived))
}

func TestRank_CustomPriority(t *testing.T) {
	reg := Default()
	def, ok := reg.Lookup("stock_based_comp")
	require.True(t, ok)

	assert.True(t, def.Rank(models.SourceFMP) < def.Rank(models.SourceEODHD),
		"FMP should outrank EODHD for stock based comp")
}

func TestSlots_CoverSchema(t *testing.T) {
	reg := Default()

	for _, def := range reg.Section(SectionIncome) {
		_, ok := IncomeSlots[def.Canonical]
		assert.True(t, ok, "no income slot for %s", def.Canonical)
	}
	for _, def := range reg.Section(SectionBalance) {
		_, ok := BalanceSlots[def.Canonical]
		assert.True(t, ok, "no balance slot for %s", def.Canonical)
	}
	for _, def := range reg.Section(SectionCashFlow) {
		_, ok := CashFlowSlots[def.Canonical]
		assert.True(t, ok, "no cashflow slot for %s", def.Canonical)
	}
	for _, def := range reg.Section(SectionProfile) {
		if def.Text {
			_, ok := ProfileTextSlots[def.Canonical]
			assert.True(t, ok, "no profile text slot for %s", def.Canonical)
		} else {
			_, ok := ProfileSlots[def.Canonical]
			assert.True(t, ok, "no profile slot for %s", def.Canonical)
		}
	}
	for _, def := range reg.Section(SectionForecast) {
		_, ok := ForecastSlots[def.Canonical]
		assert.True(t, ok, "no forecast slot for %s", def.Canonical)
	}
}

func TestSlots_WriteThrough(t *testing.T) {
	stmt := &models.IncomeStatement{}
	slot := IncomeSlots["revenue"](stmt)
	*slot = models.NewField(100.0, models.SourceEODHD)

	require.NotNil(t, stmt.Revenue)
	assert.Equal(t, 100.0, stmt.Revenue.Value)
	assert.Equal(t, models.SourceEODHD, stmt.Revenue.Source)
}
