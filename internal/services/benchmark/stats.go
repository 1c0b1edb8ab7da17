package benchmark

import (
	"strings"

	"github.com/bobmcallan/verdict/internal/models"
)

// Catalog resolves industry names to baseline statistics. Lookups try the
// exact name, then a keyword mapping onto a parent sector, then the catalog
// default. Reads are lock-free; the table is immutable after construction.
type Catalog struct {
	stats map[string]*models.IndustryStats
}

// sectorKeywords maps industry-name fragments onto the sector whose baseline
// applies. Checked in order so more specific fragments win.
var sectorKeywords = []struct {
	fragment string
	sector   string
}{
	// GICS-style sector aliases
	{"consumer discretionary", "Consumer Cyclical"},
	{"consumer staples", "Consumer Defensive"},
	{"information technology", "Technology"},
	{"health care", "Healthcare"},
	{"financial", "Financial Services"},
	{"materials", "Basic Materials"},
	{"communication", "Communication Services"},
	{"industrial", "Industrials"},

	{"software", "Technology"},
	{"semiconductor", "Technology"},
	{"internet", "Communication Services"},
	{"media", "Communication Services"},
	{"telecom", "Communication Services"},
	{"bank", "Financial Services"},
	{"insurance", "Financial Services"},
	{"capital markets", "Financial Services"},
	{"asset management", "Financial Services"},
	{"credit", "Financial Services"},
	{"biotech", "Healthcare"},
	{"pharmaceutical", "Healthcare"},
	{"drug", "Healthcare"},
	{"medical", "Healthcare"},
	{"health", "Healthcare"},
	{"oil", "Energy"},
	{"gas", "Energy"},
	{"coal", "Energy"},
	{"solar", "Energy"},
	{"utilit", "Utilities"},
	{"reit", "Real Estate"},
	{"real estate", "Real Estate"},
	{"retail", "Consumer Cyclical"},
	{"auto", "Consumer Cyclical"},
	{"apparel", "Consumer Cyclical"},
	{"restaurant", "Consumer Cyclical"},
	{"travel", "Consumer Cyclical"},
	{"beverage", "Consumer Defensive"},
	{"food", "Consumer Defensive"},
	{"household", "Consumer Defensive"},
	{"tobacco", "Consumer Defensive"},
	{"grocery", "Consumer Defensive"},
	{"aerospace", "Industrials"},
	{"defense", "Industrials"},
	{"machinery", "Industrials"},
	{"construction", "Industrials"},
	{"transport", "Industrials"},
	{"airline", "Industrials"},
	{"chemical", "Basic Materials"},
	{"mining", "Basic Materials"},
	{"metal", "Basic Materials"},
	{"steel", "Basic Materials"},
	{"paper", "Basic Materials"},
}

// NewCatalog builds a catalog from the built-in sector baselines merged with
// any overrides (keyed by sector or industry name, matched case-insensitively).
func NewCatalog(overrides map[string]models.IndustryStats) *Catalog {
	stats := make(map[string]*models.IndustryStats)
	for name, s := range defaultStats() {
		stats[strings.ToLower(name)] = s
	}
	for name, s := range overrides {
		copied := s
		if copied.Sector == "" {
			copied.Sector = name
		}
		stats[strings.ToLower(name)] = &copied
	}
	return &Catalog{stats: stats}
}

// IndustryStats resolves the baseline for an industry or sector name. The
// boolean is false only when even the catalog default is absent.
func (c *Catalog) IndustryStats(industry string) (*models.IndustryStats, bool) {
	key := strings.ToLower(strings.TrimSpace(industry))
	if key != "" {
		if s, ok := c.stats[key]; ok {
			return s, true
		}
		for _, kw := range sectorKeywords {
			if strings.Contains(key, kw.fragment) {
				if s, ok := c.stats[strings.ToLower(kw.sector)]; ok {
					return s, true
				}
			}
		}
	}
	s, ok := c.stats[""]
	return s, ok
}

// defaultStats is the built-in baseline table. Means are percentages for the
// ratio metrics; multiples are trailing industry medians.
func defaultStats() map[string]*models.IndustryStats {
	return map[string]*models.IndustryStats{
		"": {
			Sector: "",
			Means: map[string]float64{
				"roic":             9.0,
				"roe":              12.0,
				"operating_margin": 12.0,
				"net_margin":       8.0,
				"gross_margin":     38.0,
			},
			CV:   0.50,
			Beta: 1.0,
			Multiples: models.ValuationMultiples{
				PECurrent: 18.0, PEForward: 16.0, PB: 2.5, PS: 2.0,
				EVEBITDA: 12.0, DividendYield: 0.020,
			},
		},
		"Technology": {
			Sector: "Technology",
			Means: map[string]float64{
				"roic":             14.0,
				"roe":              18.0,
				"operating_margin": 20.0,
				"net_margin":       15.0,
				"gross_margin":     55.0,
			},
			CV:   0.60,
			Beta: 1.2,
			Multiples: models.ValuationMultiples{
				PECurrent: 28.0, PEForward: 24.0, PB: 6.0, PS: 6.5,
				EVEBITDA: 20.0, DividendYield: 0.008,
			},
		},
		"Healthcare": {
			Sector: "Healthcare",
			Means: map[string]float64{
				"roic":             11.0,
				"roe":              15.0,
				"operating_margin": 16.0,
				"net_margin":       11.0,
				"gross_margin":     60.0,
			},
			CV:   0.55,
			Beta: 0.9,
			Multiples: models.ValuationMultiples{
				PECurrent: 24.0, PEForward: 20.0, PB: 4.0, PS: 4.0,
				EVEBITDA: 15.0, DividendYield: 0.015,
			},
		},
		"Financial Services": {
			Sector: "Financial Services",
			Means: map[string]float64{
				"roic":             7.0,
				"roe":              11.0,
				"operating_margin": 30.0,
				"net_margin":       20.0,
				"gross_margin":     80.0,
			},
			CV:   0.45,
			Beta: 1.1,
			Multiples: models.ValuationMultiples{
				PECurrent: 12.0, PEForward: 11.0, PB: 1.3, PS: 3.0,
				EVEBITDA: 10.0, DividendYield: 0.032,
			},
		},
		"Consumer Defensive": {
			Sector: "Consumer Defensive",
			Means: map[string]float64{
				"roic":             10.0,
				"roe":              16.0,
				"operating_margin": 10.0,
				"net_margin":       6.0,
				"gross_margin":     30.0,
			},
			CV:   0.35,
			Beta: 0.7,
			Multiples: models.ValuationMultiples{
				PECurrent: 20.0, PEForward: 18.0, PB: 3.5, PS: 1.5,
				EVEBITDA: 13.0, DividendYield: 0.027,
			},
		},
		"Consumer Cyclical": {
			Sector: "Consumer Cyclical",
			Means: map[string]float64{
				"roic":             9.5,
				"roe":              14.0,
				"operating_margin": 9.0,
				"net_margin":       6.0,
				"gross_margin":     35.0,
			},
			CV:   0.55,
			Beta: 1.2,
			Multiples: models.ValuationMultiples{
				PECurrent: 19.0, PEForward: 16.0, PB: 3.0, PS: 1.4,
				EVEBITDA: 12.0, DividendYield: 0.015,
			},
		},
		"Industrials": {
			Sector: "Industrials",
			Means: map[string]float64{
				"roic":             10.0,
				"roe":              14.0,
				"operating_margin": 11.0,
				"net_margin":       7.0,
				"gross_margin":     28.0,
			},
			CV:   0.45,
			Beta: 1.05,
			Multiples: models.ValuationMultiples{
				PECurrent: 20.0, PEForward: 17.0, PB: 3.0, PS: 1.6,
				EVEBITDA: 12.5, DividendYield: 0.018,
			},
		},
		"Energy": {
			Sector: "Energy",
			Means: map[string]float64{
				"roic":             8.0,
				"roe":              12.0,
				"operating_margin": 14.0,
				"net_margin":       9.0,
				"gross_margin":     32.0,
			},
			CV:   0.70,
			Beta: 1.1,
			Multiples: models.ValuationMultiples{
				PECurrent: 11.0, PEForward: 10.0, PB: 1.6, PS: 1.2,
				EVEBITDA: 6.5, DividendYield: 0.040,
			},
		},
		"Utilities": {
			Sector: "Utilities",
			Means: map[string]float64{
				"roic":             5.0,
				"roe":              10.0,
				"operating_margin": 20.0,
				"net_margin":       11.0,
				"gross_margin":     40.0,
			},
			CV:   0.25,
			Beta: 0.6,
			Multiples: models.ValuationMultiples{
				PECurrent: 17.0, PEForward: 16.0, PB: 1.8, PS: 2.2,
				EVEBITDA: 11.0, DividendYield: 0.037,
			},
		},
		"Communication Services": {
			Sector: "Communication Services",
			Means: map[string]float64{
				"roic":             10.0,
				"roe":              13.0,
				"operating_margin": 16.0,
				"net_margin":       11.0,
				"gross_margin":     50.0,
			},
			CV:   0.55,
			Beta: 1.0,
			Multiples: models.ValuationMultiples{
				PECurrent: 18.0, PEForward: 15.0, PB: 2.8, PS: 2.5,
				EVEBITDA: 9.0, DividendYield: 0.012,
			},
		},
		"Basic Materials": {
			Sector: "Basic Materials",
			Means: map[string]float64{
				"roic":             8.5,
				"roe":              12.0,
				"operating_margin": 12.0,
				"net_margin":       8.0,
				"gross_margin":     25.0,
			},
			CV:   0.60,
			Beta: 1.1,
			Multiples: models.ValuationMultiples{
				PECurrent: 14.0, PEForward: 13.0, PB: 1.8, PS: 1.3,
				EVEBITDA: 8.0, DividendYield: 0.028,
			},
		},
		"Real Estate": {
			Sector: "Real Estate",
			Means: map[string]float64{
				"roic":             4.5,
				"roe":              8.0,
				"operating_margin": 25.0,
				"net_margin":       15.0,
				"gross_margin":     55.0,
			},
			CV:   0.40,
			Beta: 0.8,
			Multiples: models.ValuationMultiples{
				PECurrent: 30.0, PEForward: 26.0, PB: 1.6, PS: 5.0,
				EVEBITDA: 16.0, DividendYield: 0.042,
			},
		},
	}
}
