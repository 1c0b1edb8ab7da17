package valuation

import "github.com/bobmcallan/verdict/internal/models"

// MethodWeights maps valuation methods to their blend weight. Each table
// sums to 1.0 across the full method set; zero-weight entries mark methods
// the sector deliberately ignores.
type MethodWeights map[string]float64

// DefaultWeightTables returns the sector weight tables. The "" key is the
// fallback for unlisted sectors.
func DefaultWeightTables() map[string]MethodWeights {
	return map[string]MethodWeights{
		"": {
			models.MethodPE:         0.15,
			models.MethodPB:         0.05,
			models.MethodPS:         0.10,
			models.MethodEVEBITDA:   0.15,
			models.MethodPEG:        0.10,
			models.MethodDCF:        0.20,
			models.MethodDDM:        0.05,
			models.MethodGraham:     0.05,
			models.MethodPeterLynch: 0.05,
			models.MethodAnalyst:    0.10,
		},
		// banks and insurers price off book value and payouts; EV/EBITDA
		// is meaningless with a levered balance sheet
		"Financial Services": {
			models.MethodPE:         0.20,
			models.MethodPB:         0.20,
			models.MethodPS:         0.05,
			models.MethodEVEBITDA:   0,
			models.MethodPEG:        0.05,
			models.MethodDCF:        0.05,
			models.MethodDDM:        0.15,
			models.MethodGraham:     0.10,
			models.MethodPeterLynch: 0.05,
			models.MethodAnalyst:    0.15,
		},
		"Utilities": {
			models.MethodPE:         0.15,
			models.MethodPB:         0.10,
			models.MethodPS:         0.05,
			models.MethodEVEBITDA:   0.15,
			models.MethodPEG:        0.05,
			models.MethodDCF:        0.15,
			models.MethodDDM:        0.20,
			models.MethodGraham:     0.05,
			models.MethodPeterLynch: 0,
			models.MethodAnalyst:    0.10,
		},
		"Technology": {
			models.MethodPE:         0.15,
			models.MethodPB:         0,
			models.MethodPS:         0.15,
			models.MethodEVEBITDA:   0.15,
			models.MethodPEG:        0.10,
			models.MethodDCF:        0.25,
			models.MethodDDM:        0.05,
			models.MethodGraham:     0,
			models.MethodPeterLynch: 0.05,
			models.MethodAnalyst:    0.10,
		},
	}
}

// weightsFor resolves the table for a sector, falling back to the default.
func weightsFor(tables map[string]MethodWeights, sector string) MethodWeights {
	if w, ok := tables[sector]; ok {
		return w
	}
	return tables[""]
}
