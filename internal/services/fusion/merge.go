package fusion

import (
	"github.com/bobmcallan/verdict/internal/models"
	"github.com/bobmcallan/verdict/internal/registry"
)

// mergeField writes a candidate value into a canonical slot. An empty slot
// always accepts. An occupied slot is only replaced when the field allows
// overrides and the candidate source strictly outranks the occupant, which
// makes the outcome independent of tier arrival order.
func mergeField(def *registry.FieldDef, slot **models.Field, value float64, src models.Source, currency string) bool {
	cand := &models.Field{Value: value, Source: src}
	if def.Monetary || def.PerShare {
		cand.Currency = currency
	}
	if *slot == nil {
		*slot = cand
		return true
	}
	if def.OverrideAllowed && def.Rank(src) < def.Rank((*slot).Source) {
		*slot = cand
		return true
	}
	return false
}

// mergeText applies the same rule to text slots.
func mergeText(def *registry.FieldDef, slot **models.TextField, value string, src models.Source) bool {
	if *slot == nil {
		*slot = &models.TextField{Value: value, Source: src}
		return true
	}
	if def.OverrideAllowed && def.Rank(src) < def.Rank((*slot).Source) {
		*slot = &models.TextField{Value: value, Source: src}
		return true
	}
	return false
}

// periodKey aligns statement periods across providers. Fiscal period end
// dates can differ by a few days between providers (2024-09-28 vs
// 2024-09-30), so periods are matched at month granularity.
func periodKey(period string, annual bool) string {
	key := period
	if len(key) > 7 {
		key = key[:7]
	}
	if annual {
		return "A" + key
	}
	return "Q" + key
}

// absorb maps one provider payload onto the record through the registry.
func (s *Service) absorb(record *models.StandardizedRecord, payload *models.RawPayload) {
	src := payload.Source
	cur := payload.Currency

	for _, raw := range payload.Income {
		stmt := findOrCreateIncome(record, raw.Period, raw.Annual)
		for _, def := range s.registry.Section(registry.SectionIncome) {
			if v, ok := def.Resolve(src, raw.Fields); ok {
				mergeField(def, registry.IncomeSlots[def.Canonical](stmt), v, src, cur)
			}
		}
	}
	for _, raw := range payload.Balance {
		stmt := findOrCreateBalance(record, raw.Period, raw.Annual)
		for _, def := range s.registry.Section(registry.SectionBalance) {
			if v, ok := def.Resolve(src, raw.Fields); ok {
				mergeField(def, registry.BalanceSlots[def.Canonical](stmt), v, src, cur)
			}
		}
	}
	for _, raw := range payload.CashFlow {
		stmt := findOrCreateCashFlow(record, raw.Period, raw.Annual)
		for _, def := range s.registry.Section(registry.SectionCashFlow) {
			if v, ok := def.Resolve(src, raw.Fields); ok {
				mergeField(def, registry.CashFlowSlots[def.Canonical](stmt), v, src, cur)
			}
		}
	}

	if payload.Profile != nil {
		if record.Profile == nil {
			record.Profile = &models.CompanyProfile{}
		}
		for _, def := range s.registry.Section(registry.SectionProfile) {
			if def.Text {
				if v, ok := def.ResolveText(src, payload.Profile); ok {
					mergeText(def, registry.ProfileTextSlots[def.Canonical](record.Profile), v, src)
				}
			} else {
				if v, ok := def.Resolve(src, payload.Profile); ok {
					mergeField(def, registry.ProfileSlots[def.Canonical](record.Profile), v, src, cur)
				}
			}
		}
	}

	if payload.Forecast != nil {
		if record.Forecast == nil {
			record.Forecast = &models.Forecast{}
		}
		for _, def := range s.registry.Section(registry.SectionForecast) {
			if v, ok := def.Resolve(src, payload.Forecast); ok {
				mergeField(def, registry.ForecastSlots[def.Canonical](record.Forecast), v, src, cur)
			}
		}
	}
}

func findOrCreateIncome(record *models.StandardizedRecord, period string, annual bool) *models.IncomeStatement {
	key := periodKey(period, annual)
	for _, stmt := range record.Income {
		if periodKey(stmt.Period, stmt.Annual) == key {
			return stmt
		}
	}
	stmt := &models.IncomeStatement{Period: period, Annual: annual}
	record.Income = insertByPeriod(record.Income, stmt)
	return stmt
}

func findOrCreateBalance(record *models.StandardizedRecord, period string, annual bool) *models.BalanceSheet {
	key := periodKey(period, annual)
	for _, stmt := range record.Balance {
		if periodKey(stmt.Period, stmt.Annual) == key {
			return stmt
		}
	}
	stmt := &models.BalanceSheet{Period: period, Annual: annual}
	record.Balance = insertSheetByPeriod(record.Balance, stmt)
	return stmt
}

func findOrCreateCashFlow(record *models.StandardizedRecord, period string, annual bool) *models.CashFlowStatement {
	key := periodKey(period, annual)
	for _, stmt := range record.CashFlow {
		if periodKey(stmt.Period, stmt.Annual) == key {
			return stmt
		}
	}
	stmt := &models.CashFlowStatement{Period: period, Annual: annual}
	record.CashFlow = insertFlowByPeriod(record.CashFlow, stmt)
	return stmt
}

// insert helpers keep each statement slice ordered annual-first, most recent
// first, so downstream history walks need no re-sort.

func insertByPeriod(stmts []*models.IncomeStatement, stmt *models.IncomeStatement) []*models.IncomeStatement {
	i := 0
	for ; i < len(stmts); i++ {
		if statementLess(stmt.Period, stmt.Annual, stmts[i].Period, stmts[i].Annual) {
			break
		}
	}
	stmts = append(stmts, nil)
	copy(stmts[i+1:], stmts[i:])
	stmts[i] = stmt
	return stmts
}

func insertSheetByPeriod(stmts []*models.BalanceSheet, stmt *models.BalanceSheet) []*models.BalanceSheet {
	i := 0
	for ; i < len(stmts); i++ {
		if statementLess(stmt.Period, stmt.Annual, stmts[i].Period, stmts[i].Annual) {
			break
		}
	}
	stmts = append(stmts, nil)
	copy(stmts[i+1:], stmts[i:])
	stmts[i] = stmt
	return stmts
}

func insertFlowByPeriod(stmts []*models.CashFlowStatement, stmt *models.CashFlowStatement) []*models.CashFlowStatement {
	i := 0
	for ; i < len(stmts); i++ {
		if statementLess(stmt.Period, stmt.Annual, stmts[i].Period, stmts[i].Annual) {
			break
		}
	}
	stmts = append(stmts, nil)
	copy(stmts[i+1:], stmts[i:])
	stmts[i] = stmt
	return stmts
}

func statementLess(aPeriod string, aAnnual bool, bPeriod string, bAnnual bool) bool {
	if aAnnual != bAnnual {
		return aAnnual
	}
	return aPeriod > bPeriod
}
