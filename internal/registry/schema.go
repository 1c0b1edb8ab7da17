package registry

import "github.com/bobmcallan/verdict/internal/models"

// Default returns the canonical schema with bindings for every supported
// provider. Path lists are probed in order, so aliases a provider has used
// across API versions sit behind the current name.
func Default() *Registry {
	e, f, a := models.SourceEODHD, models.SourceFMP, models.SourceAlphaVantage

	return New([]*FieldDef{
		// income statement
		{Canonical: "revenue", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalRevenue"},
			f: {"revenue"},
			a: {"totalRevenue"},
		}},
		{Canonical: "cost_of_revenue", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"costOfRevenue"},
			f: {"costOfRevenue"},
			a: {"costOfRevenue", "costofGoodsAndServicesSold"},
		}},
		{Canonical: "gross_profit", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"grossProfit"},
			f: {"grossProfit"},
			a: {"grossProfit"},
		}},
		{Canonical: "operating_expenses", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalOperatingExpenses"},
			f: {"operatingExpenses"},
			a: {"operatingExpenses"},
		}},
		{Canonical: "operating_income", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"operatingIncome"},
			f: {"operatingIncome"},
			a: {"operatingIncome"},
		}},
		{Canonical: "pretax_income", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"incomeBeforeTax"},
			f: {"incomeBeforeTax"},
			a: {"incomeBeforeTax"},
		}},
		{Canonical: "income_tax_expense", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"incomeTaxExpense"},
			f: {"incomeTaxExpense"},
			a: {"incomeTaxExpense"},
		}},
		{Canonical: "interest_expense", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"interestExpense"},
			f: {"interestExpense"},
			a: {"interestExpense", "interestAndDebtExpense"},
		}},
		{Canonical: "net_income", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"netIncome"},
			f: {"netIncome"},
			a: {"netIncome"},
		}},
		{Canonical: "eps", Section: SectionIncome, PerShare: true, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"epsActual"},
			f: {"eps"},
			a: {"reportedEPS"},
		}},
		{Canonical: "eps_diluted", Section: SectionIncome, PerShare: true, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"epsDiluted"},
			f: {"epsdiluted"},
			a: {"dilutedEPSTTM"},
		}},
		{Canonical: "shares_outstanding", Section: SectionIncome, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"commonStockSharesOutstanding"},
			f: {"weightedAverageShsOutDil", "weightedAverageShsOut"},
			a: {"commonStockSharesOutstanding"},
		}},
		{Canonical: "ebitda", Section: SectionIncome, Monetary: true, Paths: map[models.Source][]string{
			e: {"ebitda"},
			f: {"ebitda"},
			a: {"ebitda"},
		}},

		// balance sheet
		{Canonical: "total_assets", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalAssets"},
			f: {"totalAssets"},
			a: {"totalAssets"},
		}},
		{Canonical: "current_assets", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalCurrentAssets"},
			f: {"totalCurrentAssets"},
			a: {"totalCurrentAssets"},
		}},
		{Canonical: "cash", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"cash", "cashAndEquivalents"},
			f: {"cashAndCashEquivalents"},
			a: {"cashAndCashEquivalentsAtCarryingValue"},
		}},
		{Canonical: "inventory", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"inventory"},
			f: {"inventory"},
			a: {"inventory"},
		}},
		{Canonical: "total_liabilities", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalLiab"},
			f: {"totalLiabilities"},
			a: {"totalLiabilities"},
		}},
		{Canonical: "current_liabilities", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalCurrentLiabilities"},
			f: {"totalCurrentLiabilities"},
			a: {"totalCurrentLiabilities"},
		}},
		{Canonical: "total_debt", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"shortLongTermDebtTotal"},
			f: {"totalDebt"},
			a: {"shortLongTermDebtTotal"},
		}},
		{Canonical: "shareholder_equity", Section: SectionBalance, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalStockholderEquity"},
			f: {"totalStockholdersEquity"},
			a: {"totalShareholderEquity"},
		}},

		// cash flow statement
		{Canonical: "operating_cash_flow", Section: SectionCashFlow, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalCashFromOperatingActivities"},
			f: {"operatingCashFlow", "netCashProvidedByOperatingActivities"},
			a: {"operatingCashflow"},
		}},
		{Canonical: "investing_cash_flow", Section: SectionCashFlow, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalCashflowsFromInvestingActivities"},
			f: {"netCashUsedForInvestingActivites"},
			a: {"cashflowFromInvestment"},
		}},
		{Canonical: "financing_cash_flow", Section: SectionCashFlow, Monetary: true, Paths: map[models.Source][]string{
			e: {"totalCashFromFinancingActivities"},
			f: {"netCashUsedProvidedByFinancingActivities"},
			a: {"cashflowFromFinancing"},
		}},
		{Canonical: "capex", Section: SectionCashFlow, Monetary: true, Paths: map[models.Source][]string{
			e: {"capitalExpenditures"},
			f: {"capitalExpenditure"},
			a: {"capitalExpenditures"},
		}},
		{Canonical: "free_cash_flow", Section: SectionCashFlow, Monetary: true, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"freeCashFlow"},
			f: {"freeCashFlow"},
		}},
		// FMP breaks SBC out reliably, so it outranks the tier order here.
		{Canonical: "stock_based_comp", Section: SectionCashFlow, Monetary: true, OverrideAllowed: true,
			Priority: []models.Source{f, e, a},
			Paths: map[models.Source][]string{
				e: {"stockBasedCompensation"},
				f: {"stockBasedCompensation"},
			}},
		{Canonical: "dividends_paid", Section: SectionCashFlow, Monetary: true, Paths: map[models.Source][]string{
			e: {"dividendsPaid"},
			f: {"dividendsPaid"},
			a: {"dividendPayout"},
		}},

		// company profile: text
		{Canonical: "name", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.Name"},
			f: {"companyName"},
			a: {"Name"},
		}},
		{Canonical: "sector", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.Sector"},
			f: {"sector"},
			a: {"Sector"},
		}},
		{Canonical: "industry", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.Industry"},
			f: {"industry"},
			a: {"Industry"},
		}},
		{Canonical: "reporting_currency", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.FinancialCurrency", "$.General.CurrencyCode"},
			f: {"reportedCurrency", "currency"},
			a: {"Currency"},
		}},
		{Canonical: "listing_currency", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.CurrencyCode"},
			f: {"currency"},
			a: {"Currency"},
		}},
		{Canonical: "security_type", Section: SectionProfile, Text: true, Paths: map[models.Source][]string{
			e: {"$.General.Type"},
			f: {"securityType", "exchangeShortName"},
			a: {"AssetType"},
		}},

		// company profile: numeric
		{Canonical: "market_cap", Section: SectionProfile, Monetary: true, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"$.Highlights.MarketCapitalization"},
			f: {"mktCap", "marketCap"},
			a: {"MarketCapitalization"},
		}},
		{Canonical: "price", Section: SectionProfile, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"$.Technicals.Price", "$.Highlights.Price"},
			f: {"price"},
		}},
		{Canonical: "beta", Section: SectionProfile, Paths: map[models.Source][]string{
			e: {"$.Technicals.Beta"},
			f: {"beta"},
			a: {"Beta"},
		}},
		{Canonical: "shares_outstanding_current", Section: SectionProfile, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"$.SharesStats.SharesOutstanding"},
			f: {"sharesOutstanding"},
			a: {"SharesOutstanding"},
		}},
		{Canonical: "forward_pe", Section: SectionProfile, Paths: map[models.Source][]string{
			e: {"$.Valuation.ForwardPE"},
			a: {"ForwardPE"},
		}},
		{Canonical: "peg_ratio", Section: SectionProfile, Paths: map[models.Source][]string{
			e: {"$.Highlights.PEGRatio"},
			a: {"PEGRatio"},
		}},
		{Canonical: "earnings_growth", Section: SectionProfile, Paths: map[models.Source][]string{
			e: {"$.Highlights.QuarterlyEarningsGrowthYOY"},
			a: {"QuarterlyEarningsGrowthYOY"},
		}},
		{Canonical: "book_value_per_share", Section: SectionProfile, PerShare: true, Paths: map[models.Source][]string{
			e: {"$.Highlights.BookValue"},
			a: {"BookValue"},
		}},

		// analyst forecast
		{Canonical: "target_consensus", Section: SectionForecast, OverrideAllowed: true, Paths: map[models.Source][]string{
			e: {"WallStreetTargetPrice", "$.Highlights.WallStreetTargetPrice"},
			f: {"targetConsensus"},
			a: {"AnalystTargetPrice"},
		}},
		{Canonical: "target_high", Section: SectionForecast, Paths: map[models.Source][]string{
			f: {"targetHigh"},
		}},
		{Canonical: "target_low", Section: SectionForecast, Paths: map[models.Source][]string{
			f: {"targetLow"},
		}},
		{Canonical: "forward_eps", Section: SectionForecast, PerShare: true, Paths: map[models.Source][]string{
			e: {"EPSEstimateNextYear", "$.Highlights.EPSEstimateNextYear"},
			f: {"estimatedEpsAvg"},
			a: {"ForwardEPS", "EPS"},
		}},
	})
}
