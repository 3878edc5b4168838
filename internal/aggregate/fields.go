package aggregate

// Semantics says how values of one field combine inside a period bucket.
type Semantics int

const (
	// Sum accumulates flows (revenue, opex, cash flows).
	Sum Semantics = iota
	// Last keeps the value of the latest-dated record (balance snapshots).
	Last
	// First keeps the value of the earliest-dated record (opening balances).
	First
	// Mean averages intensive quantities such as prices.
	Mean
)

func (s Semantics) String() string {
	switch s {
	case Last:
		return "last"
	case First:
		return "first"
	case Mean:
		return "mean"
	default:
		return "sum"
	}
}

// fieldSemantics lists every field that does not sum. Unlisted fields are flows.
var fieldSemantics = map[string]Semantics{
	"cash":               Last,
	"fixed_assets":       Last,
	"total_assets":       Last,
	"debt":               Last,
	"total_liabilities":  Last,
	"net_assets":         Last,
	"equity":             Last,
	"share_capital":      Last,
	"retained_earnings":  Last,
	"cumulative_capex":   Last,
	"cumulative_d_and_a": Last,
	"ending_balance":     Last,
	"beginning_balance":  First,
	"avgGreenPrice":      Mean,
	"avgEnergyPrice":     Mean,
	"PRICE":              Mean,
}

// SemanticsOf returns the bucket rule for a field.
func SemanticsOf(field string) Semantics {
	if s, ok := fieldSemantics[field]; ok {
		return s
	}
	return Sum
}

// NumericFields is the allowlist of cash-flow fields a caller may name in a query.
var NumericFields = []string{
	"revenue",
	"contractedGreenRevenue",
	"contractedEnergyRevenue",
	"merchantGreenRevenue",
	"merchantEnergyRevenue",
	"monthlyGeneration",
	"avgGreenPrice",
	"avgEnergyPrice",
	"opex",
	"capex",
	"equity_capex",
	"debt_capex",
	"beginning_balance",
	"drawdowns",
	"interest",
	"principal",
	"ending_balance",
	"d_and_a",
	"cfads",
	"debt_service",
	"ebit",
	"ebt",
	"tax_expense",
	"net_income",
	"terminal_value",
	"equity_cash_flow",
	"equity_cash_flow_pre_distributions",
	"equity_injection",
	"cumulative_capex",
	"cumulative_d_and_a",
	"fixed_assets",
	"debt",
	"share_capital",
	"retained_earnings",
	"cash",
	"total_assets",
	"total_liabilities",
	"net_assets",
	"equity",
	"distributions",
	"dividends",
	"redistributed_capital",
}

var numericFieldSet = func() map[string]bool {
	set := make(map[string]bool, len(NumericFields))
	for _, f := range NumericFields {
		set[f] = true
	}
	return set
}()

// IsNumericField reports whether the field is on the allowlist.
func IsNumericField(field string) bool {
	return numericFieldSet[field]
}

// Three-way forecast statement groups.
var (
	ProfitLossFields = []string{
		"revenue", "opex", "ebitda", "d_and_a", "ebit", "interest", "ebt", "tax_expense", "net_income",
	}

	BalanceSheetFields = []string{
		"cash", "fixed_assets", "total_assets", "debt", "total_liabilities",
		"equity", "share_capital", "retained_earnings", "cumulative_capex", "cumulative_d_and_a",
	}

	CashFlowFields = []string{
		"cfads", "operating_cash_flow",
		"capex", "terminal_value", "investing_cash_flow",
		"drawdowns", "interest", "principal", "equity_injection", "distributions",
		"dividends", "redistributed_capital", "financing_cash_flow",
		"equity_cash_flow_pre_distributions", "equity_cash_flow",
		"net_cash_flow",
		"debt_service", "beginning_balance", "ending_balance",
	}
)

// ThreeWayFields returns the union of the statement groups in first-seen order.
func ThreeWayFields() []string {
	seen := map[string]bool{}
	var out []string
	for _, group := range [][]string{ProfitLossFields, BalanceSheetFields, CashFlowFields} {
		for _, f := range group {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
