package domain

// CapTable expresses the per-category ceiling on holding-deposit line items
// as a multiple of monthly rent. The statutory default in the launch
// jurisdiction is one month per category; other jurisdictions load their own
// table from configuration.
type CapTable struct {
	First    float64
	Last     float64
	Security float64
	Key      float64
}

func DefaultCapTable() CapTable {
	return CapTable{First: 1, Last: 1, Security: 1, Key: 1}
}

// CapViolation names the offending deposit component.
type CapViolation struct {
	Field  string
	Reason string
}

type CapResult struct {
	OK         bool
	Violations []CapViolation
	Total      int64
}

// ValidateDeposit checks each line item against the cap table and computes
// the total. The total is computed even when validation fails; callers must
// not use it unless OK is true. Pure and safe for concurrent use.
func ValidateDeposit(amounts DepositAmounts, monthlyRent int64, caps CapTable) CapResult {
	res := CapResult{Total: amounts.Sum()}

	check := func(field string, amount int64, multiple float64) {
		if amount < 0 {
			res.Violations = append(res.Violations, CapViolation{Field: field, Reason: "must not be negative"})
			return
		}
		limit := int64(multiple * float64(monthlyRent))
		if amount > limit {
			res.Violations = append(res.Violations, CapViolation{Field: field, Reason: "exceeds cap"})
		}
	}

	check("first", amounts.First, caps.First)
	check("last", amounts.Last, caps.Last)
	check("security", amounts.Security, caps.Security)
	check("key", amounts.Key, caps.Key)

	res.OK = len(res.Violations) == 0
	return res
}
