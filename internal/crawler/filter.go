package crawler

// DiscountFilter keeps only records meeting the discount threshold. This is
// the core business rule; everything upstream exists to make this decision
// possible. Records without a computable discount never pass.
type DiscountFilter struct {
	Threshold float64
}

// Keep reports whether the record meets the threshold
func (f DiscountFilter) Keep(r ProductRecord) bool {
	return r.DiscountPct != nil && *r.DiscountPct >= f.Threshold
}
