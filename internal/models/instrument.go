package models

// SymbolMetadata carries the per-symbol precision limits the venue enforces.
// Both fields are decimal-place counts; every price/quantity sent to the venue
// must be truncated (not rounded) to them.
type SymbolMetadata struct {
	Symbol         string
	PricePrecision int // decimals implied by tick size
	QtyPrecision   int // decimals accepted for order size
}
