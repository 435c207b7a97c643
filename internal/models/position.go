package models

// Position is the venue's view of current exposure for a symbol.
// Qty is signed: positive long, negative short. Never cached: it is the
// authoritative mutable state the engine reacts to.
type Position struct {
	Symbol     string
	Qty        float64
	EntryPrice float64
	Leverage   int
	MarkPrice  float64
	UnrealPnl  float64
}

func (p Position) Flat() bool { return p.Qty == 0 }

func (p Position) Side() Side {
	if p.Qty < 0 {
		return SideSell
	}
	return SideBuy
}

func (p Position) AbsQty() float64 {
	if p.Qty < 0 {
		return -p.Qty
	}
	return p.Qty
}
