package models

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type Action string

const (
	ActionEntry        Action = "ENTRY"
	ActionExit         Action = "EXIT"
	ActionMoveStoploss Action = "MOVE_STOPLOSS"
)

// PartialProfit describes one rung of the take-profit ladder.
// Where is the fraction of the entry→TP distance, Qty the fraction of filled size.
type PartialProfit struct {
	Where float64 `json:"where"`
	Qty   float64 `json:"qty"`
}

// TradeIntent is the validated instruction the engine executes.
// Exactly one of RiskPct / RiskAmount is required for ENTRY.
type TradeIntent struct {
	Symbol          string          `json:"symbol"`
	Side            Side            `json:"side"`
	Action          Action          `json:"action"`
	EntryPrice      float64         `json:"entry_price,omitempty"`
	RiskPct         float64         `json:"risk,omitempty"`
	RiskAmount      float64         `json:"risk_amount,omitempty"`
	StoplossPrice   float64         `json:"stoploss_price,omitempty"`
	TakeProfitPrice float64         `json:"takeprofit_price,omitempty"`
	PartialProfits  []PartialProfit `json:"partial_profits,omitempty"`
}

// Validate rejects ill-formed intents before any venue call.
func (t TradeIntent) Validate() error {
	if t.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "empty"}
	}
	if !t.Side.Valid() {
		return &ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}

	switch t.Action {
	case ActionEntry:
		if t.StoplossPrice <= 0 {
			return &ValidationError{Field: "stoploss_price", Reason: "required for ENTRY"}
		}
		if t.TakeProfitPrice <= 0 {
			return &ValidationError{Field: "takeprofit_price", Reason: "required for ENTRY"}
		}
		if t.RiskPct <= 0 && t.RiskAmount <= 0 {
			return &ValidationError{Field: "risk", Reason: "risk or risk_amount required for ENTRY"}
		}
		if t.EntryPrice <= 0 {
			return &ValidationError{Field: "entry_price", Reason: "required for ENTRY"}
		}
		if t.EntryPrice == t.StoplossPrice {
			return &ValidationError{Field: "stoploss_price", Reason: "equals entry price"}
		}
		for _, pp := range t.PartialProfits {
			if pp.Where <= 0 || pp.Where > 1 {
				return &ValidationError{Field: "partial_profits.where", Reason: "must be in (0;1]"}
			}
			if pp.Qty <= 0 || pp.Qty > 1 {
				return &ValidationError{Field: "partial_profits.qty", Reason: "must be in (0;1]"}
			}
		}
	case ActionExit:
		// symbol + side are enough
	case ActionMoveStoploss:
		if t.StoplossPrice <= 0 {
			return &ValidationError{Field: "stoploss_price", Reason: "required for MOVE_STOPLOSS"}
		}
	default:
		return &ValidationError{Field: "action", Reason: "unknown action"}
	}
	return nil
}

type Protection string

const (
	// ProtectionFull: stop-loss and take-profit both resting.
	ProtectionFull Protection = "full"
	// ProtectionDegradedTP: stop-loss resting, take-profit failed even after retry.
	ProtectionDegradedTP Protection = "degraded_tp"
	// ProtectionCompensated: stop-loss failed, position closed by market order.
	ProtectionCompensated Protection = "compensated"
	// ProtectionNone: nothing to protect (EXIT / MOVE_STOPLOSS results).
	ProtectionNone Protection = ""
)

// PartialFill reports one partial-profit order that actually landed.
type PartialFill struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// OrderResult is the audit record of what the engine achieved vs requested.
type OrderResult struct {
	Success        bool          `json:"success"`
	Protection     Protection    `json:"protection,omitempty"`
	Entry          float64       `json:"entry,omitempty"`
	Stoploss       float64       `json:"stoploss,omitempty"`
	TakeProfit     float64       `json:"takeprofit,omitempty"`
	Qty            float64       `json:"qty,omitempty"`
	PartialProfits []PartialFill `json:"partial_profits,omitempty"`
}
