package ledger

import "github.com/shopspring/decimal"

// Position is an open long holding in one symbol. Quantity is always > 0;
// a position that reaches zero is removed from the ledger.
type Position struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	LastPrice     decimal.Decimal `json:"current_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

func (p Position) qty() decimal.Decimal { return decimal.NewFromInt(p.Quantity) }

// MarketValue is quantity at the last observed price.
func (p Position) MarketValue() decimal.Decimal { return p.LastPrice.Mul(p.qty()) }

// CostBasis is quantity at average cost.
func (p Position) CostBasis() decimal.Decimal { return p.AvgCost.Mul(p.qty()) }

func (p *Position) mark(price decimal.Decimal) {
	p.LastPrice = price
	p.UnrealizedPnL = price.Sub(p.AvgCost).Mul(p.qty())
}

// AvgCostPlaces is the number of decimal places a blended average cost keeps.
const AvgCostPlaces int32 = 16

// add blends qty units bought at price into the volume weighted average cost.
// The blend rounds half away from zero at AvgCostPlaces, so each blend moves
// the cost basis by at most total × 0.5e-16. Sells take basis out at the
// stored average and add no further drift.
func (p *Position) add(qty int64, price decimal.Decimal) {
	total := p.Quantity + qty
	cost := p.CostBasis().Add(price.Mul(decimal.NewFromInt(qty)))
	p.AvgCost = cost.DivRound(decimal.NewFromInt(total), AvgCostPlaces)
	p.Quantity = total
	p.mark(price)
}

// remove closes qty units at price and returns the realized P&L. The average
// cost of the remaining units does not change.
func (p *Position) remove(qty int64, price decimal.Decimal) decimal.Decimal {
	realized := price.Sub(p.AvgCost).Mul(decimal.NewFromInt(qty))
	p.Quantity -= qty
	p.mark(price)
	return realized
}
