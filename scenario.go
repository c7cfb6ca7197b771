package nexus

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Projection is the outcome of a hypothetical sale.
type Projection struct {
	Quantity  Quantity
	Price     Money
	Proceeds  Money   // Quantity×Price
	Profit    Money   // Quantity×(Price−AverageCost)
	ProfitPct Percent // (Price/AverageCost−1)×100, 0 without an average cost.
}

// Project computes the outcome of selling quantity units at price when they
// cost averageCost each. It does not check quantity against any balance.
func Project(quantity Quantity, averageCost, price Money) Projection {
	p := Projection{
		Quantity: quantity,
		Price:    price,
		Proceeds: price.Mul(quantity),
		Profit:   price.Sub(averageCost).Mul(quantity),
	}
	if averageCost.IsPositive() {
		p.ProfitPct = percentOf(price.Ratio(averageCost).Sub(one).Mul(hundred))
	}
	return p
}

// PresetMarkups are the markups, in percent over the average cost, of the
// standard sale scenarios.
var PresetMarkups = []int64{0, 2, 5, 10}

// Scenario is a projection at a markup over the average cost.
type Scenario struct {
	Label  string
	Markup Percent
	Projection
}

// Scenarios projects the sale of the whole balance at every preset markup.
func Scenarios(balance Quantity, averageCost Money) []Scenario {
	res := make([]Scenario, 0, len(PresetMarkups))
	for _, markup := range PresetMarkups {
		price := averageCost.Mul(Q(decimal.New(100+markup, -2)))
		label := "Break even"
		if markup != 0 {
			label = fmt.Sprintf("Target +%d%%", markup)
		}
		res = append(res, Scenario{
			Label:      label,
			Markup:     Percent(markup),
			Projection: Project(balance, averageCost, price),
		})
	}
	return res
}
