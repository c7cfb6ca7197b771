package nexus

import (
	"time"

	"github.com/etnz/nexus/date"
)

// DefaultMonthlyCeiling is the amount that can be spent on acquisitions in a
// calendar month.
var DefaultMonthlyCeiling = M(291853.13)

// SpendStatus is the band the monthly consumption falls in.
type SpendStatus int

const (
	Nominal  SpendStatus = iota // below 70%
	Caution                     // from 70% to 90%
	Critical                    // above 90%
)

func (s SpendStatus) String() string {
	switch s {
	case Nominal:
		return "nominal"
	case Caution:
		return "caution"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

func (s SpendStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// statusOf maps a consumption percentage to its band.
func statusOf(pct Percent) SpendStatus {
	switch {
	case pct < 70:
		return Nominal
	case pct <= 90:
		return Caution
	default:
		return Critical
	}
}

// MonthlyAcquisition is one acquisition of the month, for charts.
type MonthlyAcquisition struct {
	ID     string
	Date   time.Time
	Amount Money
	Height Percent // Amount relative to the largest acquisition of the month.
}

// MonthlySpend tracks the acquisitions of the current month against a ceiling.
type MonthlySpend struct {
	Month        date.Month
	Ceiling      Money
	Spent        Money
	Remaining    Money   // max(0, Ceiling−Spent)
	ConsumedPct  Percent // min(100, Spent/Ceiling×100)
	Status       SpendStatus
	Acquisitions []MonthlyAcquisition // chronological
}

// NewMonthlySpend sums the acquisitions of every book whose date falls in
// the UTC calendar month of now.
func NewMonthlySpend(txs []Transaction, now time.Time, ceiling Money) MonthlySpend {
	m := MonthlySpend{
		Month:   date.MonthOf(now),
		Ceiling: ceiling,
	}
	var largest Money
	for _, tx := range Chronological(txs) {
		if tx.Kind != Acquire || !m.Month.Contains(tx.Date) {
			continue
		}
		m.Spent = m.Spent.Add(tx.Amount)
		m.Acquisitions = append(m.Acquisitions, MonthlyAcquisition{ID: tx.ID, Date: tx.Date, Amount: tx.Amount})
		if tx.Amount.GreaterThan(largest) {
			largest = tx.Amount
		}
	}
	if largest.IsPositive() {
		for i := range m.Acquisitions {
			m.Acquisitions[i].Height = percentOf(m.Acquisitions[i].Amount.Ratio(largest).Mul(hundred))
		}
	}

	switch {
	case ceiling.IsPositive():
		m.ConsumedPct = min(100, percentOf(m.Spent.Ratio(ceiling).Mul(hundred)))
	case m.Spent.IsPositive():
		m.ConsumedPct = 100
	}
	m.Remaining = ceiling.Sub(m.Spent)
	if m.Remaining.IsNegative() {
		m.Remaining = Money{}
	}
	m.Status = statusOf(m.ConsumedPct)
	return m
}
