package nexus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/nexus/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON writes the authoritative fields of t in a stable order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("portfolioId", t.Portfolio)
	w.Append("date", date.Format(t.Date))
	w.Append("type", t.Kind)
	w.Append("amount", t.Amount)
	w.Append("unitPrice", t.UnitPrice)
	w.Append("quantity", t.Quantity)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}

// jsonTransaction is the decoded shape of a transaction. It reads both the
// canonical field names and the ones written by earlier versions of the
// ledger (amountPesos, pricePerUsdt, amountUsdt). Stored realized profit
// fields are not read: they are always recomputed.
type jsonTransaction struct {
	ID        string           `json:"id"`
	Portfolio string           `json:"portfolioId"`
	Date      string           `json:"date"`
	Type      string           `json:"type"`
	Amount    *decimal.Decimal `json:"amount"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Note      string           `json:"note"`

	LegacyAmount    *decimal.Decimal `json:"amountPesos"`
	LegacyUnitPrice *decimal.Decimal `json:"pricePerUsdt"`
	LegacyQuantity  *decimal.Decimal `json:"amountUsdt"`
}

// first returns the first non nil decimal, or zero.
func first(values ...*decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
// The portfolio id goes through ParsePortfolioID, so a missing id is Main.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j jsonTransaction
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	p, err := ParsePortfolioID(j.Portfolio)
	if err != nil {
		return err
	}
	kind, err := ParseKind(j.Type)
	if err != nil {
		return err
	}
	on, err := date.Parse(j.Date)
	if err != nil {
		return err
	}
	*t = Transaction{
		ID:        j.ID,
		Portfolio: p,
		Date:      on,
		Kind:      kind,
		Amount:    M(first(j.Amount, j.LegacyAmount)),
		UnitPrice: M(first(j.UnitPrice, j.LegacyUnitPrice)),
		Quantity:  Q(first(j.Quantity, j.LegacyQuantity)),
		Note:      j.Note,
	}
	return nil
}

// DecodeTransactions decodes a JSON array of transactions. Order is
// irrelevant: every replay sorts again.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	dec := json.NewDecoder(r)
	if err := dec.Decode(&txs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil // an empty file is an empty ledger
		}
		return nil, fmt.Errorf("could not decode transactions: %w", err)
	}
	return txs, nil
}

// EncodeTransactions writes txs as an indented JSON array.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	if txs == nil {
		txs = []Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("could not encode transactions: %w", err)
	}
	return nil
}

// MarshalJSON writes the transaction followed by its derived profit figures,
// present for disposals only.
func (e Entry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.Transaction)
	if e.Realized() {
		w.Append("realizedProfit", e.RealizedProfit)
		w.Append("realizedProfitPct", float64(e.RealizedProfitPct))
	}
	return w.MarshalJSON()
}

// MarshalJSON writes the previewed transaction followed by the average costs.
func (p AcquirePreview) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(p.Transaction)
	w.Append("currentAverageCost", p.Current)
	w.Append("newAverageCost", p.New)
	w.Append("averageCostChange", p.Delta)
	return w.MarshalJSON()
}
