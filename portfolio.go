package nexus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PortfolioID identifies one sub-ledger ("book"). The set is closed: only
// Main and Trading exist.
type PortfolioID string

const (
	Main    PortfolioID = "main"
	Trading PortfolioID = "trading"
)

// Portfolios lists every book in display order.
func Portfolios() []PortfolioID { return []PortfolioID{Main, Trading} }

// ParsePortfolioID resolves a persisted or user supplied portfolio id.
// The empty string resolves to Main; any other unknown value is an error.
// This is the single place where the default is applied.
func ParsePortfolioID(s string) (PortfolioID, error) {
	switch PortfolioID(strings.ToLower(strings.TrimSpace(s))) {
	case "", Main:
		return Main, nil
	case Trading:
		return Trading, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPortfolio, s)
	}
}

// Valid reports whether p is one of the known books.
func (p PortfolioID) Valid() bool { return p == Main || p == Trading }

// Label is the human name of the book.
func (p PortfolioID) Label() string {
	switch p {
	case Main:
		return "Main investment"
	case Trading:
		return "Trading / P2P"
	default:
		return string(p)
	}
}

func (p PortfolioID) String() string { return string(p) }

func (p PortfolioID) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPortfolio, string(p))
	}
	return json.Marshal(string(p))
}

func (p *PortfolioID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := ParsePortfolioID(s)
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// View selects what the reports are computed on: one book, or every book
// consolidated into a single one.
type View string

// ViewAll is the consolidated view.
const ViewAll View = "all"

// ViewOf returns the view showing a single book.
func ViewOf(p PortfolioID) View { return View(p) }

// Views lists every selectable view in display order.
func Views() []View { return []View{ViewOf(Main), ViewOf(Trading), ViewAll} }

// ParseView resolves a persisted or user supplied view selector. The empty
// string resolves to the Main book.
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if View(s) == ViewAll {
		return ViewAll, nil
	}
	p, err := ParsePortfolioID(s)
	if err != nil {
		return "", fmt.Errorf("unknown view %q: %w", s, err)
	}
	return ViewOf(p), nil
}

// Portfolio returns the book shown by v, false for the consolidated view.
func (v View) Portfolio() (PortfolioID, bool) {
	p := PortfolioID(v)
	return p, p.Valid()
}

// Target is the book new transactions go to while v is active. The
// consolidated view writes to Main.
func (v View) Target() PortfolioID {
	if p, ok := v.Portfolio(); ok {
		return p
	}
	return Main
}

// Includes reports whether transactions of book p are visible in v.
func (v View) Includes(p PortfolioID) bool {
	return v == ViewAll || PortfolioID(v) == p
}

func (v View) Label() string {
	if p, ok := v.Portfolio(); ok {
		return p.Label()
	}
	return "Global"
}

func (v View) String() string { return string(v) }
