package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/date"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

type historyResponse struct {
	View    nexus.View    `json:"view"`
	Label   string        `json:"label"`
	Entries []nexus.Entry `json:"entries"`
}

// getTransactions returns the annotated history of a view.
// Query: view, sort (date, quantity, amount, profit), order (asc, desc).
func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	key, err := nexus.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ascending := false
	switch strings.ToLower(r.URL.Query().Get("order")) {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		respondError(w, fmt.Sprintf("unknown order %q, want asc or desc", r.URL.Query().Get("order")), http.StatusBadRequest)
		return
	}
	entries := s.accounting.Entries(v)
	if key != nexus.ByDate || ascending {
		entries = nexus.SortEntries(entries, key, ascending)
	}
	respondJSON(w, historyResponse{View: v, Label: v.Label(), Entries: entries}, http.StatusOK)
}

// transactionRequest is an acquisition or a disposal entered by amount or by
// quantity. The portfolio defaults to the target of the active view and the
// date to now.
type transactionRequest struct {
	PortfolioID string         `json:"portfolioId"`
	Date        string         `json:"date"`
	Type        string         `json:"type"`
	Amount      nexus.Money    `json:"amount"`
	UnitPrice   nexus.Money    `json:"unitPrice"`
	Quantity    nexus.Quantity `json:"quantity"`
	Note        string         `json:"note"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.newTrade(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	prev := s.snapshot()
	tx, err = s.accounting.Record(tx)
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := s.persist(prev); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, tx, http.StatusCreated)
}

// newTrade builds the transaction described by req. It must be called with
// s.mu held.
func (s *Server) newTrade(req transactionRequest) (nexus.Transaction, error) {
	kind, err := nexus.ParseKind(req.Type)
	if err != nil {
		return nexus.Transaction{}, err
	}
	p := s.accounting.Ledger.View().Target()
	if req.PortfolioID != "" {
		if p, err = nexus.ParsePortfolioID(req.PortfolioID); err != nil {
			return nexus.Transaction{}, err
		}
	}
	at := s.accounting.Now()
	if req.Date != "" {
		if at, err = date.Parse(req.Date); err != nil {
			return nexus.Transaction{}, fmt.Errorf("%w: %w", nexus.ErrInvalidTransaction, err)
		}
	}
	tx, err := nexus.NewTrade(kind, at, p, req.UnitPrice, req.Amount, req.Quantity)
	if err != nil {
		return nexus.Transaction{}, err
	}
	return tx.WithNote(strings.TrimSpace(req.Note)), nil
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot()
	tx, err := s.accounting.Delete(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := s.persist(prev); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, tx, http.StatusOK)
}

type statsResponse struct {
	View             nexus.View     `json:"view"`
	Label            string         `json:"label"`
	Balance          nexus.Quantity `json:"balance"`
	TotalInvested    nexus.Money    `json:"totalInvested"`
	AverageCost      nexus.Money    `json:"averageCost"`
	RealizedProfit   nexus.Money    `json:"realizedProfit"`
	ReferencePrice   nexus.Money    `json:"referencePrice"`
	EstimatedValue   nexus.Money    `json:"estimatedValue"`
	UnrealizedProfit nexus.Money    `json:"unrealizedProfit"`
}

func newStatsResponse(st nexus.Stats) statsResponse {
	return statsResponse{
		View:             st.View,
		Label:            st.View.Label(),
		Balance:          st.Balance,
		TotalInvested:    st.TotalInvested,
		AverageCost:      st.AverageCost,
		RealizedProfit:   st.RealizedProfit,
		ReferencePrice:   st.ReferencePrice,
		EstimatedValue:   st.EstimatedValue,
		UnrealizedProfit: st.UnrealizedProfit,
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, newStatsResponse(s.accounting.Stats(v)), http.StatusOK)
}

type acquisitionResponse struct {
	ID     string      `json:"id"`
	Date   string      `json:"date"`
	Amount nexus.Money `json:"amount"`
	Height float64     `json:"height"`
}

type monthlyResponse struct {
	Month        string                `json:"month"`
	Ceiling      nexus.Money           `json:"ceiling"`
	Spent        nexus.Money           `json:"spent"`
	Remaining    nexus.Money           `json:"remaining"`
	ConsumedPct  float64               `json:"consumedPct"`
	Status       nexus.SpendStatus     `json:"status"`
	Acquisitions []acquisitionResponse `json:"acquisitions"`
}

func (s *Server) getMonthly(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.accounting.Monthly()
	resp := monthlyResponse{
		Month:        m.Month.String(),
		Ceiling:      m.Ceiling,
		Spent:        m.Spent,
		Remaining:    m.Remaining,
		ConsumedPct:  float64(m.ConsumedPct),
		Status:       m.Status,
		Acquisitions: make([]acquisitionResponse, 0, len(m.Acquisitions)),
	}
	for _, a := range m.Acquisitions {
		resp.Acquisitions = append(resp.Acquisitions, acquisitionResponse{
			ID:     a.ID,
			Date:   date.Format(a.Date),
			Amount: a.Amount,
			Height: float64(a.Height),
		})
	}
	respondJSON(w, resp, http.StatusOK)
}

type projectionResponse struct {
	Label     string         `json:"label,omitempty"`
	Markup    *float64       `json:"markup,omitempty"`
	Quantity  nexus.Quantity `json:"quantity"`
	Price     nexus.Money    `json:"price"`
	Proceeds  nexus.Money    `json:"proceeds"`
	Profit    nexus.Money    `json:"profit"`
	ProfitPct float64        `json:"profitPct"`
}

func newProjectionResponse(label string, p nexus.Projection) projectionResponse {
	return projectionResponse{
		Label:     label,
		Quantity:  p.Quantity,
		Price:     p.Price,
		Proceeds:  p.Proceeds,
		Profit:    p.Profit,
		ProfitPct: float64(p.ProfitPct),
	}
}

type scenariosResponse struct {
	View        nexus.View           `json:"view"`
	Balance     nexus.Quantity       `json:"balance"`
	AverageCost nexus.Money          `json:"averageCost"`
	Scenarios   []projectionResponse `json:"scenarios"`
	Custom      *projectionResponse  `json:"custom,omitempty"`
}

// parseMoney reads a positive price from the query parameter name.
func parseMoney(r *http.Request, name string) (nexus.Money, bool, error) {
	q := r.URL.Query().Get(name)
	if q == "" {
		return nexus.Money{}, false, nil
	}
	d, err := decimal.NewFromString(q)
	if err != nil || !d.IsPositive() {
		return nexus.Money{}, false, fmt.Errorf("%s must be a positive number, got %q", name, q)
	}
	return nexus.M(d), true, nil
}

// getScenarios projects the sale of the balance at the preset markups, and at
// the price query parameter when present.
func (s *Server) getScenarios(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	price, custom, err := parseMoney(r, "price")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := s.accounting.Stats(v)
	resp := scenariosResponse{View: v, Balance: st.Balance, AverageCost: st.AverageCost}
	for _, sc := range nexus.Scenarios(st.Balance, st.AverageCost) {
		p := newProjectionResponse(sc.Label, sc.Projection)
		markup := float64(sc.Markup)
		p.Markup = &markup
		resp.Scenarios = append(resp.Scenarios, p)
	}
	if custom {
		p := newProjectionResponse("At "+price.String(), nexus.Project(st.Balance, st.AverageCost, price))
		resp.Custom = &p
	}
	respondJSON(w, resp, http.StatusOK)
}

// getSimulation projects the sale of the quantity query parameter at price.
func (s *Server) getSimulation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	price, ok, err := parseMoney(r, "price")
	if err == nil && !ok {
		err = fmt.Errorf("price is required")
	}
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	quantity, err := decimal.NewFromString(r.URL.Query().Get("quantity"))
	if err != nil || quantity.IsNegative() {
		respondError(w, "quantity must be a non negative number", http.StatusBadRequest)
		return
	}
	p := s.accounting.Simulate(v, nexus.Q(quantity), price)
	respondJSON(w, newProjectionResponse("", p), http.StatusOK)
}

type adjustmentRequest struct {
	PortfolioID string         `json:"portfolioId"`
	Balance     nexus.Quantity `json:"balance"`
}

type adjustmentResponse struct {
	Adjusted    bool               `json:"adjusted"`
	Transaction *nexus.Transaction `json:"transaction,omitempty"`
}

// createAdjustment reconciles a book with an observed balance. It answers 201
// with the adjustment, or 200 when the discrepancy is negligible.
func (s *Server) createAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Balance.IsNegative() {
		respondError(w, "balance must not be negative", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.accounting.Ledger.View().Target()
	if req.PortfolioID != "" {
		var err error
		if p, err = nexus.ParsePortfolioID(req.PortfolioID); err != nil {
			respondErr(w, err)
			return
		}
	}
	prev := s.snapshot()
	tx, ok, err := s.accounting.Adjust(p, req.Balance)
	if err != nil {
		respondErr(w, err)
		return
	}
	if !ok {
		respondJSON(w, adjustmentResponse{}, http.StatusOK)
		return
	}
	if err := s.persist(prev); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, adjustmentResponse{Adjusted: true, Transaction: &tx}, http.StatusCreated)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.view(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := nexus.WriteCSV(&buf, s.accounting.Entries(v)); err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "nexus-"+v.String()+".csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

type viewResponse struct {
	View  nexus.View `json:"view"`
	Label string     `json:"label"`
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.accounting.Ledger.View()
	respondJSON(w, viewResponse{View: v, Label: v.Label()}, http.StatusOK)
}

func (s *Server) putView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	v, err := nexus.ParseView(req.View)
	if err != nil {
		respondErr(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot()
	s.accounting.Ledger.SetView(v)
	if err := s.persist(prev); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, viewResponse{View: v, Label: v.Label()}, http.StatusOK)
}

type insightResponse struct {
	View     nexus.View `json:"view"`
	Markdown string     `json:"markdown"`
	HTML     string     `json:"html"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// createInsight asks the summarizer for a commentary on a view. The summarizer
// works on a copy of the entries and runs without holding the lock.
func (s *Server) createInsight(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		respondError(w, "insight is not configured, set GEMINI_API_KEY", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	v, err := s.view(r)
	if err != nil {
		s.mu.Unlock()
		respondErr(w, err)
		return
	}
	stats, entries := s.accounting.Stats(v), s.accounting.Entries(v)
	s.mu.Unlock()

	summary, err := s.summarizer.Summarize(r.Context(), stats, entries)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadGateway)
		return
	}
	var html bytes.Buffer
	if err := markdown.Convert([]byte(summary), &html); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, insightResponse{View: v, Markdown: summary, HTML: html.String()}, http.StatusOK)
}
