// Package nexus tracks the acquisitions, disposals and balance adjustments of
// a single fungible asset priced in a local currency, and derives holdings,
// average cost and profits from them.
//
// The ledger is a flat set of transactions split into books (see
// PortfolioID). Nothing derived is ever stored: every report is computed by
// replaying the whole set in chronological order with the weighted average
// cost method.
//
// The main pieces are:
//   - Process: the replay itself, producing a Book of annotated entries and
//     the final state of every book.
//   - NewStats: the summary of one book, or of all books merged as one.
//   - NewMonthlySpend: acquisitions of the current month against a ceiling.
//   - Project and Scenarios: hypothetical sale outcomes.
//   - ReconcileBalance: the adjustment that corrects a drifting balance
//     without moving the average cost.
//
// Ledger holds the transactions in memory and AccountingSystem ties it to the
// reports; loading and saving a Ledger is done by package store.
package nexus
