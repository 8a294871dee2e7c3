// Package hportfolio rebuilds the daily history of an investment portfolio
// from a sparse journal of dated snapshots and cash deposits.
//
// The core functionalities include:
//   - Price Cache: historical closing prices per ticker, fetched in bulk from
//     a remote PriceFetcher, with a short look-back for non trading days.
//   - Journal: the dated compositions (ticker to quantity), the latest one,
//     the deposit ledger and manual cost basis corrections.
//   - Ticker Ledger: one running cost-basis record per ticker, updated each
//     time a snapshot changes its quantity, with a flat fee per change.
//   - Engine: replays every calendar day from inception to today, values the
//     portfolio each day and drives the ticker ledger.
//   - Aggregates: cash invested, current value, profit and loss.
//
// This package serves as the foundational logic for the `hpt` command-line
// tool.
package hportfolio
