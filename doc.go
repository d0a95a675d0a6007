// Package assetbook provides the functions and types for tracking a small
// personal portfolio and publishing a daily dashboard payload from it. It is
// designed to be local-first and auditable: a single human-readable workbook
// file is the only source of truth, and every published artifact can be
// rebuilt from it.
//
// The core functionalities include:
//   - Workbook Management: Holding the current positions and the daily
//     snapshot history (cash, gold and stock aggregates with a NAV index)
//     in a JSONL file that is safe to hand-edit and keep under version
//     control.
//   - Market Data Collection: Fetching current prices and recent headlines
//     per held symbol with per-symbol failure isolation, so one bad lookup
//     never aborts a run.
//   - Reconciliation: Valuing every position, aggregating the three buckets
//     into the day's snapshot, filling calendar gaps and keeping re-runs of
//     the same day idempotent.
//   - News Ranking: Scoring collected headlines against the portfolio
//     weights deterministically and truncating them to fixed shortlists.
//   - Advisor Briefing: Producing a narrative briefing through a language
//     model when one is configured, guarded by a validator that falls back
//     to a deterministic rule-based briefing so the published schema never
//     changes shape.
//   - Publishing: Assembling and atomically writing the dashboard payload
//     with a stable field order.
//
// This package serves as the foundational logic for the `abk` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package assetbook
