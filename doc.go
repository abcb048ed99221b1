// Package stepwise selects linear-regression models for ensemble studies by
// forward stepwise search on adjusted R².
//
// Given one numeric row per realization, a response column and a set of
// candidate predictors, the selector greedily adds the term that most
// improves adjusted R² and stops at the first round that does not improve,
// when the term limit is reached, or when too few residual degrees of
// freedom remain. Predictors can first be expanded with multiplicative
// interaction terms ("A*B", "A*B*C", ...).
//
// # Installation
//
//	go get github.com/YuminosukeSato/stepwise
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/stepwise/core/dataset"
//	    "github.com/YuminosukeSato/stepwise/stepwise"
//	)
//
//	func main() {
//	    ds := dataset.MustNew(
//	        dataset.Column{Name: "FWL", Values: []float64{1700, 1710, 1690, 1705, 1695, 1720}},
//	        dataset.Column{Name: "KH", Values: []float64{0.8, 1.2, 1.0, 0.9, 1.1, 1.0}},
//	        dataset.Column{Name: "STOIIP", Values: []float64{10.2, 11.1, 9.3, 10.4, 9.9, 12.0}},
//	    )
//
//	    // at most 2 terms, interactions up to degree 2
//	    model, err := stepwise.GenModel(ds, "STOIIP", nil, 2, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(model.Terms, model.Coefficients, model.PValues)
//	}
//
// # Packages
//
//   - stepwise: forward selection, FittedModel, result cache
//   - interaction: interaction column generation
//   - linear: OLS with coefficient inference (standard errors, t and p values)
//   - metrics: R², adjusted R² and sums of squares
//   - ingest: CSV loading, response filters, per-realization aggregation
//   - report: coefficient table, JSON and charts
//   - core/dataset: immutable named-column table
//   - core/model: estimator interfaces and fitted-state tracking
//   - core/parallel: row-range parallelism for large tables
//   - pkg/errors, pkg/log: error taxonomy, warnings and structured logging
//
// The stepwise command (cmd/stepwise) wires these together for CSV exports.
//
// # Performance
//
// Design matrices and interaction products are filled in parallel for tables
// with more than 1000 rows. Every round refits one trial model per remaining
// candidate, so a search costs O(rounds × candidates × n × p²).
package stepwise
