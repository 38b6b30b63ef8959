// Package rbh resolves reciprocal best hits between two directed hit indices.
//
// For every query a of the A->B index it takes a's best hit b, looks up b in
// the B->A index and asks the Policy whether b's ranked hits lead back to a.
// Accepted pairs that pass the e-value cutoff are collected in a PairSet keyed
// by the unordered accession pair.
//
// The package is domain-only: it never reads files, prints or logs.
package rbh
