// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence and transport details. Each one names a
// write boundary whose invariants hold atomically: disclosure state per
// (user, problem) and catalog structure with its dependent progress rows.
package aggregates
