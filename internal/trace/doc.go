// Package trace records what happened to each target of a run and writes it
// out as a small, stable JSON document for build logs and CI artifacts.
//
// The trace is observational only and never affects compilation.
package trace
