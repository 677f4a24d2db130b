// Package shader describes one shaderweaver run as plain values.
//
// A Spec is built once from the command line and never changes. Each target
// stage in it expands into a Job: the entry point, profile, output file and
// the exact argument list handed to the compiler.
//
// # Naming conventions
//
// The entry function of every stage is <stage>Main (vsMain, psMain, ...).
// The profile is <stage>_<model> (vs_6_0) and the output file is
// <stem>.<stage> (out.vs).
package shader
