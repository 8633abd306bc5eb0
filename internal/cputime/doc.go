// Package cputime reads the CPU time consumed by the calling OS thread.
//
// Callers that want per-phase CPU accounting should pin their goroutine with
// runtime.LockOSThread for the duration of the measurement.
package cputime
