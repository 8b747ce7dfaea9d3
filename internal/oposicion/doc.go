// Package oposicion models the notary oposición call-up data and the
// calculations built on it: when an aspirant with a given draw number can
// expect to be called, per-tribunal progress statistics, and name lookup.
//
// A tribunal examines its aspirants in ascending draw ("sorteo") order,
// starting from the number drawn publicly and wrapping around after the
// highest number. Each exam session calls one or more contiguous ranges of
// draw numbers; the published history of sessions is the only input the
// estimates rely on.
package oposicion
