// Package colormap turns scalar grid values into pixel colors through a
// fixed, run-global Scale.
//
// The Scale is derived once, either from the observed global range of a
// series or from an explicit configured range, and is then threaded through
// every rendering call. Nothing here recomputes per frame; cross-frame color
// stability is the point.
package colormap
