// Package series holds the validated in-memory representation of one weather
// variable sampled over a spatial grid and an ordered sequence of timestamps.
//
// A Series is immutable once constructed: every grid shares one shape,
// timestamps strictly increase, and missing observations are NaN cells.
// Construction is the single validation gate for the pipeline; anything that
// passes New is safe to render without further shape checks.
package series
