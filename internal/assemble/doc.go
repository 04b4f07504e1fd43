// Package assemble turns rendered frames into format-specific encoding plans.
//
// It reorders frames into strict timestamp order (render completion order is
// not trusted), classifies the series cadence as uniform or irregular, and
// normalizes time gaps: gifs get per-frame delays proportional to each gap,
// mp4s get a constant frame rate with nearest-frame resampling. Both are
// scaled to the configured target duration so missing samples never change
// apparent motion speed.
package assemble
