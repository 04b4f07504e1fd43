// Package pipeline orchestrates a full animation run: one color scale per
// series, one rendered frame sequence per aspect ratio, one encode per
// requested (aspect, format) variant. Variant failures are isolated so a
// broken encoder or an unfittable canvas never sinks the rest of the run.
package pipeline
