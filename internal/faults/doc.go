// Package faults defines the error taxonomy shared across the rendering
// pipeline.
//
// Each sentinel marks a class of failure with a distinct blast radius:
// validation and frame-count errors abort the whole run before rendering,
// while composition and encoding errors abort only the affected output
// variant. Wrap tags errors with a sentinel so the orchestrator can classify
// them with errors.Is without inspecting message text.
package faults
