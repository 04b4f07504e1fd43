// Package encode writes ordered frame sequences into container formats.
//
// The gif encoder quantizes every frame against one shared palette derived
// across the whole animation and emits per-frame delays from the encoding
// plan. The mp4 encoder pipes raw RGBA frames to an ffmpeg subprocess at the
// plan's constant frame rate with a fixed codec profile. Failures are tagged
// faults.ErrEncoding so the orchestrator can isolate them to one variant.
package encode
