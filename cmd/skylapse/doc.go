// Command skylapse turns gridded weather observations into animated clips.
// It loads a dataset manifest, renders one frame per timestamp onto square
// and vertical canvases, and encodes looping GIFs and mp4 videos with a
// color scale held fixed across the whole period.
package main
