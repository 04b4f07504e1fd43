// Package dataset loads observation files into validated series. A YAML
// manifest names the source and points at either a CSV of timestamp,value
// pairs or a JSON file of rasterized grids. Scalar CSV data is gap-filled by
// linear interpolation before validation; gridded data is passed through
// with nulls kept as missing cells.
package dataset
