// Package spot models a single scanned spot-test card and decodes the
// experiment metadata carried in its filename.
//
// # Filename Grammar
//
// Spot scans are named
//
//	dd<INT>_T<DIGIT><DIGIT>_<MMDDYYYY>.<ext>
//
// where the extension is exactly three characters. For example
// dd50_T12_06152023.tif decodes to a 50 µm nominal droplet diameter, trial 1,
// location 2, collected 2023-06-15.
//
// Decoding works on the location string only; nothing is read from disk.
// Any deviation from the grammar yields a *MetadataParseError and no Sample.
//
// # Units
//
// Droplet diameters and measured sizes are micrometres. The image scale is
// micrometres per pixel.
package spot
