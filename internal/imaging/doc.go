// Package imaging provides the image primitives used to size spot-test
// scans: decoding and caching, grayscale conversion, binary thresholding,
// inversion, region cropping, Canny edge detection and contour overlays.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Operations on *image.Gray keep the bounds of their input, so sub-images
// produce results in the same absolute coordinates.
//
// # Thread Safety
//
// The Loader type is safe for concurrent use. Individual image operations
// are stateless and allocate their output, so they can be called
// concurrently on different images.
//
// # Intensity Units
//
// Thresholds and Canny hysteresis limits are expressed on the 0-255 scale
// of 8-bit gray values. Canny gradient magnitudes are Scharr responses on
// that scale and are never normalised to 0-1.
//
// # Error Handling
//
// Functions return errors for:
//   - File or object-store I/O errors during image loading
//   - Undecodable image data
//   - Crop regions that are empty or outside the image
//   - Invalid overlay colours
//   - Encoding errors during image output
package imaging
