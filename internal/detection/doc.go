// Package detection traces and measures the residues in a binary edge map.
//
// # Contours
//
// ExternalContours returns the outer border of every connected region of
// edge pixels, skipping regions nested inside another region's hole. Each
// Contour is compressed to the points where the border changes direction,
// so straight runs keep only their end points.
//
// Contours come back in raster order of their first pixel: top to bottom,
// then left to right. Callers that report sizes rely on this order being
// stable for a given image.
//
// # Shape Measures
//
// A Contour knows its shoelace Area, its Perimeter, Centroid and Bounds.
// Describe gathers them into a Particle together with the circularity
// 4πA/P², which drops well below 1 for residues that overlap or smear.
//
// EquivalentDiameter converts an area into the diameter of the circle with
// the same area. It is the basis of every reported size.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Contours of a sub-image are in the coordinates of the parent image.
package detection
