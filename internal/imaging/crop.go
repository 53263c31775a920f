package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangular area of a scan. (X1, Y1) is inclusive and
// (X2, Y2) exclusive. The zero Region means the whole image.
type Region struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// IsZero reports whether r selects the whole image.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Validate checks that r is non-empty. Containment is checked by Crop,
// which knows the image.
func (r Region) Validate() error {
	if r.IsZero() {
		return nil
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region (%d,%d)-(%d,%d): x1 must be < x2, y1 must be < y2",
			r.X1, r.Y1, r.X2, r.Y2)
	}
	return nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the part of img inside r in img's coordinate system, so
// positions found in the crop are positions in img. The zero Region
// returns img unchanged.
func Crop(img image.Image, r Region) (image.Image, error) {
	if r.IsZero() {
		return img, nil
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rect := r.Rect()
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	if si, ok := img.(subImager); ok {
		return si.SubImage(rect), nil
	}

	// imaging.Crop copies into an NRGBA at the origin; shift it back.
	cropped := imaging.Crop(img, rect)
	cropped.Rect = cropped.Rect.Add(rect.Min)
	return cropped, nil
}

// CropGray is Crop for single-channel scans.
func CropGray(gray *image.Gray, r Region) (*image.Gray, error) {
	img, err := Crop(gray, r)
	if err != nil {
		return nil, err
	}
	return img.(*image.Gray), nil
}
