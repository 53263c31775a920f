package imaging

import (
	"fmt"
	"image"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/spotsize/internal/detection"
)

// DefaultContourColor is used when DrawContours gets an empty colour.
const DefaultContourColor = "#FF0000"

// DrawContours strokes each contour as a closed polygon over a copy of img
// and labels it with its 1-based index. The line width grows with the
// image so outlines survive downscaling to the display envelope.
func DrawContours(img image.Image, contours []detection.Contour, hexColor string) (image.Image, error) {
	if hexColor == "" {
		hexColor = DefaultContourColor
	}
	c, err := colorful.Hex(hexColor)
	if err != nil {
		return nil, fmt.Errorf("invalid contour color %q: %w", hexColor, err)
	}

	bounds := img.Bounds()
	dc := gg.NewContextForImage(img)
	dc.SetColor(c)

	lineWidth := float64(bounds.Dx()) / 600
	if lineWidth < 1 {
		lineWidth = 1
	}
	dc.SetLineWidth(lineWidth)

	for i, contour := range contours {
		if len(contour) == 0 {
			continue
		}
		// gg draws in image-local coordinates with pixel centres at +0.5.
		origin := bounds.Min
		if len(contour) == 1 {
			p := contour[0].Sub(origin)
			dc.DrawPoint(float64(p.X)+0.5, float64(p.Y)+0.5, lineWidth)
			dc.Fill()
		} else {
			for j, pt := range contour {
				p := pt.Sub(origin)
				if j == 0 {
					dc.MoveTo(float64(p.X)+0.5, float64(p.Y)+0.5)
				} else {
					dc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
				}
			}
			dc.ClosePath()
			dc.Stroke()
		}

		box := contour.Bounds().Sub(origin)
		dc.DrawString(strconv.Itoa(i+1), float64(box.Max.X)+2, float64(box.Min.Y))
	}

	return dc.Image(), nil
}
