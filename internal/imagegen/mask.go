package imagegen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// ClothingMask builds the inpaint mask for an uploaded dog photo: a
// black canvas matching the input dimensions with a white ellipse over
// the typical torso area (60% of the width, 40% of the height, starting
// 30% down). White pixels mark the region the vendor may repaint.
//
// When the input does not decode, a fixed 512x512 canvas with a
// rectangular editable region is returned instead so generation can
// still be attempted.
func ClothingMask(img []byte) []byte {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return fallbackMask()
	}

	w, h := cfg.Width, cfg.Height
	mask := image.NewGray(image.Rect(0, 0, w, h))

	// Ellipse covering the center-lower torso region.
	rx := float64(w) * 0.6 / 2
	ry := float64(h) * 0.4 / 2
	cx := float64(w) / 2
	cy := float64(h)*0.3 + ry

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1 {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, mask); err != nil {
		return fallbackMask()
	}
	return buf.Bytes()
}

func fallbackMask() []byte {
	mask := image.NewGray(image.Rect(0, 0, 512, 512))
	for y := 200; y < 400; y++ {
		for x := 128; x < 384; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, mask)
	return buf.Bytes()
}
