// Package signature normalizes hand-drawn signatures before they are sent
// with a loan request. Whatever pen colour the pad used (light on dark mode),
// the stored image always has black strokes on a transparent background.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
)

const dataURLPrefix = "data:image/png;base64,"

var (
	ErrNotPNGDataURL  = errors.New("signature is not a png data url")
	ErrEmptySignature = errors.New("signature has no strokes")
)

// Stroke is the colour every drawn pixel ends up with
var Stroke = color.NRGBA{A: 0xff}

// Normalize recolours a PNG data URL so every visible pixel takes the
// Stroke colour, keeping its alpha.
func Normalize(dataURL string) (string, error) {
	img, err := Decode(dataURL)
	if err != nil {
		return "", err
	}

	out, err := Recolor(img)
	if err != nil {
		return "", err
	}

	return Encode(out)
}

// Decode parses a PNG data URL
func Decode(dataURL string) (image.Image, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return nil, ErrNotPNGDataURL
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataURLPrefix))
	if err != nil {
		return nil, ErrNotPNGDataURL
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrNotPNGDataURL
	}
	return img, nil
}

// Recolor returns a copy of img with visible pixels set to Stroke.
// An image with no visible pixel is rejected.
func Recolor(img image.Image) (*image.NRGBA, error) {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	drawn := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			drawn = true
			out.SetNRGBA(x, y, color.NRGBA{R: Stroke.R, G: Stroke.G, B: Stroke.B, A: c.A})
		}
	}

	if !drawn {
		return nil, ErrEmptySignature
	}
	return out, nil
}

// Encode renders img as a PNG data URL
func Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
