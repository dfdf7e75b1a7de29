// Package rawvideo interprets V_UNCOMPRESSED block payloads. The pixel layout
// is inferred from the payload length and the track's pixel dimensions.
package rawvideo

import (
	"errors"
	"fmt"
	"image"
)

// Layout is a packed pixel layout.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutGray           // 8-bit luma
	LayoutI420           // planar Y, U, V with 2x2 chroma subsampling
	LayoutRGB24          // packed R, G, B
	LayoutRGBA           // packed R, G, B, A
)

func (l Layout) String() string {
	switch l {
	case LayoutGray:
		return "gray"
	case LayoutI420:
		return "i420"
	case LayoutRGB24:
		return "rgb24"
	case LayoutRGBA:
		return "rgba"
	}
	return "unknown"
}

var ErrNoDimensions = errors.New("rawvideo: track declares no pixel dimensions")

// LayoutFor returns the layout whose frame size at width x height equals n.
func LayoutFor(n, width, height int) Layout {
	if width <= 0 || height <= 0 || width > n || height > n {
		return LayoutUnknown
	}
	px := width * height
	cw, ch := (width+1)/2, (height+1)/2
	switch n {
	case px * 4:
		return LayoutRGBA
	case px * 3:
		return LayoutRGB24
	case px + 2*cw*ch:
		return LayoutI420
	case px:
		return LayoutGray
	}
	return LayoutUnknown
}

// Decoder decodes V_UNCOMPRESSED block payloads. The zero value is ready to
// use.
type Decoder struct{}

// DecodeFrame copies data into a new image of the matching layout.
func (Decoder) DecodeFrame(data []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoDimensions
	}
	rect := image.Rect(0, 0, width, height)
	switch LayoutFor(len(data), width, height) {
	case LayoutRGBA:
		img := image.NewRGBA(rect)
		copy(img.Pix, data)
		return img, nil
	case LayoutRGB24:
		img := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(data); i, j = i+3, j+4 {
			img.Pix[j] = data[i]
			img.Pix[j+1] = data[i+1]
			img.Pix[j+2] = data[i+2]
			img.Pix[j+3] = 0xFF
		}
		return img, nil
	case LayoutI420:
		img := image.NewYCbCr(rect, image.YCbCrSubsampleRatio420)
		n := copy(img.Y, data)
		n += copy(img.Cb, data[n:])
		copy(img.Cr, data[n:])
		return img, nil
	case LayoutGray:
		img := image.NewGray(rect)
		copy(img.Pix, data)
		return img, nil
	}
	return nil, fmt.Errorf("rawvideo: %d bytes match no layout at %dx%d", len(data), width, height)
}

// Encode packs img as RGBA, the layout DecodeFrame prefers.
func Encode(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
		}
	}
	return out
}
