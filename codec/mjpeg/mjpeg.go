// Package mjpeg decodes and encodes the pictures carried in V_MJPEG tracks.
// Each block holds one complete baseline JPEG image.
package mjpeg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

// DefaultQuality is the JPEG quality Encode uses when given 0.
const DefaultQuality = 90

var errEmpty = errors.New("mjpeg: empty frame")

// Decoder decodes V_MJPEG block payloads. The zero value is ready to use.
type Decoder struct{}

// DecodeFrame decodes one JPEG picture. The dimensions declared by the track
// are not required; when both are set they must match the picture.
func (Decoder) DecodeFrame(data []byte, width, height int) (image.Image, error) {
	if len(data) == 0 {
		return nil, errEmpty
	}
	if width > 0 && height > 0 {
		w, h, err := Size(data)
		if err != nil {
			return nil, err
		}
		if w != width || h != height {
			return nil, fmt.Errorf("mjpeg: picture is %dx%d, track declares %dx%d", w, h, width, height)
		}
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mjpeg: decode: %w", err)
	}
	return img, nil
}

// Encode compresses img as a baseline JPEG. quality 0 selects
// DefaultQuality.
func Encode(img image.Image, quality int) ([]byte, error) {
	if quality == 0 {
		quality = DefaultQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("mjpeg: quality %d out of range 1-100", quality)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("mjpeg: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Size returns the dimensions of a JPEG picture without decoding its pixels.
func Size(data []byte) (width, height int, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("mjpeg: decode config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
