package matroska

import (
	"image"
	"image/color"
	"testing"

	"github.com/zsiec/mkv/codec/mjpeg"
	"github.com/zsiec/mkv/internal/ebml"
)

// quiet is a Demuxer that drops log output, for inputs that are malformed
// on purpose.
func quiet(opts ...func(*Demuxer)) *Demuxer {
	return NewDemuxer(append([]func(*Demuxer){DemuxerOptLogger(discardLogger)}, opts...)...)
}

func jpegFrame(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	data, err := mjpeg.Encode(img, 80)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func mjpegTrack(w, h uint32) Track {
	return Track{
		Type:    TrackVideo,
		CodecID: CodecMJPEG,
		Video:   &VideoSettings{PixelWidth: w, PixelHeight: h},
	}
}

// encodeMJPEG muxes n MJPEG frames of size w x h into a document.
func encodeMJPEG(t *testing.T, docType string, n, w, h int) ([]byte, [][]byte) {
	t.Helper()
	var payloads [][]byte
	var frames []Frame
	for i := 0; i < n; i++ {
		p := jpegFrame(t, w, h, uint8(i*40))
		payloads = append(payloads, p)
		frames = append(frames, Frame{TrackNumber: 1, Data: p})
	}
	data, err := Encode([]Track{mjpegTrack(uint32(w), uint32(h))}, frames, Options{DocType: docType})
	if err != nil {
		t.Fatal(err)
	}
	return data, payloads
}

// handBuilt writes a document with a custom Segment body.
func handBuilt(t *testing.T, docType string, segment func(w *ebml.Writer)) []byte {
	t.Helper()
	w := ebml.NewWriter()
	w.Master(ebml.IDEBML, func(w *ebml.Writer) {
		w.String(ebml.IDDocType, docType)
	})
	w.Master(ebml.IDSegment, segment)
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func simpleTrackEntry(w *ebml.Writer, number uint64, typ TrackType, codec string) {
	w.Master(ebml.IDTrackEntry, func(w *ebml.Writer) {
		w.Uint(ebml.IDTrackNumber, number)
		w.Uint(ebml.IDTrackType, uint64(typ))
		w.String(ebml.IDCodecID, codec)
	})
}
