package matroska

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/mkv/codec/mjpeg"
	"github.com/zsiec/mkv/codec/rawvideo"
	"github.com/zsiec/mkv/media"
)

// FrameDecoder turns one video block payload into a picture. width and
// height come from the track's PixelWidth and PixelHeight and are zero when
// the track does not declare them.
type FrameDecoder interface {
	DecodeFrame(data []byte, width, height int) (image.Image, error)
}

// FrameDecoderFunc adapts a function to FrameDecoder.
type FrameDecoderFunc func(data []byte, width, height int) (image.Image, error)

// DecodeFrame calls f.
func (f FrameDecoderFunc) DecodeFrame(data []byte, width, height int) (image.Image, error) {
	return f(data, width, height)
}

func defaultDecoders() map[string]FrameDecoder {
	return map[string]FrameDecoder{
		CodecMJPEG:        mjpeg.Decoder{},
		CodecUncompressed: rawvideo.Decoder{},
	}
}

// DecodeVideoFrames decodes buf and returns the pictures of its first video
// track in document order.
func (d *Demuxer) DecodeVideoFrames(ctx context.Context, buf []byte) ([]*media.VideoFrame, error) {
	res, err := d.Decode(buf)
	if err != nil {
		return nil, err
	}
	return d.VideoFrames(ctx, res)
}

// VideoFrames decodes the blocks of the first video track of res. Documents
// without a video track, or whose codec has no registered FrameDecoder,
// yield no frames and no error. Blocks the decoder rejects are skipped.
// Only context cancellation is returned as an error.
func (d *Demuxer) VideoFrames(ctx context.Context, res *DecodeResult) ([]*media.VideoFrame, error) {
	track := res.Info.VideoTrack()
	if track == nil {
		return nil, nil
	}
	dec, ok := d.decoders[track.CodecID]
	if !ok {
		d.log.Debug("no frame decoder for codec", "codec", track.CodecID, "track", track.Number)
		return nil, nil
	}
	var width, height int
	if track.Video != nil {
		width, height = int(track.Video.PixelWidth), int(track.Video.PixelHeight)
	}

	blocks := res.Blocks(track.Number)
	frames := make([]*media.VideoFrame, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, b := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := dec.DecodeFrame(b.Data, width, height)
			if err != nil {
				d.log.Warn("skipping undecodable frame",
					"track", track.Number, "timestamp", b.Timestamp, "error", err)
				return nil
			}
			bounds := img.Bounds()
			frames[i] = &media.VideoFrame{
				PTS:         res.Info.Time(b.Timestamp),
				IsKeyframe:  b.Keyframe,
				TrackNumber: track.Number,
				Codec:       track.CodecID,
				Width:       bounds.Dx(),
				Height:      bounds.Dy(),
				Data:        b.Data,
				Image:       img,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := frames[:0]
	for _, f := range frames {
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// DecodeVideoFrames decodes the first video track of buf with a default
// Demuxer.
func DecodeVideoFrames(ctx context.Context, buf []byte) ([]*media.VideoFrame, error) {
	return NewDemuxer().DecodeVideoFrames(ctx, buf)
}
