package matroska

import "github.com/zsiec/mkv/media"

// AudioFrames returns one frame per block of the first audio track. The
// payload is passed through untouched.
func AudioFrames(res *DecodeResult) []*media.AudioFrame {
	track := res.Info.AudioTrack()
	if track == nil {
		return nil
	}
	var rate, channels, depth int
	if a := track.Audio; a != nil {
		rate, channels, depth = int(a.SamplingFrequency), int(a.Channels), int(a.BitDepth)
	}
	blocks := res.Blocks(track.Number)
	out := make([]*media.AudioFrame, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, &media.AudioFrame{
			PTS:         res.Info.Time(b.Timestamp),
			TrackNumber: track.Number,
			Codec:       track.CodecID,
			Data:        b.Data,
			SampleRate:  rate,
			Channels:    channels,
			BitDepth:    depth,
		})
	}
	return out
}
