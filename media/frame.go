// Package media defines the frame types that flow out of the Matroska
// demuxer and into the muxer, independent of the container layout.
package media

import (
	"image"
	"time"
)

// VideoFrame is a single decoded picture extracted from a video track. Data
// holds the elementary-stream payload exactly as stored in the block; Image
// is set when a frame decoder produced pixels.
type VideoFrame struct {
	PTS         time.Duration
	IsKeyframe  bool
	TrackNumber uint64
	Codec       string // Matroska codec ID, e.g. "V_MJPEG"
	Width       int
	Height      int
	Data        []byte
	Image       image.Image
}

// AudioFrame is one block of an audio track. The payload is not interpreted;
// SampleRate, Channels, and BitDepth are copied from the track settings.
type AudioFrame struct {
	PTS         time.Duration
	TrackNumber uint64
	Codec       string
	Data        []byte
	SampleRate  int
	Channels    int
	BitDepth    int
}
