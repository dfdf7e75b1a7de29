package moq

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zsiec/mkv/matroska"
)

// Catalog is the top-level catalog structure per
// draft-ietf-moq-catalogformat-01.
type Catalog struct {
	Version                int          `json:"version"`
	StreamingFormat        int          `json:"streamingFormat"`
	StreamingFormatVersion string       `json:"streamingFormatVersion"`
	CommonTrackFields      CommonFields `json:"commonTrackFields"`
	Tracks                 []Track      `json:"tracks"`
}

// CommonFields holds fields shared by all tracks in the catalog.
type CommonFields struct {
	Namespace string `json:"namespace"`
	Packaging string `json:"packaging"`
}

// Track describes a single track in the catalog.
type Track struct {
	Name            string          `json:"name"`
	SelectionParams SelectionParams `json:"selectionParams"`
}

// SelectionParams holds codec and media parameters for track selection.
type SelectionParams struct {
	Codec         string `json:"codec"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Framerate     int    `json:"framerate,omitempty"`
	InitData      string `json:"initData,omitempty"`
	SampleRate    int    `json:"samplerate,omitempty"`
	ChannelConfig string `json:"channelConfig,omitempty"`
	Lang          string `json:"lang,omitempty"`
}

// TrackName returns the catalog name of a Matroska track: "video", "video1"
// and so on for video tracks, "audio0", "audio1" for audio tracks. index is
// the position of the track among tracks of its type.
func TrackName(t *matroska.Track, index int) string {
	switch t.Type {
	case matroska.TrackVideo:
		if index == 0 {
			return "video"
		}
		return fmt.Sprintf("video%d", index)
	case matroska.TrackAudio:
		return fmt.Sprintf("audio%d", index)
	}
	return fmt.Sprintf("track%d", t.Number)
}

// BuildCatalog assembles the catalog JSON announcing the video and audio
// tracks of info under namespace.
func BuildCatalog(namespace string, info *matroska.DocInfo) ([]byte, error) {
	cat := Catalog{
		Version:                1,
		StreamingFormat:        1,
		StreamingFormatVersion: "0.2",
		CommonTrackFields: CommonFields{
			Namespace: namespace,
			Packaging: "loc",
		},
	}

	var videos, audios int
	for i := range info.Tracks {
		t := &info.Tracks[i]
		params := SelectionParams{Codec: t.CodecID, Lang: t.Language}
		if len(t.CodecPrivate) > 0 {
			params.InitData = base64.StdEncoding.EncodeToString(t.CodecPrivate)
		}

		var name string
		switch t.Type {
		case matroska.TrackVideo:
			name = TrackName(t, videos)
			videos++
			if t.Video != nil {
				params.Width = int(t.Video.PixelWidth)
				params.Height = int(t.Video.PixelHeight)
			}
			if t.DefaultDuration > 0 {
				params.Framerate = int((1_000_000_000 + t.DefaultDuration/2) / t.DefaultDuration)
			}
		case matroska.TrackAudio:
			name = TrackName(t, audios)
			audios++
			if t.Audio != nil {
				params.SampleRate = int(t.Audio.SamplingFrequency)
				params.ChannelConfig = strconv.Itoa(int(t.Audio.Channels))
			}
		default:
			continue
		}
		cat.Tracks = append(cat.Tracks, Track{Name: name, SelectionParams: params})
	}

	return json.Marshal(cat)
}
