package matroska

import (
	"math"

	"github.com/zsiec/mkv/internal/ebml"
)

// Matroska defaults for Audio elements that omit these children.
const (
	defaultSamplingFrequency = 8000
	defaultChannels          = 1
)

var trackFields = fieldTable[Track]{
	ebml.IDTrackNumber: func(t *Track, f field) error {
		v, err := f.asUint()
		if err != nil {
			return err
		}
		if v == 0 {
			return ebml.ErrValueRange
		}
		t.Number = v
		return nil
	},
	ebml.IDTrackUID: func(t *Track, f field) (err error) {
		t.UID, err = f.asUint()
		return err
	},
	ebml.IDTrackType: func(t *Track, f field) error {
		v, err := f.asUint()
		if err != nil {
			return err
		}
		if v == 0 || v > math.MaxUint8 {
			return ebml.ErrValueRange
		}
		t.Type = TrackType(v)
		return nil
	},
	ebml.IDCodecID: func(t *Track, f field) error {
		t.CodecID = f.asString()
		return nil
	},
	ebml.IDCodecPrivate: func(t *Track, f field) error {
		t.CodecPrivate = f.copyBytes()
		return nil
	},
	ebml.IDName: func(t *Track, f field) error {
		t.Name = f.asString()
		return nil
	},
	ebml.IDLanguage: func(t *Track, f field) error {
		t.Language = f.asString()
		return nil
	},
	ebml.IDDefaultDuration: func(t *Track, f field) (err error) {
		t.DefaultDuration, err = f.asUint()
		return err
	},
	ebml.IDFlagDefault: func(t *Track, f field) error {
		v, err := f.asUint()
		if err != nil {
			return err
		}
		t.FlagDefault = v != 0
		return nil
	},
	ebml.IDVideo: func(t *Track, f field) error {
		v := &VideoSettings{}
		decodeNested(f, videoFields, v)
		t.Video = v
		return nil
	},
	ebml.IDAudio: func(t *Track, f field) error {
		a := &AudioSettings{
			SamplingFrequency: defaultSamplingFrequency,
			Channels:          defaultChannels,
		}
		decodeNested(f, audioFields, a)
		t.Audio = a
		return nil
	},
}

var videoFields = fieldTable[VideoSettings]{
	ebml.IDPixelWidth: func(v *VideoSettings, f field) (err error) {
		v.PixelWidth, err = f.asUint32()
		return err
	},
	ebml.IDPixelHeight: func(v *VideoSettings, f field) (err error) {
		v.PixelHeight, err = f.asUint32()
		return err
	},
	ebml.IDDisplayWidth: func(v *VideoSettings, f field) (err error) {
		v.DisplayWidth, err = f.asUint32()
		return err
	},
	ebml.IDDisplayHeight: func(v *VideoSettings, f field) (err error) {
		v.DisplayHeight, err = f.asUint32()
		return err
	},
}

var audioFields = fieldTable[AudioSettings]{
	ebml.IDSamplingFrequency: func(a *AudioSettings, f field) error {
		v, err := f.asFloat()
		if err != nil {
			return err
		}
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ebml.ErrValueRange
		}
		a.SamplingFrequency = v
		return nil
	},
	ebml.IDChannels: func(a *AudioSettings, f field) error {
		v, err := f.asUint32()
		if err != nil {
			return err
		}
		if v == 0 {
			return ebml.ErrValueRange
		}
		a.Channels = v
		return nil
	},
	ebml.IDBitDepth: func(a *AudioSettings, f field) (err error) {
		a.BitDepth, err = f.asUint32()
		return err
	},
}

// tracksState accumulates TrackEntry children of a Tracks element.
type tracksState struct {
	tracks []Track
	seen   map[uint64]bool
}

var tracksFields = fieldTable[tracksState]{
	ebml.IDTrackEntry: func(s *tracksState, f field) error {
		t := Track{FlagDefault: true, Language: "eng"}
		decodeNested(f, trackFields, &t)
		if t.Number == 0 || t.Type == 0 || t.CodecID == "" {
			f.log.Debug("dropping incomplete track entry",
				"number", t.Number, "type", uint8(t.Type), "codec", t.CodecID)
			return nil
		}
		if s.seen[t.Number] {
			f.log.Debug("dropping duplicate track number", "number", t.Number)
			return nil
		}
		s.seen[t.Number] = true
		s.tracks = append(s.tracks, t)
		return nil
	},
}
