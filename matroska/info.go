package matroska

import (
	"math"

	"github.com/zsiec/mkv/internal/ebml"
)

var headerFields = fieldTable[DocInfo]{
	ebml.IDEBMLVersion: func(d *DocInfo, f field) (err error) {
		d.EBMLVersion, err = f.asUint32()
		return err
	},
	ebml.IDDocType: func(d *DocInfo, f field) error {
		d.DocType = f.asString()
		return nil
	},
	ebml.IDDocTypeVersion: func(d *DocInfo, f field) (err error) {
		d.DocTypeVersion, err = f.asUint32()
		return err
	},
	ebml.IDDocTypeReadVersion: func(d *DocInfo, f field) (err error) {
		d.DocTypeReadVersion, err = f.asUint32()
		return err
	},
}

var infoFields = fieldTable[DocInfo]{
	ebml.IDTimestampScale: func(d *DocInfo, f field) error {
		v, err := f.asUint()
		if err != nil {
			return err
		}
		if v == 0 || v > math.MaxInt64 {
			return ebml.ErrValueRange
		}
		d.TimestampScale = v
		return nil
	},
	ebml.IDDuration: func(d *DocInfo, f field) error {
		v, err := f.asFloat()
		if err != nil {
			return err
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ebml.ErrValueRange
		}
		d.Duration = v
		return nil
	},
	ebml.IDMuxingApp: func(d *DocInfo, f field) error {
		d.MuxingApp = f.asString()
		return nil
	},
	ebml.IDWritingApp: func(d *DocInfo, f field) error {
		d.WritingApp = f.asString()
		return nil
	},
	ebml.IDTitle: func(d *DocInfo, f field) error {
		d.Title = f.asString()
		return nil
	},
	ebml.IDSegmentUID: func(d *DocInfo, f field) error {
		d.SegmentUID = f.copyBytes()
		return nil
	},
}

// deriveStreams fills the denormalized video/audio summary fields.
func deriveStreams(d *DocInfo) {
	if v := d.VideoTrack(); v != nil {
		d.HasVideo = true
		if v.Video != nil {
			d.Width = v.Video.PixelWidth
			d.Height = v.Video.PixelHeight
		}
	}
	if d.AudioTrack() != nil {
		d.HasAudio = true
	}
}
