package matroska

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zsiec/mkv/internal/ebml"
)

func TestEncodeKeyframes(t *testing.T) {
	t.Parallel()
	frames := make([]Frame, 5)
	for i := range frames {
		frames[i] = Frame{TrackNumber: 1, Data: []byte{byte(i)}, Keyframe: i == 3}
	}
	data, err := Encode([]Track{{Type: TrackVideo, CodecID: "V_TEST"}}, frames, Options{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	blocks := res.Blocks(1)
	if len(blocks) != 5 {
		t.Fatalf("blocks = %d, want 5", len(blocks))
	}
	want := []bool{true, false, false, true, false}
	for i, b := range blocks {
		if b.Keyframe != want[i] {
			t.Errorf("block %d keyframe = %v, want %v", i, b.Keyframe, want[i])
		}
		if b.RelativeTimestamp != 0 {
			t.Errorf("block %d relative timestamp = %d, want 0", i, b.RelativeTimestamp)
		}
	}
}

func TestEncodeTimestamps(t *testing.T) {
	t.Parallel()
	frames := []Frame{{TrackNumber: 1}, {TrackNumber: 1}, {TrackNumber: 1}}
	data, err := Encode([]Track{{Type: TrackVideo, CodecID: "V_TEST"}}, frames, Options{FrameRate: 30})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{0, 33, 67}
	for i, c := range res.Clusters {
		if c.Timestamp != want[i] {
			t.Errorf("cluster %d timestamp = %d, want %d", i, c.Timestamp, want[i])
		}
	}
	if d := res.Info.Tracks[0].DefaultDuration; d != 33_333_333 {
		t.Errorf("DefaultDuration = %d, want 33333333", d)
	}
}

func TestEncodeOptions(t *testing.T) {
	t.Parallel()
	uid := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	tracks := []Track{{
		Number:       5,
		UID:          77,
		Type:         TrackVideo,
		CodecID:      "V_TEST",
		CodecPrivate: []byte{0xCA, 0xFE},
		Language:     "und",
		Video:        &VideoSettings{PixelWidth: 4, PixelHeight: 3, DisplayWidth: 8, DisplayHeight: 6},
	}}
	opts := Options{
		DocType:        DocTypeMatroska,
		TimestampScale: 100_000,
		MuxingApp:      "muxer",
		WritingApp:     "writer",
		Title:          "title",
		SegmentUID:     uid,
	}
	data, err := Encode(tracks, []Frame{{TrackNumber: 5, Data: []byte{1}}}, opts)
	if err != nil {
		t.Fatal(err)
	}
	info, err := ParseInfo(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.DocType != DocTypeMatroska || info.TimestampScale != 100_000 {
		t.Errorf("DocType = %q, TimestampScale = %d", info.DocType, info.TimestampScale)
	}
	if info.MuxingApp != "muxer" || info.WritingApp != "writer" || info.Title != "title" {
		t.Errorf("apps/title = %q/%q/%q", info.MuxingApp, info.WritingApp, info.Title)
	}
	if !bytes.Equal(info.SegmentUID, uid) {
		t.Errorf("SegmentUID = %X", info.SegmentUID)
	}
	if info.Duration != 400 {
		t.Errorf("Duration = %v, want 400", info.Duration)
	}
	tr := info.Tracks[0]
	if tr.Number != 5 || tr.UID != 77 || tr.Language != "und" || !bytes.Equal(tr.CodecPrivate, []byte{0xCA, 0xFE}) {
		t.Errorf("track = %+v", tr)
	}
	if *tr.Video != *tracks[0].Video {
		t.Errorf("video = %+v, want %+v", *tr.Video, *tracks[0].Video)
	}
}

func TestEncodeUnknownSizeSegment(t *testing.T) {
	t.Parallel()
	frames := []Frame{{TrackNumber: 1, Data: []byte{1}}, {TrackNumber: 1, Data: []byte{2}}}
	data, err := Encode([]Track{{Type: TrackVideo, CodecID: "V_TEST"}}, frames, Options{UnknownSizeSegment: true})
	if err != nil {
		t.Fatal(err)
	}
	header, ok := ebml.ReadElement(data, 0)
	if !ok {
		t.Fatal("no header")
	}
	seg, ok := ebml.ReadElement(data, header.End(len(data)))
	if !ok || seg.ID != ebml.IDSegment {
		t.Fatalf("segment = %+v, %v", seg, ok)
	}
	if !seg.Unknown() {
		t.Errorf("segment size = %d, want unknown", seg.Size)
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Clusters) != 2 {
		t.Errorf("clusters = %d, want 2", len(res.Clusters))
	}
}

func TestEncodeState(t *testing.T) {
	t.Parallel()
	tracks := []Track{{Type: TrackVideo, CodecID: "V_TEST"}}
	frames := []Frame{{TrackNumber: 1, Data: []byte{1}}, {TrackNumber: 1, Data: []byte{2}}}
	state := NewEncoderState()

	if _, err := EncodeState(state, tracks, frames, Options{}); err != nil {
		t.Fatal(err)
	}
	data, err := EncodeState(state, tracks, frames, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if state.Sequence[1] != 4 {
		t.Errorf("sequence = %d, want 4", state.Sequence[1])
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	blocks := res.Blocks(1)
	if blocks[0].Timestamp != 80 || blocks[1].Timestamp != 120 {
		t.Errorf("timestamps = %d, %d, want 80, 120", blocks[0].Timestamp, blocks[1].Timestamp)
	}
	if blocks[0].Keyframe {
		t.Error("continued stream should not force a keyframe")
	}
}

func TestEncodeMultipleTracks(t *testing.T) {
	t.Parallel()
	tracks := []Track{
		{Type: TrackVideo, CodecID: "V_TEST"},
		{Type: TrackAudio, CodecID: CodecPCMIntLE, Audio: &AudioSettings{SamplingFrequency: 8000, Channels: 1}},
	}
	frames := []Frame{
		{TrackNumber: 1}, {TrackNumber: 2}, {TrackNumber: 1}, {TrackNumber: 2},
	}
	data, err := Encode(tracks, frames, Options{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []uint64{1, 2} {
		blocks := res.Blocks(n)
		if len(blocks) != 2 {
			t.Fatalf("track %d blocks = %d, want 2", n, len(blocks))
		}
		if !blocks[0].Keyframe || blocks[1].Keyframe {
			t.Errorf("track %d keyframes = %v, %v", n, blocks[0].Keyframe, blocks[1].Keyframe)
		}
		if blocks[1].Timestamp != 40 {
			t.Errorf("track %d second timestamp = %d, want 40", n, blocks[1].Timestamp)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()
	video := Track{Type: TrackVideo, CodecID: "V_TEST"}
	tests := []struct {
		name   string
		tracks []Track
		frames []Frame
		opts   Options
		want   error
	}{
		{"no frames", []Track{video}, nil, Options{}, ErrNoFrames},
		{"unknown track", []Track{video}, []Frame{{TrackNumber: 2}}, Options{}, ErrUnknownTrack},
		{"no tracks", nil, []Frame{{TrackNumber: 1}}, Options{}, ErrUnknownTrack},
		{"missing codec", []Track{{Type: TrackVideo}}, []Frame{{TrackNumber: 1}}, Options{}, ErrInvalidTrack},
		{"missing type", []Track{{CodecID: "V_TEST"}}, []Frame{{TrackNumber: 1}}, Options{}, ErrInvalidTrack},
		{"duplicate number", []Track{{Number: 2, Type: TrackVideo, CodecID: "V_TEST"}, video}, []Frame{{TrackNumber: 1}}, Options{}, ErrInvalidTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Encode(tt.tracks, tt.frames, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Encode([]Track{video}, []Frame{{TrackNumber: 1}}, Options{FrameRate: -1}); err == nil {
		t.Error("negative frame rate: expected error")
	}
}

func TestEncodeFixedWidthMasters(t *testing.T) {
	t.Parallel()
	data, err := Encode([]Track{{Type: TrackVideo, CodecID: "V_TEST"}}, []Frame{{TrackNumber: 1}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	header, _ := ebml.ReadElement(data, 0)
	if header.HeaderSize() != 8 {
		t.Errorf("EBML header field width = %d, want 4+4", header.HeaderSize())
	}
	seg, _ := ebml.ReadElement(data, header.End(len(data)))
	for _, c := range ebml.Children(data, seg) {
		if want := ebml.IDLen(c.ID) + 4; c.HeaderSize() != want {
			t.Errorf("%s header = %d bytes, want %d", ebml.Name(c.ID), c.HeaderSize(), want)
		}
	}
}
