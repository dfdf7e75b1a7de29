package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/zsiec/mkv/internal/moq"
	"github.com/zsiec/mkv/matroska"
)

type memStream struct {
	bytes.Buffer
	closed bool
}

func (s *memStream) Close() error {
	s.closed = true
	return nil
}

// memPublisher records every opened stream by track and group.
type memPublisher struct {
	mu      sync.Mutex
	streams map[string][]*memStream
	failOn  string
}

func newMemPublisher() *memPublisher {
	return &memPublisher{streams: make(map[string][]*memStream)}
}

func (m *memPublisher) OpenStream(_ context.Context, track string, groupID uint64) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if track == m.failOn {
		return nil, errors.New("refused")
	}
	if int(groupID) != len(m.streams[track]) {
		return nil, fmt.Errorf("track %s: group %d out of order", track, groupID)
	}
	s := &memStream{}
	m.streams[track] = append(m.streams[track], s)
	return s, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testDocument has 6 video frames with keyframes at 0 and 3, and 60 audio
// frames.
func testDocument(t *testing.T) *matroska.DecodeResult {
	t.Helper()
	tracks := []matroska.Track{
		{
			Type: matroska.TrackVideo, CodecID: matroska.CodecMJPEG, CodecPrivate: []byte{0x01},
			Video: &matroska.VideoSettings{PixelWidth: 16, PixelHeight: 16},
		},
		{
			Type: matroska.TrackAudio, CodecID: matroska.CodecPCMIntLE,
			Audio: &matroska.AudioSettings{SamplingFrequency: 48000, Channels: 2, BitDepth: 16},
		},
	}
	var frames []matroska.Frame
	for i := 0; i < 6; i++ {
		frames = append(frames, matroska.Frame{TrackNumber: 1, Data: []byte{byte(i)}, Keyframe: i == 3})
	}
	for i := 0; i < 60; i++ {
		frames = append(frames, matroska.Frame{TrackNumber: 2, Data: []byte{0xA0, byte(i)}})
	}
	data, err := matroska.Encode(tracks, frames, matroska.Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	res, err := matroska.NewDemuxer(matroska.DemuxerOptLogger(quietLogger())).Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func readObjects(t *testing.T, s *memStream) (moq.SubgroupHeader, []moq.Object) {
	t.Helper()
	if !s.closed {
		t.Error("stream was not closed")
	}
	r := bytes.NewReader(s.Bytes())
	h, err := moq.ReadSubgroupHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	var objs []moq.Object
	for {
		o, err := moq.ReadObject(r)
		if err == io.EOF {
			return h, objs
		}
		if err != nil {
			t.Fatal(err)
		}
		objs = append(objs, o)
	}
}

func TestRunPublishesTracks(t *testing.T) {
	t.Parallel()
	pub := newMemPublisher()
	p := New("mkv/test", testDocument(t), pub, quietLogger())

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	catalogs := pub.streams[CatalogTrack]
	if len(catalogs) != 1 {
		t.Fatalf("catalog streams = %d, want 1", len(catalogs))
	}
	_, objs := readObjects(t, catalogs[0])
	var cat moq.Catalog
	if err := json.Unmarshal(objs[0].Payload, &cat); err != nil {
		t.Fatal(err)
	}
	if cat.CommonTrackFields.Namespace != "mkv/test" || len(cat.Tracks) != 2 {
		t.Errorf("catalog = %+v", cat)
	}

	video := pub.streams["video"]
	if len(video) != 2 {
		t.Fatalf("video groups = %d, want 2", len(video))
	}
	for g, s := range video {
		h, objs := readObjects(t, s)
		if h.GroupID != uint64(g) || h.TrackAlias != 1 {
			t.Errorf("video group %d header = %+v", g, h)
		}
		if len(objs) != 3 {
			t.Fatalf("video group %d objects = %d, want 3", g, len(objs))
		}
		if !objs[0].Keyframe() || objs[1].Keyframe() {
			t.Errorf("video group %d keyframe marking wrong", g)
		}
		if !bytes.Equal(objs[0].VideoConfig, []byte{0x01}) {
			t.Errorf("video group %d config = %X", g, objs[0].VideoConfig)
		}
		if want := uint64(g*3) * 40_000; objs[0].CaptureTimestamp != want {
			t.Errorf("video group %d timestamp = %d, want %d", g, objs[0].CaptureTimestamp, want)
		}
	}

	audio := pub.streams["audio0"]
	if len(audio) != 2 {
		t.Fatalf("audio groups = %d, want 2", len(audio))
	}
	_, first := readObjects(t, audio[0])
	h, second := readObjects(t, audio[1])
	if len(first) != audioGroupFrames || len(second) != 10 {
		t.Errorf("audio objects = %d + %d, want %d + 10", len(first), len(second), audioGroupFrames)
	}
	if h.TrackAlias != 2 {
		t.Errorf("audio alias = %d, want 2", h.TrackAlias)
	}

	s := p.Stats()
	if s.VideoObjects != 6 || s.AudioObjects != 60 || s.Groups != 4 {
		t.Errorf("stats = %+v", s)
	}
	if s.Bytes == 0 {
		t.Error("no bytes counted")
	}
}

func TestRunOpenStreamError(t *testing.T) {
	t.Parallel()
	for _, track := range []string{CatalogTrack, "video", "audio0"} {
		pub := newMemPublisher()
		pub.failOn = track
		p := New("ns", testDocument(t), pub, quietLogger())
		if err := p.Run(context.Background()); err == nil {
			t.Errorf("failing %s: expected error", track)
		}
	}
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()
	pub := newMemPublisher()
	p := New("ns", testDocument(t), pub, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s := p.Stats(); s.VideoObjects != 0 || s.AudioObjects != 0 {
		t.Errorf("stats after cancel = %+v", s)
	}
}

func TestNewNilLogger(t *testing.T) {
	t.Parallel()
	p := New("ns", testDocument(t), newMemPublisher(), nil)
	if p.log == nil {
		t.Fatal("expected default logger")
	}
}
