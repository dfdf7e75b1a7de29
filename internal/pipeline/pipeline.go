// Package pipeline publishes a demuxed Matroska document as MoQ subgroup
// streams: a catalog stream announcing the tracks, then for every video and
// audio track one stream per group, with tracks written concurrently.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/mkv/internal/moq"
	"github.com/zsiec/mkv/matroska"
	"github.com/zsiec/mkv/media"
)

// CatalogTrack is the track name the catalog is published under.
const CatalogTrack = "catalog"

// Publisher priorities; lower is more important.
const (
	catalogPriority byte = 192
	videoPriority   byte = 0
	audioPriority   byte = 64
)

// audioGroupFrames is the number of audio objects per group. Audio has no
// keyframes, so groups are cut by count to give late joiners entry points.
const audioGroupFrames = 50

// Publisher opens the byte stream carrying one subgroup. In a live session
// this is a QUIC unidirectional stream.
type Publisher interface {
	OpenStream(ctx context.Context, track string, groupID uint64) (io.WriteCloser, error)
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	VideoObjects int64
	AudioObjects int64
	Groups       int64
	Bytes        int64
}

// Pipeline bridges a decoded document and a Publisher.
type Pipeline struct {
	log       *slog.Logger
	namespace string
	res       *matroska.DecodeResult
	pub       Publisher

	videoObjects atomic.Int64
	audioObjects atomic.Int64
	groups       atomic.Int64
	bytes        atomic.Int64
}

// New creates a Pipeline publishing res under namespace. If log is nil,
// slog.Default() is used.
func New(namespace string, res *matroska.DecodeResult, pub Publisher, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		log:       log.With("component", "pipeline", "namespace", namespace),
		namespace: namespace,
		res:       res,
		pub:       pub,
	}
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		VideoObjects: p.videoObjects.Load(),
		AudioObjects: p.audioObjects.Load(),
		Groups:       p.groups.Load(),
		Bytes:        p.bytes.Load(),
	}
}

// Run publishes the catalog and then every track. It returns the first
// error from any track, after which the remaining tracks stop.
func (p *Pipeline) Run(ctx context.Context) error {
	catalog, err := moq.BuildCatalog(p.namespace, p.res.Info)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	if err := p.publishCatalog(ctx, catalog); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	var videos, audios int
	alias := uint64(1)
	for i := range p.res.Info.Tracks {
		t := &p.res.Info.Tracks[i]
		var name string
		switch t.Type {
		case matroska.TrackVideo:
			name = moq.TrackName(t, videos)
			videos++
		case matroska.TrackAudio:
			name = moq.TrackName(t, audios)
			audios++
		default:
			p.log.Debug("track not published", "track", t.Number, "type", t.Type)
			continue
		}
		tp := trackPublisher{p: p, track: t, name: name, alias: alias}
		alias++
		g.Go(func() error {
			return tp.run(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s := p.Stats()
	p.log.Info("published",
		"video_objects", s.VideoObjects,
		"audio_objects", s.AudioObjects,
		"groups", s.Groups,
		"bytes", s.Bytes)
	return nil
}

func (p *Pipeline) publishCatalog(ctx context.Context, catalog []byte) error {
	stream, err := p.pub.OpenStream(ctx, CatalogTrack, 0)
	if err != nil {
		return fmt.Errorf("open catalog stream: %w", err)
	}
	w := moq.NewWriter(0, catalogPriority)
	if err := w.WriteSubgroupHeader(stream, 0); err != nil {
		stream.Close()
		return fmt.Errorf("write catalog subgroup header: %w", err)
	}
	n, err := w.WriteObject(stream, catalog)
	if err != nil {
		stream.Close()
		return fmt.Errorf("write catalog object: %w", err)
	}
	p.bytes.Add(n)
	return stream.Close()
}

// trackPublisher writes the groups of one track.
type trackPublisher struct {
	p     *Pipeline
	track *matroska.Track
	name  string
	alias uint64

	w       *moq.Writer
	stream  io.WriteCloser
	groupID uint64
	inGroup int
}

func (tp *trackPublisher) run(ctx context.Context) (err error) {
	video := tp.track.Type == matroska.TrackVideo
	priority := audioPriority
	if video {
		priority = videoPriority
	}
	tp.w = moq.NewWriter(tp.alias, priority)
	if video {
		tp.w.SetVideoConfig(tp.track.CodecPrivate)
	}
	defer func() {
		if tp.stream != nil {
			if cerr := tp.stream.Close(); err == nil {
				err = cerr
			}
		}
	}()

	info := tp.p.res.Info
	for _, b := range tp.p.res.Blocks(tp.track.Number) {
		if err := ctx.Err(); err != nil {
			return err
		}
		startGroup := tp.stream == nil ||
			(video && b.Keyframe) ||
			(!video && tp.inGroup >= audioGroupFrames)
		if startGroup {
			if err := tp.nextGroup(ctx); err != nil {
				return err
			}
		}

		var n int64
		var err error
		if video {
			n, err = tp.w.WriteVideoFrame(tp.stream, &media.VideoFrame{
				PTS:         info.Time(b.Timestamp),
				IsKeyframe:  b.Keyframe,
				TrackNumber: b.TrackNumber,
				Codec:       tp.track.CodecID,
				Data:        b.Data,
			})
			tp.p.videoObjects.Add(1)
		} else {
			n, err = tp.w.WriteAudioFrame(tp.stream, &media.AudioFrame{
				PTS:         info.Time(b.Timestamp),
				TrackNumber: b.TrackNumber,
				Codec:       tp.track.CodecID,
				Data:        b.Data,
			})
			tp.p.audioObjects.Add(1)
		}
		if err != nil {
			return fmt.Errorf("track %s: write object: %w", tp.name, err)
		}
		tp.p.bytes.Add(n)
		tp.inGroup++
	}
	return nil
}

// nextGroup closes the current subgroup stream and opens the next one.
func (tp *trackPublisher) nextGroup(ctx context.Context) error {
	if tp.stream != nil {
		err := tp.stream.Close()
		tp.stream = nil
		if err != nil {
			return fmt.Errorf("track %s: close group %d: %w", tp.name, tp.groupID, err)
		}
		tp.groupID++
	}
	stream, err := tp.p.pub.OpenStream(ctx, tp.name, tp.groupID)
	if err != nil {
		return fmt.Errorf("track %s: open group %d: %w", tp.name, tp.groupID, err)
	}
	tp.stream = stream
	tp.inGroup = 0
	if err := tp.w.WriteSubgroupHeader(stream, tp.groupID); err != nil {
		return fmt.Errorf("track %s: write subgroup header: %w", tp.name, err)
	}
	tp.p.groups.Add(1)
	tp.p.log.Debug("group started", "track", tp.name, "group", tp.groupID)
	return nil
}
