package matroska

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/zsiec/mkv/internal/ebml"
)

const (
	blockFlagKeyframe = 0x80
	blockFlagLacing   = 0x06
	minBlockSize      = 4

	// maxClusterTimestamp keeps cluster + relative block timestamps within
	// int64.
	maxClusterTimestamp = math.MaxInt64 - math.MaxInt16
)

var (
	errShortBlock       = errors.New("matroska: block shorter than 4 bytes")
	errBlockTrackNumber = errors.New("matroska: malformed block track number")
)

// clusterState is the Cluster being assembled. The base timestamp is read
// before any block is dispatched.
type clusterState struct {
	cluster Cluster
}

var clusterFields = fieldTable[clusterState]{
	ebml.IDSimpleBlock: func(s *clusterState, f field) error {
		return s.addBlock(f, true)
	},
	ebml.IDBlockGroup: func(s *clusterState, f field) error {
		decodeNested(f, blockGroupFields, s)
		return nil
	},
}

var blockGroupFields = fieldTable[clusterState]{
	ebml.IDBlock: func(s *clusterState, f field) error {
		return s.addBlock(f, false)
	},
}

// parseCluster assembles one Cluster. Malformed blocks are skipped.
func (d *Demuxer) parseCluster(buf []byte, el ebml.Element) Cluster {
	s := &clusterState{}
	children := ebml.Children(buf, el)
	if ts, ok := ebml.Find(children, ebml.IDTimestamp); ok {
		if data, ok := ts.Data(buf); ok {
			v, err := ebml.Uint(data)
			if err == nil && v > maxClusterTimestamp {
				err = ebml.ErrValueRange
			}
			if err != nil {
				d.log.Debug("ignoring cluster timestamp", "error", ebml.NewParseError(ts, err))
			} else {
				s.cluster.Timestamp = v
			}
		}
	} else {
		d.log.Debug("cluster without timestamp", "offset", el.Offset)
	}
	decodeFields(d.log, buf, el, clusterFields, s)
	return s.cluster
}

func (s *clusterState) addBlock(f field, simple bool) error {
	b, flags, err := parseBlock(f.data, simple)
	if err != nil {
		return err
	}
	if flags&blockFlagLacing != 0 {
		f.log.Debug("laced block kept as a single frame", "track", b.TrackNumber)
	}
	b.Timestamp = int64(s.cluster.Timestamp) + int64(b.RelativeTimestamp)
	if b.Timestamp < 0 {
		f.log.Warn("block timestamp underflow",
			"track", b.TrackNumber,
			"cluster", s.cluster.Timestamp,
			"relative", b.RelativeTimestamp)
	}
	s.cluster.Blocks = append(s.cluster.Blocks, b)
	return nil
}

// parseBlock decodes a SimpleBlock or Block payload: track number varint,
// signed 16-bit relative timestamp, flags, frame bytes. The keyframe flag
// only has meaning for SimpleBlock. The frame bytes are copied.
func parseBlock(data []byte, simple bool) (Block, byte, error) {
	if len(data) < minBlockSize {
		return Block{}, 0, errShortBlock
	}
	track, n, ok := ebml.ReadSize(data, 0)
	if !ok || track == ebml.UnknownSize || track == 0 {
		return Block{}, 0, errBlockTrackNumber
	}
	if len(data) < n+3 {
		return Block{}, 0, errShortBlock
	}
	flags := data[n+2]
	payload := make([]byte, len(data)-n-3)
	copy(payload, data[n+3:])

	b := Block{
		TrackNumber:       track,
		RelativeTimestamp: int16(binary.BigEndian.Uint16(data[n : n+2])),
		Data:              payload,
	}
	if simple {
		b.Keyframe = flags&blockFlagKeyframe != 0
	}
	return b, flags, nil
}
