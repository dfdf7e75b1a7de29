package matroska

import (
	"bytes"
	"testing"

	ebmlgo "github.com/at-wat/ebml-go"
)

// Element names below follow the ebml-go element table.

type interopHeader struct {
	EBMLVersion            uint64
	EBMLReadVersion        uint64
	EBMLMaxIDLength        uint64
	EBMLMaxSizeLength      uint64
	EBMLDocType            string
	EBMLDocTypeVersion     uint64
	EBMLDocTypeReadVersion uint64
}

type interopVideo struct {
	PixelWidth  uint64
	PixelHeight uint64
}

type interopTrackEntry struct {
	TrackNumber uint64
	TrackUID    uint64
	TrackType   uint64
	CodecID     string
	Video       interopVideo
}

type interopInfo struct {
	TimecodeScale uint64
	MuxingApp     string
	WritingApp    string
}

type interopCluster struct {
	Timecode    uint64
	SimpleBlock []ebmlgo.Block
}

type interopSegment struct {
	Info    interopInfo
	Tracks  struct{ TrackEntry []interopTrackEntry }
	Cluster []interopCluster
}

type interopDoc struct {
	Header  interopHeader  `ebml:"EBML"`
	Segment interopSegment `ebml:"Segment"`
}

func TestInteropEncodedReadable(t *testing.T) {
	t.Parallel()
	data, payloads := encodeMJPEG(t, DocTypeWebM, 3, 32, 16)

	var doc interopDoc
	if err := ebmlgo.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		t.Fatalf("ebml-go Unmarshal: %v", err)
	}
	if doc.Header.EBMLDocType != DocTypeWebM || doc.Header.EBMLMaxSizeLength != 8 {
		t.Errorf("header = %+v", doc.Header)
	}
	if doc.Segment.Info.TimecodeScale != DefaultTimestampScale || doc.Segment.Info.MuxingApp != "mkv" {
		t.Errorf("info = %+v", doc.Segment.Info)
	}
	entries := doc.Segment.Tracks.TrackEntry
	if len(entries) != 1 || entries[0].CodecID != CodecMJPEG || entries[0].Video.PixelWidth != 32 {
		t.Fatalf("tracks = %+v", entries)
	}
	if len(doc.Segment.Cluster) != 3 {
		t.Fatalf("clusters = %d, want 3", len(doc.Segment.Cluster))
	}
	for i, c := range doc.Segment.Cluster {
		if c.Timecode != uint64(i*40) {
			t.Errorf("cluster %d timecode = %d", i, c.Timecode)
		}
		if len(c.SimpleBlock) != 1 {
			t.Fatalf("cluster %d blocks = %d", i, len(c.SimpleBlock))
		}
		b := c.SimpleBlock[0]
		if b.TrackNumber != 1 || b.Keyframe != (i == 0) {
			t.Errorf("cluster %d block = track %d keyframe %v", i, b.TrackNumber, b.Keyframe)
		}
		if len(b.Data) != 1 || !bytes.Equal(b.Data[0], payloads[i]) {
			t.Errorf("cluster %d payload differs", i)
		}
	}
}

func TestInteropDecodeForeignDocument(t *testing.T) {
	t.Parallel()
	doc := interopDoc{
		Header: interopHeader{
			EBMLVersion:            1,
			EBMLReadVersion:        1,
			EBMLMaxIDLength:        4,
			EBMLMaxSizeLength:      8,
			EBMLDocType:            DocTypeWebM,
			EBMLDocTypeVersion:     2,
			EBMLDocTypeReadVersion: 2,
		},
		Segment: interopSegment{
			Info: interopInfo{TimecodeScale: 1_000_000, MuxingApp: "ebml-go", WritingApp: "test"},
			Tracks: struct{ TrackEntry []interopTrackEntry }{
				TrackEntry: []interopTrackEntry{{
					TrackNumber: 1, TrackUID: 9, TrackType: 1, CodecID: "V_TEST",
					Video: interopVideo{PixelWidth: 320, PixelHeight: 240},
				}},
			},
			Cluster: []interopCluster{
				{Timecode: 0, SimpleBlock: []ebmlgo.Block{
					{TrackNumber: 1, Timecode: 0, Keyframe: true, Data: [][]byte{{1, 2, 3}}},
					{TrackNumber: 1, Timecode: 33, Data: [][]byte{{4, 5}}},
				}},
				{Timecode: 1000, SimpleBlock: []ebmlgo.Block{
					{TrackNumber: 1, Timecode: -10, Data: [][]byte{{6}}},
				}},
			},
		},
	}
	var buf bytes.Buffer
	if err := ebmlgo.Marshal(&doc, &buf); err != nil {
		t.Fatalf("ebml-go Marshal: %v", err)
	}

	res, err := DecodeWebM(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if res.Info.MuxingApp != "ebml-go" || res.Info.Width != 320 || res.Info.Height != 240 {
		t.Errorf("info = %+v", res.Info)
	}
	if tr := res.Info.Tracks[0]; tr.UID != 9 {
		t.Errorf("TrackUID = %d, want 9", tr.UID)
	}
	blocks := res.Blocks(1)
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	want := []struct {
		ts   int64
		key  bool
		data []byte
	}{
		{0, true, []byte{1, 2, 3}},
		{33, false, []byte{4, 5}},
		{990, false, []byte{6}},
	}
	for i, w := range want {
		b := blocks[i]
		if b.Timestamp != w.ts || b.Keyframe != w.key || !bytes.Equal(b.Data, w.data) {
			t.Errorf("block %d = %+v, want %+v", i, b, w)
		}
	}
}
