package ebml

import "fmt"

// Element IDs, stored with their length marker bits as they appear on the wire.
const (
	IDEBML               uint32 = 0x1A45DFA3
	IDEBMLVersion        uint32 = 0x4286
	IDEBMLReadVersion    uint32 = 0x42F7
	IDEBMLMaxIDLength    uint32 = 0x42F2
	IDEBMLMaxSizeLength  uint32 = 0x42F3
	IDDocType            uint32 = 0x4282
	IDDocTypeVersion     uint32 = 0x4287
	IDDocTypeReadVersion uint32 = 0x4285
	IDVoid               uint32 = 0xEC

	IDSegment        uint32 = 0x18538067
	IDInfo           uint32 = 0x1549A966
	IDSegmentUID     uint32 = 0x73A4
	IDTimestampScale uint32 = 0x2AD7B1
	IDDuration       uint32 = 0x4489
	IDTitle          uint32 = 0x7BA9
	IDMuxingApp      uint32 = 0x4D80
	IDWritingApp     uint32 = 0x5741

	IDTracks          uint32 = 0x1654AE6B
	IDTrackEntry      uint32 = 0xAE
	IDTrackNumber     uint32 = 0xD7
	IDTrackUID        uint32 = 0x73C5
	IDTrackType       uint32 = 0x83
	IDFlagDefault     uint32 = 0x88
	IDDefaultDuration uint32 = 0x23E383
	IDName            uint32 = 0x536E
	IDLanguage        uint32 = 0x22B59C
	IDCodecID         uint32 = 0x86
	IDCodecPrivate    uint32 = 0x63A2

	IDVideo         uint32 = 0xE0
	IDPixelWidth    uint32 = 0xB0
	IDPixelHeight   uint32 = 0xBA
	IDDisplayWidth  uint32 = 0x54B0
	IDDisplayHeight uint32 = 0x54BA

	IDAudio             uint32 = 0xE1
	IDSamplingFrequency uint32 = 0xB5
	IDChannels          uint32 = 0x9F
	IDBitDepth          uint32 = 0x6264

	IDSeekHead    uint32 = 0x114D9B74
	IDCues        uint32 = 0x1C53BB6B
	IDChapters    uint32 = 0x1043A770
	IDTags        uint32 = 0x1254C367
	IDAttachments uint32 = 0x1941A469

	IDCluster     uint32 = 0x1F43B675
	IDTimestamp   uint32 = 0xE7
	IDSimpleBlock uint32 = 0xA3
	IDBlockGroup  uint32 = 0xA0
	IDBlock       uint32 = 0xA1
)

// masters lists the element IDs whose payload is a sequence of child elements.
var masters = map[uint32]bool{
	IDEBML:       true,
	IDSegment:    true,
	IDInfo:       true,
	IDTracks:     true,
	IDTrackEntry: true,
	IDVideo:      true,
	IDAudio:      true,
	IDCluster:    true,
	IDBlockGroup: true,
}

// IsMaster reports whether id is a master element known to this package.
func IsMaster(id uint32) bool {
	return masters[id]
}

// levels gives the nesting depth of elements that bound an unknown-size
// master. An element at level n cannot appear inside one at level n or deeper.
var levels = map[uint32]int{
	IDEBML:        0,
	IDSegment:     0,
	IDSeekHead:    1,
	IDInfo:        1,
	IDTracks:      1,
	IDCues:        1,
	IDChapters:    1,
	IDTags:        1,
	IDAttachments: 1,
	IDCluster:     1,
	IDTrackEntry:  2,
	IDBlockGroup:  2,
}

var names = map[uint32]string{
	IDEBML:               "EBML",
	IDEBMLVersion:        "EBMLVersion",
	IDEBMLReadVersion:    "EBMLReadVersion",
	IDEBMLMaxIDLength:    "EBMLMaxIDLength",
	IDEBMLMaxSizeLength:  "EBMLMaxSizeLength",
	IDDocType:            "DocType",
	IDDocTypeVersion:     "DocTypeVersion",
	IDDocTypeReadVersion: "DocTypeReadVersion",
	IDVoid:               "Void",
	IDSegment:            "Segment",
	IDInfo:               "Info",
	IDSegmentUID:         "SegmentUID",
	IDTimestampScale:     "TimestampScale",
	IDDuration:           "Duration",
	IDTitle:              "Title",
	IDMuxingApp:          "MuxingApp",
	IDWritingApp:         "WritingApp",
	IDTracks:             "Tracks",
	IDTrackEntry:         "TrackEntry",
	IDTrackNumber:        "TrackNumber",
	IDTrackUID:           "TrackUID",
	IDTrackType:          "TrackType",
	IDFlagDefault:        "FlagDefault",
	IDDefaultDuration:    "DefaultDuration",
	IDName:               "Name",
	IDLanguage:           "Language",
	IDCodecID:            "CodecID",
	IDCodecPrivate:       "CodecPrivate",
	IDVideo:              "Video",
	IDPixelWidth:         "PixelWidth",
	IDPixelHeight:        "PixelHeight",
	IDDisplayWidth:       "DisplayWidth",
	IDDisplayHeight:      "DisplayHeight",
	IDAudio:              "Audio",
	IDSamplingFrequency:  "SamplingFrequency",
	IDChannels:           "Channels",
	IDBitDepth:           "BitDepth",
	IDSeekHead:           "SeekHead",
	IDCues:               "Cues",
	IDChapters:           "Chapters",
	IDTags:               "Tags",
	IDAttachments:        "Attachments",
	IDCluster:            "Cluster",
	IDTimestamp:          "Timestamp",
	IDSimpleBlock:        "SimpleBlock",
	IDBlockGroup:         "BlockGroup",
	IDBlock:              "Block",
}

// Name returns the element name for id, or its hex pattern if unknown.
func Name(id uint32) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("0x%X", id)
}
