// Package matroska demultiplexes and multiplexes Matroska (MKV) and WebM
// documents held entirely in memory.
//
// [Decode] walks the EBML header and the single top-level Segment, collecting
// document metadata ([DocInfo]) and every Cluster with its blocks in document
// order. [DecodeWebM] additionally insists on the "webm" DocType. Video block
// payloads can be turned into pictures with [Demuxer.DecodeVideoFrames], which
// hands each block to the [FrameDecoder] registered for the track's codec ID.
//
// [Encode] is the structural inverse: it writes an EBML header, a Segment with
// Info and Tracks, and one Cluster per frame.
//
// Cues, chapters, tags, subtitles, encryption, and lacing are not supported.
package matroska
