// Package moq frames demuxed Matroska tracks for MoQ Transport
// (draft-ietf-moq-transport-15) delivery: subgroup stream headers, objects
// carrying LOC header extensions (draft-ietf-moq-loc-01), and the catalog
// (draft-ietf-moq-catalogformat-01) announcing the tracks.
//
// The package only produces and parses bytes. Opening QUIC streams is left
// to the caller; each subgroup is meant for one unidirectional stream.
package moq
