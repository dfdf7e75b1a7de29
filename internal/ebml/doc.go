// Package ebml implements the low-level pieces of the Extensible Binary Meta
// Language used by Matroska and WebM: variable-length integers, element
// headers, child walking over in-memory buffers, typed leaf values, and the
// append-style writers used by the muxer.
//
// Nothing in this package copies payload bytes while walking. Elements are
// descriptors into the caller's buffer and are only valid as long as it is.
package ebml
