// Package fastfield implements the fast-field accessor described in
// spec.md section 4.1 (C1): per-segment, random-access reads of
// precomputed per-document feature values.
//
// A SegmentCache is obtained once per segment and reused for the lifetime
// of that segment's collection phase (section 4.1); it must never be
// shared across segments running concurrently, since each handle is
// exclusive to its own segment collector (section 5).
package fastfield

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/webrank/rankcore/pkg/schema"
)

// SegmentCache is the contract consumed from the inverted index's
// fast-field store (section 4.1). Missing values return ok=false; callers
// must treat that as "this signal contributes 0", never as an error
// (section 7: MissingData).
type SegmentCache interface {
	// GetU64 reads a scalar fast-field value for a document.
	GetU64(field schema.FastField, docID uint32) (value uint64, ok bool)

	// GetU64s reads a two-word fast-field value (used only for the hash
	// fields SiteHash/TitleHash/UrlHash).
	GetU64s(field schema.FastField, docID uint32) (values [2]uint64, ok bool)
}

// FastFieldWriter is satisfied by every SegmentCache reference
// implementation that can be populated (MemorySegmentCache,
// BadgerSegmentCache), letting callers build a fixture segment against
// either backend without branching on the concrete type.
type FastFieldWriter interface {
	SetU64(field schema.FastField, docID uint32, value uint64) error
	SetU64s(field schema.FastField, docID uint32, values [2]uint64) error
}

// Prehashed is a 128-bit fingerprint represented as two u64 halves,
// produced by combining the two raw halves a hash fast-field stores.
type Prehashed struct {
	Hi, Lo uint64
}

// CombineU64s folds the two raw halves of a hash fast-field into one
// fingerprint. xxhash is used as the mixing function so that two
// documents whose raw halves differ in only one word still land far apart
// in Prehashed-space, which is what the bucket collector's duplicate
// detection (section 4.3) depends on.
func CombineU64s(halves [2]uint64) Prehashed {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], halves[0])
	binary.LittleEndian.PutUint64(buf[8:16], halves[1])
	return Prehashed{
		Hi: halves[0] ^ xxhash.Sum64(buf[:8]),
		Lo: halves[1] ^ xxhash.Sum64(buf[8:16]),
	}
}

// Hashes bundles the three fingerprints the bucket collector de-duplicates
// on (section 3: "a record {site, title, url}").
type Hashes struct {
	Site  Prehashed
	Title Prehashed
	URL   Prehashed
}

// ReadHashes reads the SiteHash/TitleHash/UrlHash fast fields for a
// document and combines each into a fingerprint. Returns an error if any
// of the three hash fields is missing — unlike scoring signals, a missing
// hash leaves duplicate detection unable to function, so the segment
// collector treats it as an IndexIOFailure (section 7) rather than a
// silent zero.
func ReadHashes(cache SegmentCache, docID uint32) (Hashes, error) {
	site, ok := cache.GetU64s(schema.FastFieldSiteHash, docID)
	if !ok {
		return Hashes{}, fmt.Errorf("fastfield: missing site hash for doc %d", docID)
	}
	title, ok := cache.GetU64s(schema.FastFieldTitleHash, docID)
	if !ok {
		return Hashes{}, fmt.Errorf("fastfield: missing title hash for doc %d", docID)
	}
	url, ok := cache.GetU64s(schema.FastFieldUrlHash, docID)
	if !ok {
		return Hashes{}, fmt.Errorf("fastfield: missing url hash for doc %d", docID)
	}
	return Hashes{
		Site:  CombineU64s(site),
		Title: CombineU64s(title),
		URL:   CombineU64s(url),
	}, nil
}
