// Package readstore implements the in-memory read store (§4.3): stable
// IID assignment, a UID↔IID bidirectional map, compact sequence/quality
// persistence, and delete/replace that preserves identifier stability.
//
// The compact encoding is grounded on github.com/Schaudge/hts's
// sam.Seq/sam.Doublet nibble packing (sam/record.go): each base is packed
// into a 4-bit code using the same A/C/G/T/N assignment bíogo's BAM codec
// uses, and quality is stored alongside it as one raw Phred byte per base
// so the pair decodes together.
package readstore

import (
	"bytes"

	"github.com/Schaudge/sff2frg/internal/sffcore"
)

// Projection selects which parts of a record Get/Stream decode. Decoding
// only what's asked for keeps hot passes like the deduper (which only
// needs Sequence) from paying to unpack quality on every read.
type Projection uint8

const (
	ProjInfo        Projection = 1 << iota // uid/iid/flags/clear ranges
	ProjSequence                           // decoded base sequence
	ProjQuality                            // decoded quality string
	ProjHomopolymer                        // reserved; this core does no homopolymer correction
	ProjSource                             // reserved; this core derives "source" at emit time, not storage time
)

// ProjAll requests every projection.
const ProjAll = ProjInfo | ProjSequence | ProjQuality | ProjHomopolymer | ProjSource

// Record is the canonical in-store read entity (§3). A Record returned by
// Get/Stream is a decoded snapshot: mutating it has no effect on the store
// until passed back through Put.
type Record struct {
	UID         sffcore.UID
	IID         sffcore.IID
	LibraryIID  sffcore.IID
	Orientation sffcore.Orientation

	Deleted                     bool
	LinkerDetectedButNotTrimmed bool

	MateIID sffcore.IID

	Clear [sffcore.NumClearKinds]sffcore.ClearRange

	Sequence []byte
	Quality  []byte
}

// Len returns len(Sequence), the read's effective length.
func (r *Record) Len() int { return len(r.Sequence) }

// Equal reports whether r and other carry the same identity, flags, clear
// ranges, and sequence/quality payload. It is grounded on
// github.com/Schaudge/hts's sam.Record.Equal (sam/grail.go), which compares
// every field explicitly rather than reaching for reflect.DeepEqual so that
// fields added later require a conscious update here.
func (r *Record) Equal(other *Record) bool {
	return r.UID == other.UID &&
		r.IID == other.IID &&
		r.LibraryIID == other.LibraryIID &&
		r.Orientation == other.Orientation &&
		r.Deleted == other.Deleted &&
		r.LinkerDetectedButNotTrimmed == other.LinkerDetectedButNotTrimmed &&
		r.MateIID == other.MateIID &&
		r.Clear == other.Clear &&
		bytes.Equal(r.Sequence, other.Sequence) &&
		bytes.Equal(r.Quality, other.Quality)
}
