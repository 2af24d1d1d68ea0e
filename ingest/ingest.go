// Package ingest implements ReadIngest (§4.4): converting a decoded SFF
// read into a ReadStore record, with key-trimming, length-bounds
// enforcement, and UID collision handling.
package ingest

import (
	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/internal/sffio"
	"github.com/Schaudge/sff2frg/readstore"
)

// Read converts one decoded SFF read into a store record and appends it.
// It returns nil both on success and on every recoverable drop (duplicate
// UID, too-short read) — the caller doesn't need to distinguish "appended"
// from "intentionally skipped"; only a genuine store fault is returned as
// an error.
func Read(store *readstore.Store, ctx *sffcore.RunContext, keyLength int, r *sffio.Read) error {
	uid := sffcore.UID(r.Name)

	if _, ok := store.LookupIID(uid); ok {
		ctx.Logf("Read '%s' already exists.", uid)
		return nil
	}

	if keyLength > len(r.Bases) {
		ctx.Logf("Read '%s' of length %d is too short.  Not loaded.", uid, len(r.Bases)-keyLength)
		return nil
	}

	bases := r.Bases[keyLength:]
	qual := r.QualityScores[keyLength:]
	effectiveLength := len(bases)

	if effectiveLength < sffcore.MinReadLen {
		ctx.Logf("Read '%s' of length %d is too short.  Not loaded.", uid, effectiveLength)
		return nil
	}

	if effectiveLength > sffcore.MaxReadLen {
		ctx.Logf("Read '%s' of length %d is too long.  Truncating to %d bases.", uid, effectiveLength, sffcore.MaxReadLen)
		effectiveLength = sffcore.MaxReadLen
	}
	bases = bases[:effectiveLength]
	qual = qual[:effectiveLength]

	clear := sffcore.ClearRange{Beg: 0, End: effectiveLength}
	var clears [sffcore.NumClearKinds]sffcore.ClearRange
	for i := range clears {
		clears[i] = clear
	}

	rec := &readstore.Record{
		UID:         uid,
		LibraryIID:  1,
		Orientation: sffcore.OrientUnknown,
		Clear:       clears,
		Sequence:    append([]byte(nil), bases...),
		Quality:     append([]byte(nil), qual...),
	}

	if _, err := store.Append(rec); err != nil {
		if serr, ok := err.(*sffcore.Error); ok && serr.Kind == sffcore.DuplicateUid {
			ctx.Logf("Read '%s' already exists.", uid)
			return nil
		}
		return err
	}
	return nil
}
