// Package filter implements the two store-rewriting passes that run
// before the linker splitter: LowQualityFilter (§4.5) and PrefixDeduper
// (§4.6).
package filter

import (
	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/readstore"
)

// RemoveLowQuality marks every live read containing an ambiguous base ('N'
// or 'n') deleted (§4.5). It is a single linear pass with no other
// trimming or modification.
func RemoveLowQuality(store *readstore.Store, ctx *sffcore.RunContext) error {
	first, end := store.FirstIID(), store.EndIID()
	ctx.Progressf("removeLowQualityReads()-- from %d to %d", first, end)
	if first == sffcore.NoIID {
		return nil
	}

	for iid := first; iid < end; iid++ {
		rec, err := store.Get(iid, readstore.ProjInfo|readstore.ProjSequence)
		if err != nil {
			return err
		}
		if rec.Deleted {
			continue
		}
		pos := indexOfN(rec.Sequence)
		if pos < 0 {
			continue
		}
		if err := store.Delete(iid); err != nil {
			return err
		}
		ctx.Logf("Read '%s' contains an N at position %d.  Read deleted.", rec.UID, pos)
	}
	return nil
}

func indexOfN(seq []byte) int {
	for i, b := range seq {
		if b == 'n' || b == 'N' {
			return i
		}
	}
	return -1
}
