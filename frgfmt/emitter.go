package frgfmt

import (
	"io"

	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/library"
	"github.com/Schaudge/sff2frg/readstore"
)

// Emit performs FragmentEmitter's single IID-ordered traversal (§4.8): one
// VER record, one LIB record, then one FRG per live read, and one LKG for
// every mate pair whose partner has already been emitted
// (mate_iid < self.iid).
func Emit(w io.Writer, store *readstore.Store, lib library.Record) error {
	fw := NewWriter(w)
	fw.writeVersion()
	fw.writeLibrary(lib)

	it := store.Stream(readstore.ProjAll)
	for it.Next() {
		rec := it.Record()
		if rec.Deleted {
			continue
		}
		fw.writeFragment(rec, lib.UID)
		if rec.MateIID != sffcore.NoIID && rec.MateIID < rec.IID {
			mate, err := store.Get(rec.MateIID, readstore.ProjInfo)
			if err != nil {
				return err
			}
			fw.writeLink(mate.UID, rec.UID, rec.Orientation, lib.UID)
		}
	}
	return fw.Flush()
}
