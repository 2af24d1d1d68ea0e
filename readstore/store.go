package readstore

import (
	"os"

	"github.com/Schaudge/sff2frg/internal/sffcore"
)

// entry is the store's internal backing representation: fixed-size info
// fields plus the compactly encoded sequence/quality pair. entry is never
// exposed outside the package; callers only ever see decoded *Record
// snapshots.
type entry struct {
	uid         sffcore.UID
	iid         sffcore.IID
	libraryIID  sffcore.IID
	orientation sffcore.Orientation
	deleted     bool
	linkerFlag  bool
	mateIID     sffcore.IID
	clear       [sffcore.NumClearKinds]sffcore.ClearRange

	length  int
	seqEnc  []byte
	qualEnc []byte
}

func (e *entry) toRecord(proj Projection) *Record {
	r := &Record{
		UID:                         e.uid,
		IID:                         e.iid,
		LibraryIID:                  e.libraryIID,
		Orientation:                 e.orientation,
		Deleted:                     e.deleted,
		LinkerDetectedButNotTrimmed: e.linkerFlag,
		MateIID:                     e.mateIID,
		Clear:                       e.clear,
	}
	if proj&ProjSequence != 0 {
		r.Sequence = decodeSeq(e.seqEnc, e.length)
	}
	if proj&ProjQuality != 0 {
		r.Quality = decodeQual(e.qualEnc)
	}
	return r
}

// Store is the in-memory read store (§4.3). The zero value is not usable;
// construct one with New.
type Store struct {
	// entries is indexed by IID; index 0 is unused (NoIID is reserved).
	entries  []*entry
	uidToIID map[sffcore.UID]sffcore.IID
	dir      string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries:  make([]*entry, 1),
		uidToIID: make(map[sffcore.UID]sffcore.IID),
	}
}

// Append inserts a new record, returning its freshly assigned IID. It
// fails with DuplicateUid if rec.UID is already registered (§4.3).
func (s *Store) Append(rec *Record) (sffcore.IID, error) {
	if rec.UID.IsDefined() {
		if _, ok := s.uidToIID[rec.UID]; ok {
			return sffcore.NoIID, sffcore.Newf(sffcore.DuplicateUid, "uid %q already registered", rec.UID)
		}
	}
	iid := sffcore.IID(len(s.entries))
	e := &entry{
		uid:         rec.UID,
		iid:         iid,
		libraryIID:  rec.LibraryIID,
		orientation: rec.Orientation,
		deleted:     rec.Deleted,
		linkerFlag:  rec.LinkerDetectedButNotTrimmed,
		mateIID:     rec.MateIID,
		clear:       rec.Clear,
		length:      len(rec.Sequence),
		seqEnc:      encodeSeq(rec.Sequence),
		qualEnc:     encodeQual(rec.Quality),
	}
	s.entries = append(s.entries, e)
	if rec.UID.IsDefined() {
		s.uidToIID[rec.UID] = iid
	}
	return iid, nil
}

// LookupIID returns the IID registered for uid, if any (§4.3).
func (s *Store) LookupIID(uid sffcore.UID) (sffcore.IID, bool) {
	iid, ok := s.uidToIID[uid]
	return iid, ok
}

func (s *Store) entryAt(iid sffcore.IID) (*entry, error) {
	if iid == sffcore.NoIID || int(iid) >= len(s.entries) {
		return nil, sffcore.Newf(sffcore.FormatInvalid, "iid %d out of range", iid)
	}
	return s.entries[iid], nil
}

// Get decodes the record at iid, populating only the requested projection.
func (s *Store) Get(iid sffcore.IID, proj Projection) (*Record, error) {
	e, err := s.entryAt(iid)
	if err != nil {
		return nil, err
	}
	return e.toRecord(proj), nil
}

// Put writes rec back over the record at iid. The IID and, transitively,
// the element count are preserved; the UID may change (the linker splitter
// sets it to undefined on a parent it has just split), in which case the
// UID→IID map is kept consistent with invariant I2.
func (s *Store) Put(iid sffcore.IID, rec *Record) error {
	e, err := s.entryAt(iid)
	if err != nil {
		return err
	}
	if e.uid != rec.UID {
		if e.uid.IsDefined() {
			delete(s.uidToIID, e.uid)
		}
		if rec.UID.IsDefined() {
			s.uidToIID[rec.UID] = iid
		}
	}
	e.uid = rec.UID
	e.libraryIID = rec.LibraryIID
	e.orientation = rec.Orientation
	e.deleted = rec.Deleted
	e.linkerFlag = rec.LinkerDetectedButNotTrimmed
	e.mateIID = rec.MateIID
	e.clear = rec.Clear
	if rec.Sequence != nil {
		e.length = len(rec.Sequence)
		e.seqEnc = encodeSeq(rec.Sequence)
		e.qualEnc = encodeQual(rec.Quality)
	}
	return nil
}

// Delete marks the record at iid deleted. The identifier stays registered
// and the sequence/quality payload is retained (§3 I6).
func (s *Store) Delete(iid sffcore.IID) error {
	e, err := s.entryAt(iid)
	if err != nil {
		return err
	}
	e.deleted = true
	return nil
}

// FirstIID returns the first assigned IID, or NoIID if the store is empty.
func (s *Store) FirstIID() sffcore.IID {
	if len(s.entries) <= 1 {
		return sffcore.NoIID
	}
	return 1
}

// EndIID returns one past the last assigned IID.
func (s *Store) EndIID() sffcore.IID {
	return sffcore.IID(len(s.entries))
}

// Len returns the number of records ever appended (live and deleted).
func (s *Store) Len() int {
	return len(s.entries) - 1
}

// Stream returns an ordered iterator over every record (live and deleted)
// in IID order, decoding only the requested projection per record.
func (s *Store) Stream(proj Projection) *Iterator {
	return &Iterator{s: s, proj: proj, next: s.FirstIID(), end: s.EndIID()}
}

// OpenDir creates the run's temporary store directory (§C.1, modelled on
// the reference's <output>.tmpStore lifecycle) and records it for a later
// RemoveDir. This module keeps all read data in memory; the directory only
// exists to preserve the create/delete lifecycle external tooling may
// expect around a gatekeeper-style store path.
func (s *Store) OpenDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sffcore.Wrap(sffcore.IoUnwritable, err, "create store dir %s", dir)
	}
	s.dir = dir
	return nil
}

// Dir returns the directory passed to OpenDir, or "" if none was opened.
func (s *Store) Dir() string { return s.dir }

// RemoveDir deletes the directory created by OpenDir. Callers must only
// call this after a successful run (§6: "deleted on successful
// completion").
func (s *Store) RemoveDir() error {
	if s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}
