package readstore

import "github.com/Schaudge/sff2frg/internal/sffcore"

// Iterator walks a Store in IID order. It follows the same Next/Record
// shape as github.com/Schaudge/hts's bam.Iterator.
type Iterator struct {
	s    *Store
	proj Projection
	next sffcore.IID
	end  sffcore.IID
	rec  *Record
}

// Next advances the iterator. It returns false once every IID up to End
// has been visited.
func (it *Iterator) Next() bool {
	if it.next == sffcore.NoIID || it.next >= it.end {
		return false
	}
	rec, err := it.s.Get(it.next, it.proj)
	if err != nil {
		return false
	}
	it.rec = rec
	it.next++
	return true
}

// Record returns the record most recently produced by Next.
func (it *Iterator) Record() *Record { return it.rec }
