package linker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/library"
	"github.com/Schaudge/sff2frg/readstore"
)

func newSplitCtx() *sffcore.RunContext {
	return &sffcore.RunContext{LogWriter: &bytes.Buffer{}}
}

func appendRead(t *testing.T, s *readstore.Store, uid, seq string) sffcore.IID {
	t.Helper()
	qual := make([]byte, len(seq))
	for i := range qual {
		qual[i] = '0' + 20
	}
	clear := sffcore.ClearRange{Beg: 0, End: len(seq)}
	iid, err := s.Append(&readstore.Record{
		UID:      sffcore.UID(uid),
		Sequence: []byte(seq),
		Quality:  qual,
		Clear:    [sffcore.NumClearKinds]sffcore.ClearRange{clear, clear, clear, clear},
	})
	assert.NoError(t, err)
	return iid
}

// S4: FLX linker split with both flanks long enough to become mates.
func TestSplitFLXProducesMates(t *testing.T) {
	s := readstore.New()
	seq := strings.Repeat("C", 80) + library.LinkerFLX + strings.Repeat("G", 76)
	pIID := appendRead(t, s, "P", seq)

	ctx := newSplitCtx()
	assert.NoError(t, Split(s, ctx, library.LinkerFLX))

	// The split parent's UID is set to undefined, so "P" is no longer
	// registered; the parent record itself stays in the store, deleted.
	_, ok := s.LookupIID(sffcore.UID("P"))
	assert.True(t, !ok)
	pRec, err := s.Get(pIID, readstore.ProjInfo)
	assert.NoError(t, err)
	assert.True(t, pRec.Deleted)

	aIID, ok := s.LookupIID(sffcore.UID("Pa"))
	assert.True(t, ok)
	bIID, ok := s.LookupIID(sffcore.UID("Pb"))
	assert.True(t, ok)

	// §4.7 step 4: m1 (Pa) must be allocated before m2 (Pb), so their IIDs
	// come out consecutive with Pa first.
	assert.Equal(t, aIID+1, bIID)

	aRec, err := s.Get(aIID, readstore.ProjInfo|readstore.ProjSequence)
	assert.NoError(t, err)
	bRec, err := s.Get(bIID, readstore.ProjInfo|readstore.ProjSequence)
	assert.NoError(t, err)

	assert.Equal(t, strings.Repeat("G", 80), string(aRec.Sequence)) // revcomp of 80xC
	assert.Equal(t, strings.Repeat("G", 76), string(bRec.Sequence))
	assert.Equal(t, sffcore.OrientInnie, aRec.Orientation)
	assert.Equal(t, sffcore.OrientInnie, bRec.Orientation)
	assert.Equal(t, bIID, aRec.MateIID)
	assert.Equal(t, aIID, bRec.MateIID)
}

// S5: FLX linker at the right edge with only a short flank beyond it is
// trimmed, not split.
func TestSplitFLXTrimOnly(t *testing.T) {
	s := readstore.New()
	seq := strings.Repeat("C", 80) + library.LinkerFLX + strings.Repeat("G", 30)
	appendRead(t, s, "P", seq)

	ctx := newSplitCtx()
	assert.NoError(t, Split(s, ctx, library.LinkerFLX))

	_, ok := s.LookupIID(sffcore.UID("Pa"))
	assert.True(t, !ok)

	pIID, ok := s.LookupIID(sffcore.UID("P"))
	assert.True(t, ok)
	pRec, err := s.Get(pIID, readstore.ProjInfo|readstore.ProjSequence)
	assert.NoError(t, err)
	assert.True(t, !pRec.Deleted)
	assert.Equal(t, strings.Repeat("C", 80), string(pRec.Sequence))
	assert.True(t, pRec.MateIID == sffcore.NoIID)
}

// S6: a weak (good but not best) hit is annotated, not trimmed.
func TestSplitWeakHitAnnotatesOnly(t *testing.T) {
	s := readstore.New()
	// 35 bases with 2 mismatches scattered through so align finds a ~35bp
	// local alignment that is good (a>=30, m+3>=a) but not best (a<42).
	probe := library.LinkerFIX[:35]
	mutated := []byte(probe)
	mutated[10] = mutateBase(mutated[10])
	mutated[20] = mutateBase(mutated[20])
	seq := strings.Repeat("A", 60) + string(mutated) + strings.Repeat("T", 60)
	appendRead(t, s, "P", seq)

	ctx := newSplitCtx()
	assert.NoError(t, Split(s, ctx, library.LinkerFIX))

	pIID, ok := s.LookupIID(sffcore.UID("P"))
	assert.True(t, ok)
	pRec, err := s.Get(pIID, readstore.ProjInfo|readstore.ProjSequence)
	assert.NoError(t, err)
	assert.True(t, !pRec.Deleted)
	assert.Equal(t, seq, string(pRec.Sequence)) // unchanged
	assert.True(t, pRec.LinkerDetectedButNotTrimmed)
}

func mutateBase(b byte) byte {
	if b == 'A' {
		return 'C'
	}
	return 'A'
}

func TestSplitNoProbeIsNoop(t *testing.T) {
	s := readstore.New()
	appendRead(t, s, "P", strings.Repeat("A", 100))
	ctx := newSplitCtx()
	assert.NoError(t, Split(s, ctx, ""))
	iid, _ := s.LookupIID(sffcore.UID("P"))
	rec, err := s.Get(iid, readstore.ProjInfo)
	assert.NoError(t, err)
	assert.True(t, !rec.Deleted)
}

func TestRevcompRoundTrip(t *testing.T) {
	seq := []byte("ACGTNacgtn")
	rc := revcomp(seq)
	rc2 := revcomp(rc)
	assert.Equal(t, string(seq), string(rc2)) // R2: revcomp(revcomp(r)) == r
}
