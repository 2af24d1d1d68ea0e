package linker

import (
	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/readstore"
)

type outcomeKind int

const (
	kindUnchanged outcomeKind = iota
	kindSurvivor
	kindMates
	kindDeleted
)

// scanResult is the disposition the recursive policy of §4.7 reaches for one
// candidate sequence. It never touches the store directly — Split applies
// the disposition once recursion bottoms out.
type scanResult struct {
	kind outcomeKind

	seq, qual []byte
	annotate  bool
	hit       AlignResult

	m1Seq, m1Qual []byte
	m2Seq, m2Qual []byte
}

// scan applies the §4.7 trim/split/annotate policy to one candidate
// sequence, recursing on trimmed survivors and (when allowSplit) on a pair
// of split mates. allowSplit is false while scanning a read that was itself
// produced by a split, matching step 4's "no mate-output slots" rule: a
// second best hit found there can only delete, never split again.
func scan(probe, seq, qual []byte, allowSplit bool) scanResult {
	res := align(probe, seq)
	good, best := classify(res.AlignLen, res.Matches)
	if !good {
		return scanResult{kind: kindUnchanged}
	}

	lSize := res.BegJ
	rSize := len(seq) - res.EndJ

	switch {
	case best && lSize < 64:
		trimmedSeq := append([]byte(nil), seq[res.EndJ:]...)
		trimmedQual := append([]byte(nil), qual[res.EndJ:]...)
		return foldTrim(trimmedSeq, trimmedQual, scan(probe, trimmedSeq, trimmedQual, allowSplit))

	case best && rSize < 64:
		trimmedSeq := append([]byte(nil), seq[:res.BegJ]...)
		trimmedQual := append([]byte(nil), qual[:res.BegJ]...)
		return foldTrim(trimmedSeq, trimmedQual, scan(probe, trimmedSeq, trimmedQual, allowSplit))

	case best:
		if !allowSplit {
			return scanResult{kind: kindDeleted}
		}
		m1Seq := revcomp(seq[:lSize])
		m1Qual := reverseBytes(qual[:lSize])
		m2Seq := append([]byte(nil), seq[res.EndJ:]...)
		m2Qual := append([]byte(nil), qual[res.EndJ:]...)

		inner1 := scan(probe, m1Seq, m1Qual, false)
		inner2 := scan(probe, m2Seq, m2Qual, false)
		if inner1.kind == kindDeleted || inner2.kind == kindDeleted {
			return scanResult{kind: kindDeleted}
		}
		finalM1Seq, finalM1Qual := resolveLeaf(m1Seq, m1Qual, inner1)
		finalM2Seq, finalM2Qual := resolveLeaf(m2Seq, m2Qual, inner2)
		return scanResult{kind: kindMates, m1Seq: finalM1Seq, m1Qual: finalM1Qual, m2Seq: finalM2Seq, m2Qual: finalM2Qual}

	default: // good, not best
		return scanResult{kind: kindSurvivor, seq: seq, qual: qual, annotate: true, hit: res}
	}
}

// foldTrim reconciles a trim step with whatever the recursive rescan of the
// trimmed sequence found: nothing further found means the trim itself is
// the final disposition; anything else (another trim, a split, or an
// ambiguous delete) bubbles straight up.
func foldTrim(trimmedSeq, trimmedQual []byte, inner scanResult) scanResult {
	if inner.kind == kindUnchanged {
		return scanResult{kind: kindSurvivor, seq: trimmedSeq, qual: trimmedQual}
	}
	return inner
}

func resolveLeaf(seq, qual []byte, inner scanResult) ([]byte, []byte) {
	if inner.kind == kindSurvivor {
		return inner.seq, inner.qual
	}
	return seq, qual
}

// Split runs the splitter over every live read in IID order (§4.7
// "Enclosing loop"). New records produced by a trim or a mate split are
// appended after the snapshot range this call started with, so they are
// never rescanned within the same Split call — matching "applied once per
// live read".
func Split(store *readstore.Store, ctx *sffcore.RunContext, probe string) error {
	if probe == "" {
		return nil
	}
	probeBytes := []byte(probe)

	first, end := store.FirstIID(), store.EndIID()
	ctx.Progressf("detectMates()-- from %d to %d", first, end)
	if first == sffcore.NoIID {
		return nil
	}

	for iid := first; iid < end; iid++ {
		if err := splitOne(store, ctx, probeBytes, iid); err != nil {
			return err
		}
	}
	return nil
}

func splitOne(store *readstore.Store, ctx *sffcore.RunContext, probe []byte, iid sffcore.IID) error {
	rec, err := store.Get(iid, readstore.ProjAll)
	if err != nil {
		return err
	}
	if rec.Deleted {
		return nil
	}

	out := scan(probe, rec.Sequence, rec.Quality, true)
	parentUID := rec.UID

	switch out.kind {
	case kindUnchanged:
		return nil

	case kindSurvivor:
		if out.annotate {
			rec.LinkerDetectedButNotTrimmed = true
			rec.Clear[sffcore.ClearQLT] = sffcore.ClearRange{
				Beg: (out.hit.BegI << 8) | out.hit.EndI,
				End: (out.hit.AlignLen << 8) | out.hit.Matches,
			}
			rec.Clear[sffcore.ClearVEC] = sffcore.ClearRange{Beg: out.hit.BegJ, End: out.hit.EndJ}
			return store.Put(iid, rec)
		}
		if err := retireParent(store, rec, iid); err != nil {
			return err
		}
		survivor := &readstore.Record{
			UID:         parentUID,
			LibraryIID:  rec.LibraryIID,
			Orientation: rec.Orientation,
			Clear:       freshClear(len(out.seq)),
			Sequence:    out.seq,
			Quality:     out.qual,
		}
		if _, err := store.Append(survivor); err != nil {
			return err
		}
		ctx.Logf("Trimmed linker from read '%s'", parentUID)
		return nil

	case kindMates:
		if err := retireParent(store, rec, iid); err != nil {
			return err
		}
		m1 := &readstore.Record{
			UID:         parentUID + "a",
			LibraryIID:  rec.LibraryIID,
			Orientation: sffcore.OrientInnie,
			Clear:       freshClear(len(out.m1Seq)),
			Sequence:    out.m1Seq,
			Quality:     out.m1Qual,
		}
		m1IID, err := store.Append(m1)
		if err != nil {
			return err
		}
		m2 := &readstore.Record{
			UID:         parentUID + "b",
			LibraryIID:  rec.LibraryIID,
			Orientation: sffcore.OrientInnie,
			Clear:       freshClear(len(out.m2Seq)),
			Sequence:    out.m2Seq,
			Quality:     out.m2Qual,
			MateIID:     m1IID,
		}
		m2IID, err := store.Append(m2)
		if err != nil {
			return err
		}
		m1.MateIID = m2IID
		if err := store.Put(m1IID, m1); err != nil {
			return err
		}
		ctx.Logf("Split read '%s' into mates '%s' and '%s'", parentUID, m1.UID, m2.UID)
		return nil

	case kindDeleted:
		if err := store.Delete(iid); err != nil {
			return err
		}
		ctx.Logf("Read '%s' has an ambiguous linker hit after splitting.  Deleted.", parentUID)
		return nil
	}
	return nil
}

// retireParent clears a replaced read's UID registration (so the new
// record(s) can reuse it) before marking it deleted, preserving invariant
// I2: every live UID maps to exactly one live record.
func retireParent(store *readstore.Store, rec *readstore.Record, iid sffcore.IID) error {
	rec.UID = sffcore.UndefinedUID
	if err := store.Put(iid, rec); err != nil {
		return err
	}
	return store.Delete(iid)
}

func freshClear(n int) [sffcore.NumClearKinds]sffcore.ClearRange {
	var c [sffcore.NumClearKinds]sffcore.ClearRange
	cr := sffcore.ClearRange{Beg: 0, End: n}
	for i := range c {
		c[i] = cr
	}
	return c
}

func revcomp(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementBase(b)
	}
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'a':
		return 't'
	case 'C':
		return 'G'
	case 'c':
		return 'g'
	case 'G':
		return 'C'
	case 'g':
		return 'c'
	case 'T':
		return 'A'
	case 't':
		return 'a'
	default:
		return b
	}
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
