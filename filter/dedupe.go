package filter

import (
	"bytes"
	"sort"

	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/readstore"
)

// fingerprint computes a 64-bit spaced-seed hash over the first 48 bases of
// seq, using the repeating "101" sampling pattern: of every run of 3 bases,
// positions 0 and 2 are folded into the hash and position 1 is skipped. This
// selects 32 of the 48 positions, each contributing a 2-bit code (§4.6). Callers must only call this with
// len(seq) >= sffcore.MinReadLen.
func fingerprint(seq []byte) uint64 {
	var hash uint64
	s := 0
	for n := 0; n < 16; n++ {
		hash <<= 2
		hash |= baseCode2[seq[s]]
		s += 2
		hash <<= 2
		hash |= baseCode2[seq[s]]
		s++
	}
	return hash
}

// baseCode2 maps A/C/G/T (either case) to a 2-bit code for fingerprint.
// Every other byte, including 'N', codes as 0 — matching the reference,
// which never special-cases ambiguity codes here because LowQualityFilter
// has already removed every read that contains one.
var baseCode2 [256]uint64

func init() {
	baseCode2['A'], baseCode2['a'] = 0, 0
	baseCode2['C'], baseCode2['c'] = 1, 1
	baseCode2['G'], baseCode2['g'] = 2, 2
	baseCode2['T'], baseCode2['t'] = 3, 3
}

type fpEntry struct {
	hash uint64
	iid  sffcore.IID
}

// RemoveDuplicatePrefixes deletes reads whose sequence is a byte-for-byte
// prefix of another read's sequence (§4.6). Candidates are found by sorting
// fingerprints into cliques of equal hash and comparing every pair within a
// clique, giving expected O(N log N) behavior instead of the O(N^2) full
// pairwise scan.
func RemoveDuplicatePrefixes(store *readstore.Store, ctx *sffcore.RunContext) error {
	first, end := store.FirstIID(), store.EndIID()
	ctx.Progressf("removeDuplicateReads()-- from %d to %d", first, end)
	if first == sffcore.NoIID {
		return nil
	}

	n := int(end - first)
	entries := make([]fpEntry, 0, n)
	seqs := make(map[sffcore.IID][]byte, n)
	for iid := first; iid < end; iid++ {
		rec, err := store.Get(iid, readstore.ProjInfo|readstore.ProjSequence)
		if err != nil {
			return err
		}
		if len(rec.Sequence) < sffcore.MinReadLen {
			return sffcore.Newf(sffcore.FormatInvalid, "read %d is %d bases, shorter than the %d-base dedupe key", iid, len(rec.Sequence), sffcore.MinReadLen)
		}
		entries = append(entries, fpEntry{hash: fingerprint(rec.Sequence), iid: iid})
		seqs[iid] = rec.Sequence
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].hash < entries[j].hash })

	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].hash == entries[i].hash {
			j++
		}
		for a := i; a < j; a++ {
			for b := a + 1; b < j; b++ {
				if err := considerPrefixPair(store, ctx, entries[a].iid, entries[b].iid, seqs); err != nil {
					return err
				}
			}
		}
		i = j
	}
	return nil
}

// considerPrefixPair re-fetches the live Deleted state of both reads (a
// prior pair in the same clique may have just deleted one of them), decides
// whether either is now a known-unproductive comparison, and otherwise
// compares their shared prefix byte-for-byte.
func considerPrefixPair(store *readstore.Store, ctx *sffcore.RunContext, iid1, iid2 sffcore.IID, seqs map[sffcore.IID][]byte) error {
	r1, err := store.Get(iid1, readstore.ProjInfo)
	if err != nil {
		return err
	}
	r2, err := store.Get(iid2, readstore.ProjInfo)
	if err != nil {
		return err
	}

	seq1, seq2 := seqs[iid1], seqs[iid2]
	len1, len2 := len(seq1), len(seq2)

	// A deleted read that is already strictly shorter than its candidate
	// can never become the surviving (longer) read; no need to compare.
	if r1.Deleted && len1 < len2 {
		return nil
	}
	if r2.Deleted && len2 < len1 {
		return nil
	}
	if len1 == len2 {
		if r1.Deleted && iid1 < iid2 {
			return nil
		}
		if r2.Deleted && iid2 < iid1 {
			return nil
		}
	}
	if r1.Deleted && r2.Deleted {
		return nil
	}

	shared := len1
	if len2 < shared {
		shared = len2
	}
	if !bytes.Equal(seq1[:shared], seq2[:shared]) {
		return nil
	}

	// One is a prefix of the other. The shorter survives only as much as
	// it is not redundant: delete the shorter, breaking length ties by
	// deleting the lower IID (the later-loaded read is kept).
	var delIID, survIID sffcore.IID
	var delUID, survUID sffcore.UID
	var alreadyDeleted bool
	switch {
	case len1 < len2:
		delIID, delUID, alreadyDeleted = iid1, r1.UID, r1.Deleted
		survIID, survUID = iid2, r2.UID
	case len2 < len1:
		delIID, delUID, alreadyDeleted = iid2, r2.UID, r2.Deleted
		survIID, survUID = iid1, r1.UID
	case iid1 < iid2:
		delIID, delUID, alreadyDeleted = iid1, r1.UID, r1.Deleted
		survIID, survUID = iid2, r2.UID
	default:
		delIID, delUID, alreadyDeleted = iid2, r2.UID, r2.Deleted
		survIID, survUID = iid1, r1.UID
	}

	if alreadyDeleted {
		return nil
	}
	if err := store.Delete(delIID); err != nil {
		return err
	}
	ctx.Logf("Delete read %s,%d a prefix of %s,%d", delUID, delIID, survUID, survIID)
	return nil
}
