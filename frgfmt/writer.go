// Package frgfmt writes the textual fragment-message protocol stream (§6):
// one VER record, one LIB record, then interleaved FRG and LKG records.
package frgfmt

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/library"
	"github.com/Schaudge/sff2frg/readstore"
)

// Writer serializes fragment-message records to an underlying stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w for buffered record output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush drains any buffered output to the underlying writer.
func (fw *Writer) Flush() error { return fw.w.Flush() }

func (fw *Writer) writeVersion() {
	fmt.Fprint(fw.w, "{VER\nver:2\n}\n")
}

func (fw *Writer) writeLibrary(lib library.Record) {
	fmt.Fprintf(fw.w, "{LIB\nact:A\nacc:%s\nori:%c\nmea:%d.000\nstd:%d.000\nnft:9\nfea:\n",
		lib.UID, lib.Orientation.Code(), lib.Mean, lib.StdDev)
	writeFeature(fw.w, "forceBOGunitigger", lib.ForceBOGUnitigger)
	writeFeature(fw.w, "discardReadsWithNs", lib.DiscardReadsWithNs)
	writeFeature(fw.w, "doNotQVTrim", lib.DoNotQVTrim)
	fmt.Fprintf(fw.w, "goodBadQVThreshold=%d\n", lib.GoodBadQVThreshold)
	writeFeature(fw.w, "deletePerfectPrefixes", lib.DeletePerfectPrefixes)
	writeFeature(fw.w, "doNotTrustHomopolymerRuns", lib.DoNotTrustHomopolymerRuns)
	writeFeature(fw.w, "hpsIsFlowGram", lib.HPSIsFlowGram)
	writeFeature(fw.w, "isNotRandom", lib.IsNotRandom)
	writeFeature(fw.w, "doNotOverlapTrim", lib.DoNotOverlapTrim)
	fmt.Fprint(fw.w, ".\n}\n")
}

func writeFeature(w io.Writer, name string, v bool) {
	n := 0
	if v {
		n = 1
	}
	fmt.Fprintf(w, "%s=%d\n", name, n)
}

// writeFragment emits one FRG record. A read carrying
// LinkerDetectedButNotTrimmed reports its clear_vec/clear_qlt pair as the
// empty encoding and instead annotates src with the packed hit coordinates
// (§4.8), since those clear-range fields are overloaded storage for the
// pending OBT pass, not real clear ranges.
func (fw *Writer) writeFragment(rec *readstore.Record, libUID sffcore.UID) {
	src := ""
	clv := rec.Clear[sffcore.ClearVEC]
	clr := rec.Clear[sffcore.ClearQLT]
	if rec.LinkerDetectedButNotTrimmed {
		src = fmt.Sprintf("linktrim:0x%016x", packLinkerHit(rec.Clear))
		clv = sffcore.EmptyClearRange
		clr = sffcore.EmptyClearRange
	}

	fmt.Fprintf(fw.w, "{FRG\nact:A\nacc:%s\ntyp:R\nlib:%s\npla:0\nloc:\n", rec.UID, libUID)
	fmt.Fprintf(fw.w, "src:\n%s\n.\n", src)
	fmt.Fprintf(fw.w, "seq:\n%s\n.\n", rec.Sequence)
	fmt.Fprintf(fw.w, "qlt:\n%s\n.\n", rec.Quality)
	fmt.Fprint(fw.w, "hps:\n.\n")
	fmt.Fprintf(fw.w, "clv:%d,%d\n", clv.Beg, clv.End)
	fmt.Fprintf(fw.w, "clr:%d,%d\n}\n", clr.Beg, clr.End)
}

// writeLink emits one LKG record pairing two already-emitted mates. The
// insert distance is not embedded numerically; jar names the library record
// that carries mean/stddev, matching the reference's "distance = library
// UID" convention (§4.7 example S4).
func (fw *Writer) writeLink(uid1, uid2 sffcore.UID, orient sffcore.Orientation, libUID sffcore.UID) {
	fmt.Fprintf(fw.w, "{LKG\nact:A\nfrg1:%s\nfrg2:%s\nori:%c\njar:%s\n}\n", uid1, uid2, orient.Code(), libUID)
}

// packLinkerHit reassembles the four 16-bit fields LinkerSplitter packed
// into the QLT/VEC clear-range pair back into one 64-bit value for the
// linktrim: source annotation (§4.8).
func packLinkerHit(clear [sffcore.NumClearKinds]sffcore.ClearRange) uint64 {
	qlt := clear[sffcore.ClearQLT]
	vec := clear[sffcore.ClearVEC]
	return (uint64(uint16(qlt.Beg)) << 48) |
		(uint64(uint16(qlt.End)) << 32) |
		(uint64(uint16(vec.Beg)) << 16) |
		uint64(uint16(vec.End))
}
