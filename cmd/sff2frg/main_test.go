package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
)

func TestParseArgsRequiresLibraryOutputAndInput(t *testing.T) {
	_, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg"})
	assert.True(t, !ok) // no input files

	_, ok = parseArgs([]string{"-output", "out.frg", "in.sff"})
	assert.True(t, !ok) // no -libraryname

	opts, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg", "in.sff"})
	assert.True(t, ok)
	assert.Equal(t, "lib", opts.libraryName)
	assert.Equal(t, "out.frg", opts.output)
	assert.Equal(t, []string{"in.sff"}, opts.inputs)
}

func TestParseArgsLinkerRequiresInsertSize(t *testing.T) {
	_, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg", "-linker", "flx", "in.sff"})
	assert.True(t, !ok)

	opts, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg", "-linker", "flx", "-insertsize", "3000", "300", "in.sff"})
	assert.True(t, ok)
	assert.Equal(t, "flx", opts.linkerArg)
	assert.Equal(t, 3000, opts.mean)
	assert.Equal(t, 300, opts.stddev)
}

func TestParseArgsMultipleInputs(t *testing.T) {
	opts, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg", "a.sff", "b.sff"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a.sff", "b.sff"}, opts.inputs)
}

func TestParseArgsUnknownFlagFails(t *testing.T) {
	_, ok := parseArgs([]string{"-libraryname", "lib", "-output", "out.frg", "-bogus", "in.sff"})
	assert.True(t, !ok)
}

// --- a minimal synthetic SFF file for an end-to-end S1-style run ---

func pad8(n int) int { return (8 - n%8) % 8 }

func buildMinimalSFF(name string, bases, rawQual []byte, flowChars, key []byte) []byte {
	var buf []byte
	be := binary.BigEndian
	put16 := func(v uint16) { buf = be.AppendUint16(buf, v) }
	put32 := func(v uint32) { buf = be.AppendUint32(buf, v) }
	put64 := func(v uint64) { buf = be.AppendUint64(buf, v) }

	const fixedHeaderBytes = 31
	payload := len(flowChars) + len(key)
	headerLength := fixedHeaderBytes + payload + pad8(fixedHeaderBytes+payload)

	put32(0x2e736666)
	buf = append(buf, 1, 0, 0, 0)
	put64(0) // index_offset
	put32(0) // index_length
	put32(1) // number_of_reads
	put16(uint16(headerLength))
	put16(uint16(len(key)))
	put16(uint16(len(flowChars)))
	buf = append(buf, 1)
	buf = append(buf, flowChars...)
	buf = append(buf, key...)
	buf = append(buf, make([]byte, pad8(fixedHeaderBytes+payload))...)

	const readHeaderFixedBytes = 16
	nameLen := len(name)
	readHeaderLength := readHeaderFixedBytes + nameLen + pad8(readHeaderFixedBytes+nameLen)
	nBases := len(bases)

	put16(uint16(readHeaderLength))
	put16(uint16(nameLen))
	put32(uint32(nBases))
	put16(0)
	put16(0)
	put16(0)
	put16(0)
	buf = append(buf, name...)
	buf = append(buf, make([]byte, pad8(readHeaderFixedBytes+nameLen))...)

	for i := 0; i < len(flowChars); i++ {
		put16(100)
	}
	buf = append(buf, make([]byte, nBases)...) // flow_index_per_base
	buf = append(buf, bases...)
	buf = append(buf, rawQual...)

	payload2 := len(flowChars)*2 + nBases + nBases + nBases
	buf = append(buf, make([]byte, pad8(payload2))...)
	return buf
}

func TestRunEndToEndSingleCleanRead(t *testing.T) {
	dir := t.TempDir()
	sffPath := filepath.Join(dir, "reads.sff")

	bases := []byte("TCAG" + strings.Repeat("A", 60))
	qual := make([]byte, len(bases))
	for i := range qual {
		qual[i] = 20
	}
	raw := buildMinimalSFF("R1", bases, qual, []byte("TACG"), []byte("TCAG"))
	assert.NoError(t, os.WriteFile(sffPath, raw, 0o644))

	outPath := filepath.Join(dir, "out.frg")
	opts := options{
		libraryName: "mylib",
		output:      outPath,
		inputs:      []string{sffPath},
	}
	assert.NoError(t, run(opts))

	out, err := os.ReadFile(outPath)
	assert.NoError(t, err)
	text := string(out)
	assert.True(t, strings.Contains(text, "acc:R1"))
	assert.True(t, strings.Contains(text, strings.Repeat("A", 60)))
	assert.True(t, !strings.Contains(text, "{LKG"))

	_, err = os.Stat(outPath + ".tmpStore")
	assert.True(t, os.IsNotExist(err)) // removed on successful completion
}
