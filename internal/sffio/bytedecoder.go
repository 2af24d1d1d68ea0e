// Package sffio implements the SFF binary container decoder: an
// endianness-adaptive ByteDecoder (§4.1) and the SFFReader built on top of
// it (§4.2), plus the external-collaborator input opening described in §6
// (plain .sff, and .sff.gz/.sff.bz2 via spawned gzip/bzip2 subprocesses).
//
// The decode style — fixed-order field reads at explicit byte widths, with
// the magic number deciding whether the rest of the stream needs a byte
// swap — follows github.com/Schaudge/hts's bam.Reader, which decodes BAM's
// length-prefixed binary alignment records the same way.
package sffio

import (
	"encoding/binary"
	"io"

	"github.com/Schaudge/sff2frg/internal/sffcore"
)

// sffMagic is the big-endian encoding of ".sff".
const sffMagic = 0x2e736666

// byteDecoder reads fixed-width big-endian integers from a stream,
// switching to little-endian once the file's magic number is found not to
// match in big-endian form. It also tracks the number of bytes consumed so
// callers can compute alignment padding and compare against the SFF
// manifest's absolute index_offset.
type byteDecoder struct {
	r       io.Reader
	swap    bool
	swapSet bool
	nRead   int64

	// scratch backs skipPad's discard reads. Padding is never kept, so
	// every skipPad call reuses and regrows the same buffer instead of
	// allocating a fresh one per read record.
	scratch []byte
}

// resizeScratch grows *buf to at least n bytes, allocating a little extra
// headroom to absorb small size increases without reallocating every call.
func resizeScratch(buf *[]byte, n int) {
	if cap(*buf) < n {
		size := (n/16 + 1) * 16
		*buf = make([]byte, n, size)
	} else {
		*buf = (*buf)[:n]
	}
}

func newByteDecoder(r io.Reader) *byteDecoder {
	return &byteDecoder{r: r}
}

func (d *byteDecoder) order() binary.ByteOrder {
	if d.swap {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// readBytes reads exactly n bytes, classifying a short read as
// IoTruncated and any other I/O failure as IoUnreadable.
func (d *byteDecoder) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	nn, err := io.ReadFull(d.r, buf)
	d.nRead += int64(nn)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, sffcore.Wrap(sffcore.IoTruncated, err, "expected %d bytes, got %d", n, nn)
		}
		return nil, sffcore.Wrap(sffcore.IoUnreadable, err, "read error")
	}
	return buf, nil
}

func (d *byteDecoder) readUint8() (uint8, error) {
	b, err := d.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *byteDecoder) readUint16() (uint16, error) {
	b, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return d.order().Uint16(b), nil
}

func (d *byteDecoder) readUint32() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return d.order().Uint32(b), nil
}

func (d *byteDecoder) readUint64() (uint64, error) {
	b, err := d.readBytes(8)
	if err != nil {
		return 0, err
	}
	return d.order().Uint64(b), nil
}

// readMagicAndSetSwap reads the first four bytes of the file. If they do
// not equal sffMagic when read big-endian, swap mode is turned on for
// every subsequent multi-byte read, and the magic is re-decoded
// little-endian; if it still doesn't match, BadMagic is fatal.
func (d *byteDecoder) readMagicAndSetSwap() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	d.swapSet = true
	magic := binary.BigEndian.Uint32(b)
	if magic == sffMagic {
		return magic, nil
	}
	d.swap = true
	magic = binary.LittleEndian.Uint32(b)
	if magic != sffMagic {
		return 0, sffcore.Newf(sffcore.BadMagic, "bad magic number 0x%08x", magic)
	}
	return magic, nil
}

// skipPad discards the alignment padding following a run of payload bytes
// already read, computed from the number of payload bytes consumed since
// the last 8-byte boundary: (8 - payload mod 8) mod 8. Implementers must
// always consume exactly this many bytes (§9 Open Question).
func (d *byteDecoder) skipPad(payload int) error {
	pad := (8 - payload%8) % 8
	if pad == 0 {
		return nil
	}
	resizeScratch(&d.scratch, pad)
	nn, err := io.ReadFull(d.r, d.scratch)
	d.nRead += int64(nn)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return sffcore.Wrap(sffcore.IoTruncated, err, "expected %d pad bytes, got %d", pad, nn)
		}
		return sffcore.Wrap(sffcore.IoUnreadable, err, "pad read error")
	}
	return nil
}
