package sffio

import (
	"bytes"
	"testing"

	"github.com/grailbio/testutil/assert"

	"github.com/Schaudge/sff2frg/internal/sffcore"
)

func TestByteDecoderBigEndianNoSwap(t *testing.T) {
	buf := append([]byte{0x2e, 0x73, 0x66, 0x66}, 0x01, 0x02, 0x03, 0x04)
	d := newByteDecoder(bytes.NewReader(buf))
	magic, err := d.readMagicAndSetSwap()
	assert.NoError(t, err)
	assert.Equal(t, uint32(sffMagic), magic)
	assert.True(t, !d.swap)

	v, err := d.readUint32()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestByteDecoderSwapMode(t *testing.T) {
	// Little-endian ".sff" magic: byte-reversed relative to big-endian.
	buf := append([]byte{0x66, 0x66, 0x73, 0x2e}, 0x04, 0x03, 0x02, 0x01)
	d := newByteDecoder(bytes.NewReader(buf))
	magic, err := d.readMagicAndSetSwap()
	assert.NoError(t, err)
	assert.Equal(t, uint32(sffMagic), magic)
	assert.True(t, d.swap)

	v, err := d.readUint32()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
}

func TestByteDecoderBadMagic(t *testing.T) {
	buf := []byte{0xde, 0xad, 0xbe, 0xef}
	d := newByteDecoder(bytes.NewReader(buf))
	_, err := d.readMagicAndSetSwap()
	assert.NotNil(t, err)
	serr, ok := err.(*sffcore.Error)
	assert.True(t, ok)
	assert.Equal(t, sffcore.BadMagic, serr.Kind)
}

func TestByteDecoderTruncated(t *testing.T) {
	d := newByteDecoder(bytes.NewReader([]byte{0x01, 0x02}))
	_, err := d.readUint32()
	assert.NotNil(t, err)
	serr, ok := err.(*sffcore.Error)
	assert.True(t, ok)
	assert.Equal(t, sffcore.IoTruncated, serr.Kind)
}

func TestSkipPad(t *testing.T) {
	for payload, wantPad := range map[int]int{0: 0, 1: 7, 7: 1, 8: 0, 9: 7, 16: 0} {
		buf := make([]byte, wantPad)
		d := newByteDecoder(bytes.NewReader(buf))
		err := d.skipPad(payload)
		assert.NoError(t, err)
		assert.Equal(t, int64(wantPad), d.nRead)
	}
}

func TestSkipPadTruncated(t *testing.T) {
	d := newByteDecoder(bytes.NewReader([]byte{0x00, 0x00}))
	err := d.skipPad(1) // needs 7 bytes of pad, only 2 available
	assert.NotNil(t, err)
	serr, ok := err.(*sffcore.Error)
	assert.True(t, ok)
	assert.Equal(t, sffcore.IoTruncated, serr.Kind)
}

func TestResizeScratchReuses(t *testing.T) {
	var buf []byte
	resizeScratch(&buf, 4)
	assert.Equal(t, 4, len(buf))
	c := cap(buf)
	resizeScratch(&buf, 3)
	assert.Equal(t, 3, len(buf))
	assert.Equal(t, c, cap(buf)) // shrinking reuses the same backing array
}
