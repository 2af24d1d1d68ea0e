package sffio

import (
	"io"

	"github.com/Schaudge/sff2frg/internal/sffcore"
)

// Header is the fixed SFF file header plus its two variable-length
// trailing vectors (§4.2).
type Header struct {
	Magic                uint32
	Version              [4]byte
	IndexOffset          uint64
	IndexLength          uint32
	NumberOfReads        uint32
	HeaderLength         uint16
	KeyLength            uint16
	NumberOfFlowsPerRead uint16
	FlowgramFormatCode   uint8

	FlowChars   []byte
	KeySequence []byte
}

// Read is one decoded SFF read record (§4.2), prior to any key-trimming or
// length-gating (that is ReadIngest's job, not the decoder's).
type Read struct {
	NameLength      int
	NumberOfBases   int
	ClipQualityLeft  uint16
	ClipQualityRight uint16
	ClipAdapterLeft  uint16
	ClipAdapterRight uint16

	Name             string
	FlowgramValues   []uint16
	FlowIndexPerBase []byte
	Bases            []byte
	QualityScores    []byte
}

// Reader decodes a stream of SFF reads following a single Header. It
// tracks its own byte position so the manifest — which may legally sit
// right after the header or right after the last read — can be recognised
// by comparing the running offset against Header.IndexOffset, exactly as
// the original sffToCA's readsff_manifest does.
type Reader struct {
	dec      *byteDecoder
	closer   io.Closer
	Header   Header
	Manifest string

	nextRead  uint32
	manifestDone bool
}

// maxBytesPerRead bounds the four per-base vectors (flow index, bases,
// quality, and the derived printable-quality copy) a single read may
// request, guarding against a corrupt length field demanding an absurd
// allocation (§4.2 "FormatInvalid").
const maxBytesPerRead = sffcore.MaxReadLen * 4

// NewReader decodes the fixed header, flow_chars, key_sequence, header
// padding, and (if positioned there) the manifest. The supplied io.Reader
// need not be seekable; closer, if non-nil, is closed by Reader.Close.
func NewReader(r io.Reader, closer io.Closer) (*Reader, error) {
	rd := &Reader{dec: newByteDecoder(r), closer: closer}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	if err := rd.tryManifest(); err != nil {
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) readHeader() error {
	d := rd.dec
	h := &rd.Header

	magic, err := d.readMagicAndSetSwap()
	if err != nil {
		return err
	}
	h.Magic = magic

	ver, err := d.readBytes(4)
	if err != nil {
		return err
	}
	copy(h.Version[:], ver)

	if h.IndexOffset, err = d.readUint64(); err != nil {
		return err
	}
	if h.IndexLength, err = d.readUint32(); err != nil {
		return err
	}
	if h.NumberOfReads, err = d.readUint32(); err != nil {
		return err
	}
	if h.HeaderLength, err = d.readUint16(); err != nil {
		return err
	}
	if h.KeyLength, err = d.readUint16(); err != nil {
		return err
	}
	if h.NumberOfFlowsPerRead, err = d.readUint16(); err != nil {
		return err
	}
	if h.FlowgramFormatCode, err = d.readUint8(); err != nil {
		return err
	}

	if h.FlowChars, err = d.readBytes(int(h.NumberOfFlowsPerRead)); err != nil {
		return err
	}
	if h.KeySequence, err = d.readBytes(int(h.KeyLength)); err != nil {
		return err
	}

	// Fixed header is 31 bytes (magic 4 + version 4 + index_offset 8 +
	// index_length 4 + number_of_reads 4 + header_length 2 + key_length 2 +
	// number_of_flows_per_read 2 + flowgram_format_code 1).
	const fixedHeaderBytes = 31
	payload := int(h.NumberOfFlowsPerRead) + int(h.KeyLength)
	pad := int(h.HeaderLength) - fixedHeaderBytes - payload
	if pad < 0 {
		return sffcore.Newf(sffcore.FormatInvalid, "header_length %d too small for fixed fields", h.HeaderLength)
	}
	if pad > 0 {
		if _, err := d.readBytes(pad); err != nil {
			return err
		}
	}
	return nil
}

// tryManifest reads the manifest if it has not been read yet and the stream
// is positioned at Header.IndexOffset. NewReader calls it right after the
// header (valid but not canonical); Next calls it again after the last read
// (the canonical position).
func (rd *Reader) tryManifest() error {
	if rd.manifestDone || rd.Header.IndexLength == 0 {
		return nil
	}
	if rd.dec.nRead != int64(rd.Header.IndexOffset) {
		return nil
	}
	return rd.readManifest()
}

func (rd *Reader) readManifest() error {
	d := rd.dec

	magic, err := d.readUint32()
	if err != nil {
		return err
	}
	if _, err := d.readBytes(4); err != nil { // version
		return err
	}
	manifestLength, err := d.readUint32()
	if err != nil {
		return err
	}
	if _, err := d.readUint32(); err != nil { // reserved
		return err
	}
	if manifestLength > uint32(rd.Header.IndexLength) {
		return sffcore.Newf(sffcore.FormatInvalid, "manifest_length %d exceeds index_length %d", manifestLength, rd.Header.IndexLength)
	}
	text, err := d.readBytes(int(manifestLength))
	if err != nil {
		return err
	}
	_ = magic // the manifest's own magic is not validated (§1 Non-goals).

	const manifestFixedBytes = 16
	pad := int(rd.Header.IndexLength) - manifestFixedBytes - int(manifestLength)
	if pad > 0 {
		if _, err := d.readBytes(pad); err != nil {
			return err
		}
	}
	rd.Manifest = string(text)
	rd.manifestDone = true
	return nil
}

// Next decodes the next read record. It returns io.EOF once
// Header.NumberOfReads records have been returned, after which it attempts
// the manifest at its canonical position (end of the read stream) if it
// was not already consumed after the header.
func (rd *Reader) Next() (*Read, error) {
	if rd.nextRead >= rd.Header.NumberOfReads {
		if err := rd.tryManifest(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r, err := rd.readOneRecord()
	if err != nil {
		return nil, err
	}
	rd.nextRead++
	if rd.nextRead >= rd.Header.NumberOfReads {
		if mErr := rd.tryManifest(); mErr != nil {
			return nil, mErr
		}
	}
	return r, nil
}

func (rd *Reader) readOneRecord() (*Read, error) {
	d := rd.dec
	var r Read

	readHeaderLength, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	nameLength, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	numberOfBases, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if numberOfBases > maxBytesPerRead {
		return nil, sffcore.Newf(sffcore.FormatInvalid, "number_of_bases %d exceeds limit", numberOfBases)
	}
	if r.ClipQualityLeft, err = d.readUint16(); err != nil {
		return nil, err
	}
	if r.ClipQualityRight, err = d.readUint16(); err != nil {
		return nil, err
	}
	if r.ClipAdapterLeft, err = d.readUint16(); err != nil {
		return nil, err
	}
	if r.ClipAdapterRight, err = d.readUint16(); err != nil {
		return nil, err
	}

	r.NameLength = int(nameLength)
	r.NumberOfBases = int(numberOfBases)

	nameBytes, err := d.readBytes(r.NameLength)
	if err != nil {
		return nil, err
	}
	r.Name = string(nameBytes)

	const readHeaderFixedBytes = 16
	headerPad := int(readHeaderLength) - readHeaderFixedBytes - r.NameLength
	if headerPad < 0 {
		return nil, sffcore.Newf(sffcore.FormatInvalid, "read_header_length %d too small for name %q", readHeaderLength, r.Name)
	}
	if headerPad > 0 {
		if _, err := d.readBytes(headerPad); err != nil {
			return nil, err
		}
	}

	nFlows := int(rd.Header.NumberOfFlowsPerRead)
	r.FlowgramValues = make([]uint16, nFlows)
	for i := 0; i < nFlows; i++ {
		if r.FlowgramValues[i], err = d.readUint16(); err != nil {
			return nil, err
		}
	}

	if r.FlowIndexPerBase, err = d.readBytes(r.NumberOfBases); err != nil {
		return nil, err
	}
	if r.Bases, err = d.readBytes(r.NumberOfBases); err != nil {
		return nil, err
	}
	rawQual, err := d.readBytes(r.NumberOfBases)
	if err != nil {
		return nil, err
	}
	r.QualityScores = make([]byte, r.NumberOfBases)
	for i, q := range rawQual {
		r.QualityScores[i] = q + '0'
	}

	payload := nFlows*2 + r.NumberOfBases*1 + r.NumberOfBases*1 + r.NumberOfBases*1
	if err := d.skipPad(payload); err != nil {
		return nil, err
	}

	return &r, nil
}

// Close releases the underlying input, closing the spawned decompressor
// (if any) the way OpenInput's caller expects.
func (rd *Reader) Close() error {
	if rd.closer != nil {
		return rd.closer.Close()
	}
	return nil
}
