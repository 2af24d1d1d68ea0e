// Package sffcore holds the types shared by every stage of the sff2frg
// pipeline: the UID/IID identifier types, the clear-range and orientation
// enums, the error taxonomy, and the explicit run context that replaces the
// reference implementation's process-wide globals.
package sffcore

import "fmt"

// AS_READ_MIN_LEN and AS_READ_MAX_LEN bound every live read's sequence
// length (invariant I7). MinReadLen is fixed at 48 because the duplicate
// fingerprint (see the filter package) consumes exactly the first 48 bases
// of every live read.
const (
	MinReadLen = 48
	MaxReadLen = 2048
)

// UID is the external, opaque identifier derived from an SFF read name or
// supplied on the command line for the library. The zero value is the
// distinguished "undefined" UID.
type UID string

// UndefinedUID is the distinguished UID value meaning "no identifier".
const UndefinedUID UID = ""

// IsDefined reports whether u is a real, assigned identifier.
func (u UID) IsDefined() bool { return u != UndefinedUID }

// IID is the internal, monotonically increasing identifier a ReadStore
// assigns at insertion. Zero means "no such read".
type IID uint32

// NoIID is the reserved "no such read" value.
const NoIID IID = 0

// Orientation is the mate-pair orientation of a read or library.
type Orientation int

const (
	// OrientUnknown is used for unmated reads and libraries with no linker.
	OrientUnknown Orientation = iota
	// OrientInnie is used for mates produced by a linker split: both mates
	// point toward each other across the insert.
	OrientInnie
)

// Code returns the single-character orientation code used in the fragment
// message protocol's link_orient field.
func (o Orientation) Code() byte {
	if o == OrientInnie {
		return 'I'
	}
	return 'U'
}

func (o Orientation) String() string {
	if o == OrientInnie {
		return "INNIE"
	}
	return "UNKNOWN"
}

// ClearKind enumerates the four clear-range pairs a read record carries.
type ClearKind int

const (
	ClearLatest ClearKind = iota
	ClearOBT
	ClearQLT
	ClearVEC
	numClearKinds
)

// NumClearKinds is the number of clear-range pairs per record.
const NumClearKinds = int(numClearKinds)

// ClearRange is a half-open interval [Beg, End). The empty encoding is
// (1, 0), used when a clear range kind has not been set.
type ClearRange struct {
	Beg, End int
}

// EmptyClearRange is the canonical "unset" encoding.
var EmptyClearRange = ClearRange{Beg: 1, End: 0}

// IsEmpty reports whether c carries the empty encoding.
func (c ClearRange) IsEmpty() bool { return c.Beg > c.End }

// ErrorKind is the error taxonomy of §7.
type ErrorKind int

const (
	IoTruncated ErrorKind = iota
	IoUnreadable
	IoUnwritable
	BadMagic
	FormatInvalid
	DuplicateUid
	ReadTooShort
	ReadTooLong
	ReadContainsN
	PrefixDuplicate
	LinkerAmbiguous
)

var errorKindNames = map[ErrorKind]string{
	IoTruncated:     "IoTruncated",
	IoUnreadable:    "IoUnreadable",
	IoUnwritable:    "IoUnwritable",
	BadMagic:        "BadMagic",
	FormatInvalid:   "FormatInvalid",
	DuplicateUid:    "DuplicateUid",
	ReadTooShort:    "ReadTooShort",
	ReadTooLong:     "ReadTooLong",
	ReadContainsN:   "ReadContainsN",
	PrefixDuplicate: "PrefixDuplicate",
	LinkerAmbiguous: "LinkerAmbiguous",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Fatal reports whether an error of this kind must abort the process (§7).
// Recoverable kinds are logged and processing continues.
func (k ErrorKind) Fatal() bool {
	switch k {
	case IoTruncated, IoUnreadable, IoUnwritable, BadMagic, FormatInvalid:
		return true
	default:
		return false
	}
}

// Error is the uniform error sum type at subsystem boundaries (§9 Design
// Note: "replace ad-hoc exit(1) calls with a uniform error sum type").
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sff2frg: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("sff2frg: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// Newf constructs an *Error of the given kind with a formatted message.
func Newf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}
