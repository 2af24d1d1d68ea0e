// Package library holds the single per-run LibraryRecord (§3) and the
// -linker name table (§6).
package library

import "github.com/Schaudge/sff2frg/internal/sffcore"

// Record is the run's single library (§3: "Exactly one per run").
type Record struct {
	UID         sffcore.UID
	Mean        int
	StdDev      int
	Orientation sffcore.Orientation

	// Policy bits written verbatim into the LIB record (§6). They are
	// fixed constants for this core, not configurable.
	ForceBOGUnitigger         bool
	DiscardReadsWithNs        bool
	DoNotQVTrim               bool
	GoodBadQVThreshold        int
	DeletePerfectPrefixes     bool
	DoNotTrustHomopolymerRuns bool
	HPSIsFlowGram             bool
	IsNotRandom               bool
	DoNotOverlapTrim          bool
}

// New builds the run's LibraryRecord. Orientation and insert-size
// parameters are INNIE/(mean,stddev) when a linker was given, else
// UNKNOWN/(0,0), matching §6.
func New(uid sffcore.UID, linker string, mean, stddev int) Record {
	r := Record{
		UID:                       uid,
		ForceBOGUnitigger:         true,
		DiscardReadsWithNs:        true,
		DoNotQVTrim:               true,
		GoodBadQVThreshold:        1,
		DeletePerfectPrefixes:     true,
		DoNotTrustHomopolymerRuns: true,
		HPSIsFlowGram:             true,
		IsNotRandom:               false,
		DoNotOverlapTrim:          false,
	}
	if linker == "" {
		r.Orientation = sffcore.OrientUnknown
		r.Mean, r.StdDev = 0, 0
	} else {
		r.Orientation = sffcore.OrientInnie
		r.Mean, r.StdDev = mean, stddev
	}
	return r
}

// Named linker probes (§6). "titanium" is an alias for "fix".
const (
	LinkerFLX = "GTTGGAACCGAAAGGGTTTGAATTCAAACCCTTTCGGTTCCAAC"
	LinkerFIX = "TCGTATAACTTCGTATAATGTATGCTATACGAAGTTATTACG"
)

// ResolveLinker expands a -linker argument: "flx", "fix", and "titanium"
// (case-insensitive) map to the named probes above; anything else is
// returned unchanged as an arbitrary DNA probe sequence.
func ResolveLinker(name string) string {
	switch lower(name) {
	case "flx":
		return LinkerFLX
	case "fix", "titanium":
		return LinkerFIX
	default:
		return name
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
