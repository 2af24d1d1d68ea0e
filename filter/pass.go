package filter

import (
	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/readstore"
)

// Pass is the shape shared by every store-rewriting pass that runs before
// LinkerSplitter: a single scan over the live reads in a Store that may
// mark records deleted.
type Pass func(store *readstore.Store, ctx *sffcore.RunContext) error

// LowQuality and Dedupe are RemoveLowQuality/RemoveDuplicatePrefixes bound
// to the Pass shape; cmd/sff2frg calls them one after the other.
var (
	LowQuality Pass = RemoveLowQuality
	Dedupe     Pass = RemoveDuplicatePrefixes
)
