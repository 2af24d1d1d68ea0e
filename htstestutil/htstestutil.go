// Package htstestutil registers test comparators for this module's record
// types, the way github.com/Schaudge/hts's own htstestutil registers one
// for sam.Record: a single sync.Once-guarded RegisterComparator call so
// every package's tests can diff whole readstore.Record values with
// github.com/grailbio/testutil/h instead of field-by-field assertions.
package htstestutil

import (
	"sync"

	"github.com/grailbio/testutil/h"

	"github.com/Schaudge/sff2frg/readstore"
)

var once sync.Once

// RegisterRecordComparator adds an h comparator for readstore.Record. This
// function is threadsafe and idempotent.
func RegisterRecordComparator() {
	once.Do(func() {
		h.RegisterComparator(func(f0, f1 readstore.Record) (int, error) {
			if f0.Equal(&f1) {
				return 0, nil
			}
			return 1, nil
		})
	})
}
