package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// IDFunc produces candidate node ids. Candidates already present in a graph
// are discarded, so an IDFunc only needs to be unlikely to repeat.
type IDFunc func() string

// RandomID is the default IDFunc
func RandomID() string {
	return uuid.NewString()
}

// SequentialIDs returns an IDFunc yielding prefix1, prefix2, ... for
// deterministic fixtures
func SequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
