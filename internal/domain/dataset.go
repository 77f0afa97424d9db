package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDatasetRef is returned when a dataset identifier is not of the form owner/name
var ErrInvalidDatasetRef = errors.New("invalid dataset identifier")

// DatasetRef identifies a remote dataset as owner/name
type DatasetRef struct {
	Owner string
	Name  string
}

// ParseDatasetRef validates and splits an owner/name identifier.
// Exactly one separator and two non-empty segments are required.
func ParseDatasetRef(s string) (DatasetRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return DatasetRef{}, fmt.Errorf("%w: %q", ErrInvalidDatasetRef, s)
	}
	return DatasetRef{Owner: parts[0], Name: parts[1]}, nil
}

// String returns the owner/name form
func (r DatasetRef) String() string {
	return r.Owner + "/" + r.Name
}

// DatasetSet is an unordered set of dataset identifiers
type DatasetSet map[string]struct{}

// NewDatasetSet creates a set from the given identifiers
func NewDatasetSet(refs ...string) DatasetSet {
	s := make(DatasetSet, len(refs))
	for _, ref := range refs {
		s.Add(ref)
	}
	return s
}

// Add inserts an identifier
func (s DatasetSet) Add(ref string) {
	s[ref] = struct{}{}
}

// Has reports whether ref is in the set
func (s DatasetSet) Has(ref string) bool {
	_, ok := s[ref]
	return ok
}

// Len returns the number of identifiers
func (s DatasetSet) Len() int {
	return len(s)
}
