package types

import (
	"fmt"
	"strings"
)

// MissingPathsError reports project directories that could not be
// resolved during deserialization. Paths is non-empty and preserves the
// order in which the directories were discovered missing.
type MissingPathsError struct {
	Paths []string
}

func (e *MissingPathsError) Error() string {
	return fmt.Sprintf("missing project directories: %s", strings.Join(e.Paths, ", "))
}

// NewMissingPathsError builds a MissingPathsError, copying the path list
// so later caller mutations cannot change the report.
func NewMissingPathsError(paths []string) *MissingPathsError {
	copied := make([]string, len(paths))
	copy(copied, paths)
	return &MissingPathsError{Paths: copied}
}
