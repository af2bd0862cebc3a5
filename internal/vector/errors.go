package vector

import "fmt"

// EncodingError reports that the embedder failed for one item during a
// store build. Builds are all-or-nothing, so a single EncodingError aborts
// the whole build.
type EncodingError struct {
	ItemID string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding item %s: %v", e.ItemID, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DimensionMismatchError reports vectors of differing length being compared
// or loaded. Indicates catalog/embedder version skew; never silently
// truncated or padded.
type DimensionMismatchError struct {
	Want, Got int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}
