package index

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length disagrees
	// with the vectors already stored in the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
