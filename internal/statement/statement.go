// Package statement archives rendered loan statements. A loan has at most
// one archived statement; exporting again replaces it.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNotFound   = errors.New("statement not found")
	ErrInvalidKey = errors.New("invalid statement key")
)

// Store keeps statement bodies under caller-chosen keys.
type Store interface {
	// Put stores r under key, replacing any earlier statement with that key.
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Key names the statement of the loan with the given id and reference.
func Key(loanID int64, reference string) string {
	return fmt.Sprintf("loan_%d_%s.csv", loanID, reference)
}
