package extractor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gnana997/tsstruct/pkg/normalize"
)

var (
	// ErrUnsupportedAnnotationShape is returned for an annotation or
	// decorator that is not a call on an identifier or member chain.
	ErrUnsupportedAnnotationShape = normalize.ErrUnsupportedAnnotationShape

	// ErrUnsupportedInitializerShape is returned when a $-field is
	// initialized with something other than an array literal.
	ErrUnsupportedInitializerShape = normalize.ErrUnsupportedInitializerShape

	// ErrUnknownHeritageToken is returned for a heritage clause that is
	// neither extends nor implements.
	ErrUnknownHeritageToken = errors.New("unknown heritage token")

	// ErrImportPathNotFound is returned when an old-style import resolves
	// to a file that does not exist.
	ErrImportPathNotFound = errors.New("import path not found")
)

// ExtractError locates a fatal extraction failure in a source file.
type ExtractError struct {
	Path string
	// Offset is the byte offset of the offending node; Line is 1-based.
	Offset int
	Line   int
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// locate wraps err with the position of the node it came from. Errors that
// already carry a location pass through unchanged.
func (u *unit) locate(err error, offset int) error {
	if err == nil {
		return nil
	}
	var located *ExtractError
	if errors.As(err, &located) {
		return err
	}
	var nodeErr *normalize.NodeError
	if errors.As(err, &nodeErr) {
		offset = nodeErr.Offset
	}
	if offset > len(u.src) {
		offset = len(u.src)
	}
	return &ExtractError{
		Path:   u.module.Name,
		Offset: offset,
		Line:   bytes.Count(u.src[:offset], []byte("\n")) + 1,
		Err:    err,
	}
}
