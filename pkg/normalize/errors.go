package normalize

import (
	"errors"
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrUnsupportedAnnotationShape is returned when an annotation is not a
	// call, or a call's callee is neither an identifier nor a member chain.
	ErrUnsupportedAnnotationShape = errors.New("unsupported annotation shape")

	// ErrUnsupportedInitializerShape is returned when a $-field initializer
	// is not an array literal.
	ErrUnsupportedInitializerShape = errors.New("unsupported initializer shape")
)

// NodeError ties a normalization failure to the offending node.
type NodeError struct {
	Err    error
	Kind   string
	Offset int
	Text   string
}

func newNodeError(err error, n *ts.Node, src []byte) *NodeError {
	e := &NodeError{Err: err}
	if n != nil {
		e.Kind = n.Kind()
		e.Offset = int(n.StartByte())
		e.Text = n.Utf8Text(src)
		if len(e.Text) > 80 {
			e.Text = e.Text[:80] + "..."
		}
	}
	return e
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%v: %s %q at byte %d", e.Err, e.Kind, e.Text, e.Offset)
}

func (e *NodeError) Unwrap() error { return e.Err }
