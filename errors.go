package strata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed call such as a wrong number of
	// image crop values or an unknown pattern repetition.
	ErrInvalidArgument = errors.New("strata: invalid argument")

	// ErrUnsupportedFormat is returned by Export for unknown encodings.
	ErrUnsupportedFormat = errors.New("strata: unsupported export format")

	// ErrNotGroup is returned when a child operation targets a primitive.
	ErrNotGroup = errors.New("strata: node is not a group")

	// ErrCycle is returned when an add would make a node its own ancestor.
	ErrCycle = errors.New("strata: node cannot be its own ancestor")
)

// RenderError describes a failure to paint a single primitive.
type RenderError struct {
	Op     string // "fill", "stroke", "text", "image", "clip" or "panic"
	NodeID NodeID
	Shape  string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("strata: %s %s (%s): %v", e.Op, e.NodeID, e.Shape, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func newRenderError(op string, n *Node, err error) *RenderError {
	shape := n.kind.String()
	if n.shape != nil {
		shape = n.shape.Kind()
	}
	return &RenderError{Op: op, NodeID: n.id, Shape: shape, Err: err}
}
