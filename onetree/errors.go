package onetree

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingFeature is returned when evaluation visits a tree whose
	// feature is absent from the assignment.
	ErrMissingFeature = errors.New("missing feature")

	// ErrInvariantViolation indicates that a split could not be resolved
	// against a tree, which means the split set is corrupted.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrResourceExhausted is returned when simplification exceeds one of the
	// configured budgets.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrMalformed is returned for nodes which break the structural
	// invariants of trees and forests.
	ErrMalformed = errors.New("malformed node")
)

func unknownNode(n interface{}) string {
	return fmt.Sprintf("unexpected node type: %T", n)
}
