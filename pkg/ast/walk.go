// Package ast provides traversal and shape matching over tree-sitter syntax
// trees of TypeScript and JavaScript sources.
package ast

import (
	"errors"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// SkipChildren is returned by a WalkFunc to leave a node's subtree unvisited.
var SkipChildren = errors.New("skip children")

// SkipAll is returned by a WalkFunc to stop the walk without reporting an error.
var SkipAll = errors.New("skip all")

// WalkFunc is called for every named node in pre-order.
//
// Returning SkipChildren prunes the subtree, SkipAll ends the walk, and any
// other non-nil error aborts the walk and is returned by Walk.
type WalkFunc func(n *ts.Node) error

// Walk visits root and its named descendants depth-first, parents before
// children and siblings in source order.
func Walk(root *ts.Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	err := walk(root, fn)
	if err == SkipAll {
		return nil
	}
	return err
}

func walk(n *ts.Node, fn WalkFunc) error {
	if err := fn(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if err := walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}
