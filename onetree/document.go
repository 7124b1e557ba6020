package onetree

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

// A Document is the JSON and YAML form of a node.
//
// Exactly one of Leaf, Feature, or Trees is set. Trees are described by their
// interior cut points, so a tree with n cuts has n+1 children.
type Document struct {
	Leaf     *float64    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Feature  string      `json:"feature,omitempty" yaml:"feature,omitempty"`
	Cuts     []float64   `json:"cuts,omitempty" yaml:"cuts,omitempty,flow"`
	Children []*Document `json:"children,omitempty" yaml:"children,omitempty"`
	Trees    []*Document `json:"trees,omitempty" yaml:"trees,omitempty"`
}

// NewDocument converts a node into its document form.
func NewDocument[F constraints.Float](n Node[F]) *Document {
	switch n := n.(type) {
	case *Leaf[F]:
		value := float64(n.Value)
		return &Document{Leaf: &value}
	case *Tree[F]:
		doc := &Document{Feature: n.Feature}
		for _, s := range n.Splits[1:] {
			doc.Cuts = append(doc.Cuts, float64(s.Min))
		}
		for _, child := range n.Children {
			doc.Children = append(doc.Children, NewDocument(child))
		}
		return doc
	case *Forest[F]:
		doc := &Document{}
		for _, t := range n.Trees {
			doc.Trees = append(doc.Trees, NewDocument(t))
		}
		return doc
	default:
		panic(unknownNode(n))
	}
}

// DocumentNode converts a document into a node, checking every structural
// invariant along the way.
func DocumentNode[F constraints.Float](d *Document) (Node[F], error) {
	if d == nil {
		return nil, errors.Wrap(ErrMalformed, "empty document")
	}
	var numKinds int
	for _, isSet := range []bool{d.Leaf != nil, d.Feature != "", len(d.Trees) > 0} {
		if isSet {
			numKinds++
		}
	}
	if numKinds != 1 {
		return nil, errors.Wrap(ErrMalformed, "document must have exactly one of leaf, feature, or trees")
	}

	if d.Leaf != nil {
		return &Leaf[F]{Value: F(*d.Leaf)}, nil
	} else if d.Feature != "" {
		cuts := make([]F, len(d.Cuts))
		for i, x := range d.Cuts {
			cuts[i] = F(x)
		}
		children, err := documentNodes[F](d.Children)
		if err != nil {
			return nil, err
		}
		t, err := NewTree(d.Feature, cuts, children)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	trees, err := documentNodes[F](d.Trees)
	if err != nil {
		return nil, err
	}
	f, err := NewForest(trees...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func documentNodes[F constraints.Float](docs []*Document) ([]Node[F], error) {
	res := make([]Node[F], len(docs))
	for i, d := range docs {
		var err error
		res[i], err = DocumentNode[F](d)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// WriteJSON encodes a node as an indented JSON document.
func WriteJSON[F constraints.Float](w io.Writer, n Node[F]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(NewDocument(n)), "write json")
}

// ReadJSON decodes a node written by WriteJSON.
func ReadJSON[F constraints.Float](r io.Reader) (Node[F], error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "read json")
	}
	n, err := DocumentNode[F](&d)
	return n, errors.Wrap(err, "read json")
}

// WriteYAML encodes a node as a YAML document.
func WriteYAML[F constraints.Float](w io.Writer, n Node[F]) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(n)); err != nil {
		return errors.Wrap(err, "write yaml")
	}
	return errors.Wrap(enc.Close(), "write yaml")
}

// ReadYAML decodes a node from a YAML document.
func ReadYAML[F constraints.Float](r io.Reader) (Node[F], error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "read yaml")
	}
	n, err := DocumentNode[F](&d)
	return n, errors.Wrap(err, "read yaml")
}
