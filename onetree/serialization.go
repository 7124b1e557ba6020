package onetree

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

const (
	tagLeaf uint8 = iota
	tagTree
	tagForest
)

// maxEncodedLength bounds the length prefixes accepted by ReadNode.
const maxEncodedLength = 1 << 24

// WriteNode serializes a node in a 64-bit precision binary format.
//
// Trees are stored by their interior cut points, so the splits must satisfy
// the usual invariants.
func WriteNode[F constraints.Float](w io.Writer, n Node[F]) error {
	if err := writeNode(w, n); err != nil {
		return errors.Wrap(err, "write node")
	}
	return nil
}

func writeNode[F constraints.Float](w io.Writer, n Node[F]) error {
	switch n := n.(type) {
	case *Leaf[F]:
		if err := binary.Write(w, binary.LittleEndian, tagLeaf); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, float64(n.Value))
	case *Tree[F]:
		if err := binary.Write(w, binary.LittleEndian, tagTree); err != nil {
			return err
		}
		if err := writeString(w, n.Feature); err != nil {
			return err
		}
		if err := writeLength(w, len(n.Children)); err != nil {
			return err
		}
		cuts := make([]float64, 0, len(n.Splits)-1)
		for _, s := range n.Splits[1:] {
			cuts = append(cuts, float64(s.Min))
		}
		if len(cuts) > 0 {
			if err := binary.Write(w, binary.LittleEndian, cuts); err != nil {
				return err
			}
		}
		for _, child := range n.Children {
			if err := writeNode(w, child); err != nil {
				return err
			}
		}
		return nil
	case *Forest[F]:
		if err := binary.Write(w, binary.LittleEndian, tagForest); err != nil {
			return err
		}
		if err := writeLength(w, len(n.Trees)); err != nil {
			return err
		}
		for _, t := range n.Trees {
			if err := writeNode(w, t); err != nil {
				return err
			}
		}
		return nil
	default:
		panic(unknownNode(n))
	}
}

func writeLength(w io.Writer, n int) error {
	return binary.Write(w, binary.LittleEndian, uint32(n))
}

func writeString(w io.Writer, s string) error {
	if err := writeLength(w, len(s)); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadNode reads the output written by WriteNode.
func ReadNode[F constraints.Float](r io.Reader) (Node[F], error) {
	res, err := readNode[F](r)
	if err != nil {
		return nil, errors.Wrap(err, "read node")
	}
	return res, nil
}

func readNode[F constraints.Float](r io.Reader) (Node[F], error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	switch tag {
	case tagLeaf:
		var value float64
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return nil, err
		}
		return &Leaf[F]{Value: F(value)}, nil
	case tagTree:
		feature, err := readString(r)
		if err != nil {
			return nil, err
		}
		numChildren, err := readLength(r)
		if err != nil {
			return nil, err
		}
		if numChildren == 0 {
			return nil, errors.Wrapf(ErrMalformed, "tree on %q has no children", feature)
		}
		rawCuts := make([]float64, numChildren-1)
		if len(rawCuts) > 0 {
			if err := binary.Read(r, binary.LittleEndian, rawCuts); err != nil {
				return nil, err
			}
		}
		cuts := make([]F, len(rawCuts))
		for i, x := range rawCuts {
			cuts[i] = F(x)
		}
		children, err := readNodes[F](r, numChildren)
		if err != nil {
			return nil, err
		}
		tree, err := NewTree(feature, cuts, children)
		if err != nil {
			return nil, err
		}
		return tree, nil
	case tagForest:
		numTrees, err := readLength(r)
		if err != nil {
			return nil, err
		}
		trees, err := readNodes[F](r, numTrees)
		if err != nil {
			return nil, err
		}
		forest, err := NewForest(trees...)
		if err != nil {
			return nil, err
		}
		return forest, nil
	default:
		return nil, errors.Errorf("unknown node tag: %d", tag)
	}
}

func readNodes[F constraints.Float](r io.Reader, count int) ([]Node[F], error) {
	res := make([]Node[F], count)
	for i := range res {
		var err error
		res[i], err = readNode[F](r)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func readLength(r io.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	if n > maxEncodedLength {
		return 0, errors.Errorf("length %d is too large", n)
	}
	return int(n), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readLength(r)
	if err != nil {
		return "", err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

// Load opens a file and decodes it with the given function.
func Load[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, errors.Wrap(err, "load")
	}
	defer f.Close()
	res, err := read(f)
	if err != nil {
		return zero, errors.Wrapf(err, "load %s", path)
	}
	return res, nil
}

// Save creates a file and encodes obj into it with the given function.
func Save[T any](path string, obj T, write func(io.Writer, T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save")
	}
	if err := write(f, obj); err != nil {
		f.Close()
		return errors.Wrapf(err, "save %s", path)
	}
	return errors.Wrap(f.Close(), "save")
}
