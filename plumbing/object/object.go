// Package object implements the typed git objects (commit, tree, blob and
// tag) built on top of the content-addressed plumbing.EncodedObject layer.
package object

import (
	"errors"
	"fmt"
	"io"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/storer"
)

// ErrUnsupportedObject is returned when decoding an object whose type does
// not match the requester's expectations.
var ErrUnsupportedObject = errors.New("unsupported object type")

// Object is the common interface satisfied by Commit, Tree, Blob and Tag.
type Object interface {
	ID() plumbing.Hash
	Type() plumbing.ObjectType
	Decode(o plumbing.EncodedObject) error
	Encode(o plumbing.EncodedObject) error
}

// GetObject looks up and decodes an object of the given type. Pass
// plumbing.AnyObject to accept whatever the store returns.
func GetObject(s storer.EncodedObjectStorer, h plumbing.Hash) (Object, error) {
	eo, err := s.EncodedObject(plumbing.AnyObject, h)
	if err != nil {
		return nil, err
	}
	return DecodeObject(s, eo)
}

// DecodeObject builds a typed Object from an already-fetched EncodedObject.
func DecodeObject(s storer.EncodedObjectStorer, eo plumbing.EncodedObject) (Object, error) {
	switch eo.Type() {
	case plumbing.CommitObject:
		c := &Commit{s: s}
		if err := c.Decode(eo); err != nil {
			return nil, err
		}
		return c, nil
	case plumbing.TreeObject:
		t := &Tree{s: s}
		if err := t.Decode(eo); err != nil {
			return nil, err
		}
		return t, nil
	case plumbing.BlobObject:
		b := &Blob{}
		if err := b.Decode(eo); err != nil {
			return nil, err
		}
		return b, nil
	case plumbing.TagObject:
		t := &Tag{s: s}
		if err := t.Decode(eo); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedObject, eo.Type())
	}
}

// GetCommit fetches and decodes the commit with hash h.
func GetCommit(s storer.EncodedObjectStorer, h plumbing.Hash) (*Commit, error) {
	eo, err := s.EncodedObject(plumbing.CommitObject, h)
	if err != nil {
		return nil, err
	}

	c := &Commit{s: s}
	if err := c.Decode(eo); err != nil {
		return nil, err
	}
	return c, nil
}

// GetTree fetches and decodes the tree with hash h.
func GetTree(s storer.EncodedObjectStorer, h plumbing.Hash) (*Tree, error) {
	eo, err := s.EncodedObject(plumbing.TreeObject, h)
	if err != nil {
		return nil, err
	}

	t := &Tree{s: s}
	if err := t.Decode(eo); err != nil {
		return nil, err
	}
	return t, nil
}

// GetBlob fetches and decodes the blob with hash h.
func GetBlob(s storer.EncodedObjectStorer, h plumbing.Hash) (*Blob, error) {
	eo, err := s.EncodedObject(plumbing.BlobObject, h)
	if err != nil {
		return nil, err
	}

	b := &Blob{}
	if err := b.Decode(eo); err != nil {
		return nil, err
	}
	return b, nil
}

// GetTag fetches and decodes the annotated tag with hash h.
func GetTag(s storer.EncodedObjectStorer, h plumbing.Hash) (*Tag, error) {
	eo, err := s.EncodedObject(plumbing.TagObject, h)
	if err != nil {
		return nil, err
	}

	t := &Tag{s: s}
	if err := t.Decode(eo); err != nil {
		return nil, err
	}
	return t, nil
}

// ObjectIter iterates over a sequence of EncodedObjects, decoding each one
// into its typed representation.
type ObjectIter struct {
	s    storer.EncodedObjectStorer
	iter storer.EncodedObjectIter
}

// NewObjectIter wraps iter, decoding each object through s.
func NewObjectIter(s storer.EncodedObjectStorer, iter storer.EncodedObjectIter) *ObjectIter {
	return &ObjectIter{s: s, iter: iter}
}

// Next returns the next decoded object, or io.EOF when exhausted.
func (i *ObjectIter) Next() (Object, error) {
	for {
		eo, err := i.iter.Next()
		if err != nil {
			return nil, err
		}

		o, err := DecodeObject(i.s, eo)
		if errors.Is(err, ErrUnsupportedObject) {
			continue
		}
		return o, err
	}
}

// ForEach calls cb for every remaining object in the iterator, stopping (and
// returning nil) if cb returns storer.ErrStop.
func (i *ObjectIter) ForEach(cb func(Object) error) error {
	for {
		o, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(o); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

// Close releases the underlying iterator.
func (i *ObjectIter) Close() {
	i.iter.Close()
}
