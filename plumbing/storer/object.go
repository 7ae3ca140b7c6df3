package storer

import (
	"errors"
	"io"

	"github.com/forgevcs/forge/plumbing"
)

// ErrStop is used to stop a ForEach function in an Iter.
var ErrStop = errors.New("stop iter")

// Transaction is an in-progress write against an EncodedObjectStorer. All
// objects added through a Transaction become visible atomically when
// Commit is called, or not at all if Rollback is called instead.
type Transaction interface {
	SetEncodedObject(plumbing.EncodedObject) (plumbing.Hash, error)
	Commit() error
	Rollback() error
}

// EncodedObjectStorer generic storage of objects.
type EncodedObjectStorer interface {
	// NewEncodedObject returns a new zero EncodedObject compatible with the
	// storer's object format.
	NewEncodedObject() plumbing.EncodedObject
	// SetEncodedObject saves an object and returns its hash.
	SetEncodedObject(plumbing.EncodedObject) (plumbing.Hash, error)
	// EncodedObject returns the object with the given hash, if t is
	// AnyObject, any object matching the hash is returned.
	EncodedObject(plumbing.ObjectType, plumbing.Hash) (plumbing.EncodedObject, error)
	// IterEncodedObjects returns an iterator for all the objects of the
	// given type.
	IterEncodedObjects(plumbing.ObjectType) (EncodedObjectIter, error)
	// HasEncodedObject returns ErrObjectNotFound if the object doesn't
	// exist.
	HasEncodedObject(plumbing.Hash) error
	// EncodedObjectSize returns the plaintext size of an object.
	EncodedObjectSize(plumbing.Hash) (int64, error)
	// RawObjectWriter returns a writer that streams a pre-encoded object of
	// the given type and size directly into storage.
	RawObjectWriter(plumbing.ObjectType, int64) (io.WriteCloser, error)
	// Begin starts a Transaction.
	Begin() Transaction
	// AddAlternate registers another object store to fall back to when a
	// lookup misses locally (used by shared/alternate object directories).
	AddAlternate(remote string) error
}

// DeltaObjectStorer is an optional extension for EncodedObjectStorer that
// can return delta objects without resolving their base chain.
type DeltaObjectStorer interface {
	DeltaObject(plumbing.ObjectType, plumbing.Hash) (plumbing.EncodedObject, error)
}

// EncodedObjectIter is a generic closable interface for iterating over
// objects.
type EncodedObjectIter interface {
	Next() (plumbing.EncodedObject, error)
	ForEach(func(plumbing.EncodedObject) error) error
	Close()
}

type encodedObjectSliceIter struct {
	series []plumbing.EncodedObject
}

// NewEncodedObjectSliceIter returns an EncodedObjectIter over a fixed
// slice, in order.
func NewEncodedObjectSliceIter(series []plumbing.EncodedObject) EncodedObjectIter {
	return &encodedObjectSliceIter{series: series}
}

func (i *encodedObjectSliceIter) Next() (plumbing.EncodedObject, error) {
	if len(i.series) == 0 {
		return nil, io.EOF
	}

	o := i.series[0]
	i.series = i.series[1:]
	return o, nil
}

func (i *encodedObjectSliceIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	for {
		o, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(o); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *encodedObjectSliceIter) Close() {
	i.series = nil
}

type encodedObjectLookupIter struct {
	storer EncodedObjectStorer
	typ    plumbing.ObjectType
	hashes []plumbing.Hash
	pos    int
}

// NewEncodedObjectLookupIter returns an EncodedObjectIter that fetches each
// hash in series from storer, lazily, as Next is called.
func NewEncodedObjectLookupIter(storer EncodedObjectStorer, typ plumbing.ObjectType, hashes []plumbing.Hash) EncodedObjectIter {
	return &encodedObjectLookupIter{storer: storer, typ: typ, hashes: hashes}
}

func (i *encodedObjectLookupIter) Next() (plumbing.EncodedObject, error) {
	if i.pos >= len(i.hashes) {
		return nil, io.EOF
	}

	o, err := i.storer.EncodedObject(i.typ, i.hashes[i.pos])
	i.pos++
	return o, err
}

func (i *encodedObjectLookupIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	for {
		o, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(o); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *encodedObjectLookupIter) Close() {
	i.pos = len(i.hashes)
}

type multiEncodedObjectIter struct {
	iters []EncodedObjectIter
}

// NewMultiEncodedObjectIter flattens a sequence of EncodedObjectIters into
// one, exhausting each in turn.
func NewMultiEncodedObjectIter(iters []EncodedObjectIter) EncodedObjectIter {
	return &multiEncodedObjectIter{iters: iters}
}

func (i *multiEncodedObjectIter) Next() (plumbing.EncodedObject, error) {
	for len(i.iters) > 0 {
		o, err := i.iters[0].Next()
		if err == io.EOF {
			i.iters[0].Close()
			i.iters = i.iters[1:]
			continue
		}
		return o, err
	}

	return nil, io.EOF
}

func (i *multiEncodedObjectIter) ForEach(cb func(plumbing.EncodedObject) error) error {
	for {
		o, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(o); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *multiEncodedObjectIter) Close() {
	for _, it := range i.iters {
		it.Close()
	}
	i.iters = nil
}
