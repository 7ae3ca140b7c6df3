package storer

import (
	"io"

	"github.com/forgevcs/forge/plumbing"
)

// ReferenceStorer is a generic storage of references.
type ReferenceStorer interface {
	SetReference(*plumbing.Reference) error
	// CheckAndSetReference sets the reference only if old matches the
	// reference currently stored under the same name (or is nil and no
	// reference is currently stored), used to implement a compare-and-swap
	// update.
	CheckAndSetReference(new, old *plumbing.Reference) error
	Reference(plumbing.ReferenceName) (*plumbing.Reference, error)
	IterReferences() (ReferenceIter, error)
	RemoveReference(plumbing.ReferenceName) error
	CountLooseRefs() (int, error)
	PackRefs() error
}

// ReferenceIter is a generic closable interface for iterating over
// references.
type ReferenceIter interface {
	Next() (*plumbing.Reference, error)
	ForEach(func(*plumbing.Reference) error) error
	Close()
}

// ResolveReference resolves a reference to a direct (hash) reference,
// following symbolic references until one is found, bounded to 10 hops to
// guard against a reference cycle.
func ResolveReference(s ReferenceStorer, n plumbing.ReferenceName) (*plumbing.Reference, error) {
	r, err := s.Reference(n)
	if err != nil || r == nil {
		return r, err
	}

	for i := 0; i < 10 && r.Type() == plumbing.SymbolicReference; i++ {
		r, err = s.Reference(r.Target())
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

type referenceSliceIter struct {
	series []*plumbing.Reference
	pos    int
}

// NewReferenceSliceIter returns a ReferenceIter over a fixed slice of
// references, in order. The slice is not copied and must not be mutated
// while the iterator is in use.
func NewReferenceSliceIter(series []*plumbing.Reference) ReferenceIter {
	return &referenceSliceIter{series: series}
}

func (i *referenceSliceIter) Next() (*plumbing.Reference, error) {
	if i.pos >= len(i.series) {
		return nil, io.EOF
	}

	r := i.series[i.pos]
	i.pos++
	return r, nil
}

func (i *referenceSliceIter) ForEach(cb func(*plumbing.Reference) error) error {
	for {
		r, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(r); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *referenceSliceIter) Close() {
	i.pos = len(i.series)
}

type referenceFilteredIter struct {
	keep func(*plumbing.Reference) bool
	iter ReferenceIter
}

// NewReferenceFilteredIter returns a ReferenceIter that only yields the
// references from iter for which keep returns true.
func NewReferenceFilteredIter(keep func(*plumbing.Reference) bool, iter ReferenceIter) ReferenceIter {
	return &referenceFilteredIter{keep: keep, iter: iter}
}

func (i *referenceFilteredIter) Next() (*plumbing.Reference, error) {
	for {
		r, err := i.iter.Next()
		if err != nil {
			return nil, err
		}

		if i.keep(r) {
			return r, nil
		}
	}
}

func (i *referenceFilteredIter) ForEach(cb func(*plumbing.Reference) error) error {
	for {
		r, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(r); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *referenceFilteredIter) Close() {
	i.iter.Close()
}

type multiReferenceIter struct {
	iters []ReferenceIter
}

// NewMultiReferenceIter flattens a sequence of ReferenceIters into one,
// exhausting each in turn.
func NewMultiReferenceIter(iters []ReferenceIter) ReferenceIter {
	return &multiReferenceIter{iters: iters}
}

func (i *multiReferenceIter) Next() (*plumbing.Reference, error) {
	for len(i.iters) > 0 {
		r, err := i.iters[0].Next()
		if err == io.EOF {
			i.iters[0].Close()
			i.iters = i.iters[1:]
			continue
		}
		return r, err
	}

	return nil, io.EOF
}

func (i *multiReferenceIter) ForEach(cb func(*plumbing.Reference) error) error {
	for {
		r, err := i.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(r); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}

func (i *multiReferenceIter) Close() {
	for _, it := range i.iters {
		it.Close()
	}
	i.iters = nil
}
