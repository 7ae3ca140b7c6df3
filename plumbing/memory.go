package plumbing

import (
	"bytes"
	"io"

	format "github.com/forgevcs/forge/plumbing/format/config"
)

// MemoryObject is an EncodedObject implementation backed by an in-memory
// byte slice. It is used to build objects from scratch before writing them
// to a Storer.
type MemoryObject struct {
	typ  ObjectType
	size int64
	cont []byte
	h    *Hash
}

// Hash returns the hash of the object. It is computed lazily from the
// object's type and content the first time it is called, and the result is
// cached: later calls to SetType or SetSize do not change the returned
// hash. If no content has ever been written, ZeroHash is returned.
func (o *MemoryObject) Hash() Hash {
	if o.h == nil {
		if o.cont == nil {
			return ZeroHash
		}

		oh, err := FromObjectFormat(format.SHA1)
		if err != nil {
			return ZeroHash
		}

		h, err := oh.Compute(o.typ, o.cont)
		if err != nil {
			return ZeroHash
		}
		o.h = &h
	}

	return *o.h
}

// Type returns the object's type.
func (o *MemoryObject) Type() ObjectType { return o.typ }

// SetType sets the object's type.
func (o *MemoryObject) SetType(t ObjectType) { o.typ = t }

// Size returns the declared size of the object.
func (o *MemoryObject) Size() int64 { return o.size }

// SetSize sets the declared size of the object. This is metadata only; it
// does not truncate or preallocate the backing content.
func (o *MemoryObject) SetSize(s int64) { o.size = s }

// Reader returns a ReadSeekCloser over the object's content.
func (o *MemoryObject) Reader() (io.ReadCloser, error) {
	return &nopSeekCloser{bytes.NewReader(o.cont)}, nil
}

// Writer returns a WriteCloser that appends to the object's content.
func (o *MemoryObject) Writer() (io.WriteCloser, error) {
	return &memoryObjectWriter{o}, nil
}

type memoryObjectWriter struct {
	o *MemoryObject
}

func (w *memoryObjectWriter) Write(p []byte) (int, error) {
	w.o.cont = append(w.o.cont, p...)
	return len(p), nil
}

func (w *memoryObjectWriter) Close() error { return nil }

// Write appends p to the object's content, implementing io.Writer directly
// on *MemoryObject for convenience.
func (o *MemoryObject) Write(p []byte) (int, error) {
	o.cont = append(o.cont, p...)
	return len(p), nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
