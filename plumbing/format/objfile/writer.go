// Package objfile implements encoding and decoding of single objects.
//
// Git represents a loose object on disk as a zlib-deflated stream of
// "<type> <size>\x00<content>", the same bytes a Hasher sums to produce the
// object's hash.
package objfile

import (
	"compress/zlib"
	"errors"
	"io"

	"github.com/forgevcs/forge/plumbing"
	format "github.com/forgevcs/forge/plumbing/format/config"
)

var (
	// ErrOverflow is returned when a Writer is given more bytes than were
	// declared in WriteHeader.
	ErrOverflow = errors.New("objfile: write beyond declared size")
	// ErrNegativeSize is returned by WriteHeader when size is negative.
	ErrNegativeSize = errors.New("objfile: negative object size")
)

// Writer writes a single loose object in its on-disk zlib-compressed form,
// tracking the running hash of its plaintext content.
type Writer struct {
	raw    io.Writer
	zw     *zlib.Writer
	hasher plumbing.Hasher

	size      int64
	written   int64
	headerSet bool
	closed    bool
}

// NewWriter returns a Writer that deflates onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{raw: w}
}

// WriteHeader writes the "<type> <size>\x00" header and must be called
// before any call to Write.
func (w *Writer) WriteHeader(t plumbing.ObjectType, size int64) error {
	if !t.Valid() {
		return plumbing.ErrInvalidType
	}

	if size < 0 {
		return ErrNegativeSize
	}

	w.size = size
	w.hasher = plumbing.NewHasher(format.SHA1, t, size)
	w.zw = zlib.NewWriter(w.raw)
	w.headerSet = true

	return nil
}

// Write writes p as object content, deflating it onto the underlying
// writer and folding it into the running hash. It returns ErrOverflow if
// more bytes are written than were declared via WriteHeader.
func (w *Writer) Write(p []byte) (int, error) {
	overflow := w.written+int64(len(p)) - w.size
	if overflow > 0 {
		p = p[:int64(len(p))-overflow]
	}

	n, err := w.zw.Write(p)
	if err != nil {
		return n, err
	}

	w.hasher.Write(p)
	w.written += int64(n)

	if overflow > 0 {
		return n, ErrOverflow
	}

	return n, nil
}

// Hash returns the hash of the object written so far. It is valid to call
// before Close.
func (w *Writer) Hash() plumbing.Hash {
	return w.hasher.Sum()
}

// Close flushes the zlib stream. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return w.zw.Close()
}
