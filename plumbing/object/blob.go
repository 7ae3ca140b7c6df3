package object

import (
	"io"

	"github.com/forgevcs/forge/plumbing"
)

// Blob is a binary blob of content: the payload of a file at a point in
// history. Blobs carry no metadata of their own; name and mode live in the
// tree entry that references them.
type Blob struct {
	Hash plumbing.Hash
	Size int64

	obj plumbing.EncodedObject
}

// ID returns the blob's hash.
func (b *Blob) ID() plumbing.Hash { return b.Hash }

// Type returns plumbing.BlobObject.
func (b *Blob) Type() plumbing.ObjectType { return plumbing.BlobObject }

// Decode transforms an EncodedObject into a Blob struct. It only records
// the object's identity and size; the content is read lazily via Reader.
func (b *Blob) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.BlobObject {
		return plumbing.ErrInvalidType
	}

	b.Hash = o.Hash()
	b.Size = o.Size()
	b.obj = o
	return nil
}

// Encode transforms a Blob into an EncodedObject, copying its content.
func (b *Blob) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.BlobObject)

	r, err := b.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := io.Copy(w, r); err != nil {
		return err
	}

	return nil
}

// Reader returns a reader over the blob's content.
func (b *Blob) Reader() (io.ReadCloser, error) {
	return b.obj.Reader()
}
