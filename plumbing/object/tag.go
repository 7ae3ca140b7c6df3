package object

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/storer"
)

// Tag represents an annotated tag: a named, signed pointer to another
// object, most commonly a commit.
type Tag struct {
	Hash         plumbing.Hash
	Name         string
	Tagger       Signature
	Message      string
	PGPSignature string
	TargetType   plumbing.ObjectType
	Target       plumbing.Hash

	s storer.EncodedObjectStorer
}

// GetTag fetches and decodes the annotated tag with hash h.
func GetTag(s storer.EncodedObjectStorer, h plumbing.Hash) (*Tag, error) {
	o, err := s.EncodedObject(plumbing.TagObject, h)
	if err != nil {
		return nil, err
	}

	return DecodeTag(s, o)
}

// DecodeTag decodes o into a Tag, recording s so the tag can later resolve
// its target object.
func DecodeTag(s storer.EncodedObjectStorer, o plumbing.EncodedObject) (*Tag, error) {
	t := &Tag{s: s}
	if err := t.Decode(o); err != nil {
		return nil, err
	}

	return t, nil
}

// ID returns the tag's hash.
func (t *Tag) ID() plumbing.Hash { return t.Hash }

// Type returns plumbing.TagObject.
func (t *Tag) Type() plumbing.ObjectType { return plumbing.TagObject }

// Commit returns the commit pointed to by the tag, or ErrUnsupportedObject
// if the tag doesn't target a commit.
func (t *Tag) Commit() (*Commit, error) {
	if t.TargetType != plumbing.CommitObject {
		return nil, ErrUnsupportedObject
	}

	return GetCommit(t.s, t.Target)
}

// Tree returns the tree pointed to by the tag, resolving through the target
// commit if the tag points at one directly.
func (t *Tag) Tree() (*Tree, error) {
	switch t.TargetType {
	case plumbing.CommitObject:
		c, err := t.Commit()
		if err != nil {
			return nil, err
		}
		return c.Tree()
	case plumbing.TreeObject:
		return GetTree(t.s, t.Target)
	default:
		return nil, ErrUnsupportedObject
	}
}

// Blob returns the blob pointed to by the tag, or ErrUnsupportedObject if
// the tag doesn't target a blob.
func (t *Tag) Blob() (*Blob, error) {
	if t.TargetType != plumbing.BlobObject {
		return nil, ErrUnsupportedObject
	}

	return GetBlob(t.s, t.Target)
}

// Object returns the target object of the tag, whatever its type.
func (t *Tag) Object() (Object, error) {
	o, err := t.s.EncodedObject(t.TargetType, t.Target)
	if err != nil {
		return nil, err
	}

	return DecodeObject(t.s, o)
}

// Decode transforms an EncodedObject into a Tag struct, parsing the
// "object/type/tag/tagger\n\n<message>" header framing git uses. A PGP
// signature, if present, is embedded at the end of the message rather than
// in its own header and is split off via parseSignedBytes.
func (t *Tag) Decode(o plumbing.EncodedObject) (err error) {
	if o.Type() != plumbing.TagObject {
		return ErrUnsupportedObject
	}

	t.Hash = o.Hash()

	reader, err := o.Reader()
	if err != nil {
		return err
	}
	defer ioutilCheckClose(reader, &err)

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	pos := 0
	for pos < len(data) {
		nl := bytes.IndexByte(data[pos:], '\n')
		var line []byte
		var advance int
		if nl < 0 {
			line = data[pos:]
			advance = len(line)
		} else {
			line = data[pos : pos+nl]
			advance = nl + 1
		}

		if len(line) == 0 {
			pos += advance
			break
		}

		sp := bytes.IndexByte(line, ' ')
		var key, val string
		if sp < 0 {
			key = string(line)
		} else {
			key = string(line[:sp])
			val = string(line[sp+1:])
		}

		switch key {
		case "object":
			t.Target = plumbing.NewHash(val)
		case "type":
			typ, err := plumbing.ParseObjectType(val)
			if err != nil {
				return err
			}
			t.TargetType = typ
		case "tag":
			t.Name = val
		case "tagger":
			t.Tagger.Decode([]byte(val))
		}

		pos += advance
		if nl < 0 {
			break
		}
	}

	rest := data[pos:]
	t.Message = string(rest)
	t.PGPSignature = ""

	if idx, _ := parseSignedBytes(rest); idx != -1 {
		t.PGPSignature = string(rest[idx:])
		t.Message = string(rest[:idx])
	}

	return nil
}

// Encode transforms a Tag into an EncodedObject, including its PGP
// signature if present.
func (t *Tag) Encode(o plumbing.EncodedObject) error {
	return t.encode(o, true)
}

// EncodeWithoutSignature encodes the tag leaving out its PGP signature,
// producing the payload git signs and verifies against.
func (t *Tag) EncodeWithoutSignature(o plumbing.EncodedObject) error {
	return t.encode(o, false)
}

func (t *Tag) encode(o plumbing.EncodedObject, includeSig bool) error {
	o.SetType(plumbing.TagObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := fmt.Fprintf(w, "object %s\n", t.Target.String()); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "type %s\n", t.TargetType.String()); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "tag %s\n", t.Name); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "tagger %s\n", t.Tagger.encode()); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, t.Message); err != nil {
		return err
	}

	if includeSig && t.PGPSignature != "" {
		if _, err := fmt.Fprint(w, t.PGPSignature); err != nil {
			return err
		}
	}

	return nil
}

// Verify verifies the PGP signature of this tag against the given armored
// key ring, returning the entity that produced it.
func (t *Tag) Verify(armoredKeyRing string) (*openpgp.Entity, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKeyRing))
	if err != nil {
		return nil, err
	}

	encoded := &plumbing.MemoryObject{}
	if err := t.EncodeWithoutSignature(encoded); err != nil {
		return nil, err
	}

	er, err := encoded.Reader()
	if err != nil {
		return nil, err
	}

	return openpgp.CheckArmoredDetachedSignature(keyring, er, strings.NewReader(t.PGPSignature), nil)
}

// Signature returns the tag's detached signature, satisfying
// signature.VerifiableObject.
func (t *Tag) Signature() string { return t.PGPSignature }

// String returns a git-show-style rendering of the tag, including the
// target commit's own rendering when the tag points at one directly.
func (t *Tag) String() string {
	target, err := t.Object()

	var targetStr string
	if err == nil {
		if c, ok := target.(*Commit); ok {
			targetStr = c.String()
		}
	}

	return fmt.Sprintf(
		"tag %s\nTagger: %s\nDate:   %s\n\n%s\n%s",
		t.Name, t.Tagger.String(), t.Tagger.When.Format(dateFormat), t.Message, targetStr,
	)
}

// TagIter is a generic closable interface for iterating over tags.
type TagIter struct {
	storer.EncodedObjectIter
	s storer.EncodedObjectStorer
}

// NewTagIter returns a TagIter decoding each object returned by iter as a
// Tag.
func NewTagIter(s storer.EncodedObjectStorer, iter storer.EncodedObjectIter) *TagIter {
	return &TagIter{iter, s}
}

// Next returns the next tag, or io.EOF when exhausted.
func (iter *TagIter) Next() (*Tag, error) {
	obj, err := iter.EncodedObjectIter.Next()
	if err != nil {
		return nil, err
	}

	return DecodeTag(iter.s, obj)
}

// ForEach calls cb for every remaining tag, stopping (and returning nil) if
// cb returns storer.ErrStop.
func (iter *TagIter) ForEach(cb func(*Tag) error) error {
	return iter.EncodedObjectIter.ForEach(func(obj plumbing.EncodedObject) error {
		t, err := DecodeTag(iter.s, obj)
		if err != nil {
			return err
		}

		return cb(t)
	})
}
