package object

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/storer"
)

const (
	beginpgp = "-----BEGIN PGP SIGNATURE-----"
	endpgp   = "-----END PGP SIGNATURE-----"
)

// MessageEncoding identifies the charset a commit's message is encoded in,
// set via git's "encoding" commit header. The default, UTF-8, is omitted
// from the header and so round-trips as the empty string.
type MessageEncoding string

const defaultUtf8CommitMessageEncoding MessageEncoding = ""

// ExtraHeader is a commit header git doesn't interpret itself (anything
// besides tree/parent/author/committer/gpgsig/encoding), preserved verbatim
// so round-tripping a commit never loses data.
type ExtraHeader struct {
	Key   string
	Value string
}

// ErrParentNotFound is returned by Commit.Parent when the requested index
// is out of range.
var ErrParentNotFound = errors.New("commit parent not found")

// Commit points to a single tree, marking it as what the project looked
// like at a certain point in time. It carries metadata about that point in
// time: a timestamp, the author and committer of the changes, and a
// pointer to the parent commit(s) it followed.
type Commit struct {
	Hash         plumbing.Hash
	Author       Signature
	Committer    Signature
	PGPSignature string
	Message      string
	TreeHash     plumbing.Hash
	ParentHashes []plumbing.Hash
	MergeTag     string
	Encoding     MessageEncoding
	ExtraHeaders []ExtraHeader

	s storer.EncodedObjectStorer
}

// GetCommit returns the Commit with the given hash, looked up in s.
func GetCommit(s storer.EncodedObjectStorer, h plumbing.Hash) (*Commit, error) {
	o, err := s.EncodedObject(plumbing.CommitObject, h)
	if err != nil {
		return nil, err
	}

	return DecodeCommit(s, o)
}

// DecodeCommit decodes o into a Commit, recording s so the commit can later
// resolve its tree and parents.
func DecodeCommit(s storer.EncodedObjectStorer, o plumbing.EncodedObject) (*Commit, error) {
	c := &Commit{s: s}
	if err := c.Decode(o); err != nil {
		return nil, err
	}

	return c, nil
}

// ID returns the commit's hash.
func (c *Commit) ID() plumbing.Hash { return c.Hash }

// Type returns plumbing.CommitObject.
func (c *Commit) Type() plumbing.ObjectType { return plumbing.CommitObject }

// Tree returns the tree this commit points to.
func (c *Commit) Tree() (*Tree, error) {
	return GetTree(c.s, c.TreeHash)
}

// Parents returns an iterator over this commit's parent commits, in the
// order recorded in ParentHashes.
func (c *Commit) Parents() CommitIter {
	return NewCommitIter(c.s,
		storer.NewEncodedObjectLookupIter(c.s, plumbing.CommitObject, c.ParentHashes),
	)
}

// Parent returns the i-th parent commit.
func (c *Commit) Parent(i int) (*Commit, error) {
	if i < 0 || i >= len(c.ParentHashes) {
		return nil, ErrParentNotFound
	}

	return GetCommit(c.s, c.ParentHashes[i])
}

// NumParents returns the number of parents of this commit.
func (c *Commit) NumParents() int { return len(c.ParentHashes) }

// File returns the file at path as of this commit.
func (c *Commit) File(path string) (*File, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	return tree.File(path)
}

// Files returns an iterator over every regular file as of this commit.
func (c *Commit) Files() (*FileIter, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	return tree.Files(), nil
}

// Patch computes the diff between this commit's tree and to's tree.
func (c *Commit) Patch(to *Commit) (*Patch, error) {
	return c.PatchContext(context.Background(), to)
}

// PatchContext computes the diff between this commit's tree and to's tree,
// aborting if ctx is cancelled. A nil to compares against an empty tree.
func (c *Commit) PatchContext(ctx context.Context, to *Commit) (*Patch, error) {
	fromTree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	var toTree *Tree
	if to != nil {
		toTree, err = to.Tree()
		if err != nil {
			return nil, err
		}
	}

	changes, err := diffTrees(ctx, fromTree, toTree)
	if err != nil {
		return nil, err
	}

	return getPatch(c.Message, changes...)
}

// Stats computes the per-file addition/deletion counts between this
// commit's first parent (or an empty tree, for a root commit) and itself.
func (c *Commit) Stats() (FileStats, error) {
	return c.StatsContext(context.Background())
}

// StatsContext is Stats, aborting if ctx is cancelled.
func (c *Commit) StatsContext(ctx context.Context) (FileStats, error) {
	fromTree := &Tree{}
	if c.NumParents() != 0 {
		firstParent, err := c.Parents().Next()
		if err != nil {
			return nil, err
		}

		fromTree, err = firstParent.Tree()
		if err != nil {
			return nil, err
		}
	}

	toTree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := diffTrees(ctx, fromTree, toTree)
	if err != nil {
		return nil, err
	}

	patch, err := getPatch("", changes...)
	if err != nil {
		return nil, err
	}

	return patch.Stats(), nil
}

// Verify verifies the PGP signature of this commit against the given
// armored key ring, returning the entity that produced it.
func (c *Commit) Verify(armoredKeyRing string) (*openpgp.Entity, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKeyRing))
	if err != nil {
		return nil, err
	}

	if c.PGPSignature == "" {
		return nil, errors.New("commit has no PGP signature")
	}

	encoded := &plumbing.MemoryObject{}
	if err := c.EncodeWithoutSignature(encoded); err != nil {
		return nil, err
	}

	er, err := encoded.Reader()
	if err != nil {
		return nil, err
	}

	return openpgp.CheckArmoredDetachedSignature(keyring, er, strings.NewReader(c.PGPSignature), nil)
}

// Signature returns the commit's detached signature, satisfying
// signature.VerifiableObject.
func (c *Commit) Signature() string { return c.PGPSignature }

// Less orders commits by committer time, then author time, then hash,
// matching the iteration order git log uses to break ties.
func (c *Commit) Less(rhs *Commit) bool {
	cmptime := c.Committer.When.Unix() - rhs.Committer.When.Unix()
	if cmptime != 0 {
		return cmptime < 0
	}

	cmptime = c.Author.When.Unix() - rhs.Author.When.Unix()
	if cmptime != 0 {
		return cmptime < 0
	}

	return bytes.Compare(c.Hash[:], rhs.Hash[:]) < 0
}

// CommitTime returns the committer's timestamp, for sorting.
func (c *Commit) CommitTime() time.Time { return c.Committer.When }

// String returns a git-log-style rendering of the commit.
func (c *Commit) String() string {
	return fmt.Sprintf(
		"commit %s\nAuthor: %s <%s>\nDate:   %s\n\n%s\n",
		c.Hash, c.Author.Name, c.Author.Email, c.Author.When.Format(dateFormat), indent(c.Message),
	)
}

func indent(t string) string {
	var output []string
	for _, line := range strings.Split(t, "\n") {
		if len(line) != 0 {
			line = "    " + line
		}
		output = append(output, line)
	}

	return strings.Join(output, "\n")
}

const dateFormat = "Mon Jan 2 15:04:05 2006 -0700"

// Decode transforms an EncodedObject into a Commit struct, parsing the
// "tree/parent/author/committer/encoding/gpgsig/<extra>\n\n<message>" header
// framing git uses. Header values may be folded across multiple lines, each
// continuation prefixed with a single space, as git does for gpgsig and
// mergetag.
func (c *Commit) Decode(o plumbing.EncodedObject) (err error) {
	if o.Type() != plumbing.CommitObject {
		return ErrUnsupportedObject
	}

	c.Hash = o.Hash()

	reader, err := o.Reader()
	if err != nil {
		return err
	}
	defer ioutilCheckClose(reader, &err)

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	var extraHeaders []ExtraHeader
	var curKey, curVal string

	flush := func() {
		if curKey == "" {
			return
		}

		switch curKey {
		case "tree":
			c.TreeHash = plumbing.NewHash(curVal)
		case "parent":
			c.ParentHashes = append(c.ParentHashes, plumbing.NewHash(curVal))
		case "author":
			c.Author.Decode([]byte(curVal))
		case "committer":
			c.Committer.Decode([]byte(curVal))
		case "encoding":
			c.Encoding = MessageEncoding(curVal)
		case "gpgsig":
			c.PGPSignature = curVal + "\n"
		case "mergetag":
			c.MergeTag = curVal + "\n"
		default:
			extraHeaders = append(extraHeaders, ExtraHeader{Key: curKey, Value: curVal})
		}

		curKey, curVal = "", ""
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
			flush()
			pos += advance
			break
		}

		if line[0] == ' ' {
			if curKey != "" {
				curVal += "\n" + string(line[1:])
			} else {
				extraHeaders = append(extraHeaders, ExtraHeader{Key: "", Value: string(line[1:])})
			}
			pos += advance
			continue
		}

		flush()

		if sp := bytes.IndexByte(line, ' '); sp < 0 {
			curKey = string(line)
			flush()
		} else {
			curKey = string(line[:sp])
			curVal = string(line[sp+1:])
		}

		pos += advance
		if nl < 0 {
			break
		}
	}
	flush()

	c.Message = string(data[pos:])
	c.ExtraHeaders = extraHeaders

	return nil
}

func ioutilCheckClose(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// Encode transforms a Commit into an EncodedObject, including its PGP
// signature if present.
func (c *Commit) Encode(o plumbing.EncodedObject) error {
	return c.encode(o, true)
}

// EncodeWithoutSignature encodes the commit leaving out its PGP signature,
// producing the payload git signs and verifies against.
func (c *Commit) EncodeWithoutSignature(o plumbing.EncodedObject) error {
	return c.encode(o, false)
}

func (c *Commit) encode(o plumbing.EncodedObject, includeSig bool) error {
	o.SetType(plumbing.CommitObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := fmt.Fprintf(w, "tree %s\n", c.TreeHash.String()); err != nil {
		return err
	}

	for _, parent := range c.ParentHashes {
		if _, err := fmt.Fprintf(w, "parent %s\n", parent.String()); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "author %s\n", c.Author.encode()); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "committer %s\n", c.Committer.encode()); err != nil {
		return err
	}

	for _, h := range c.ExtraHeaders {
		if err := encodeExtraHeader(w, h); err != nil {
			return err
		}
	}

	if c.Encoding != defaultUtf8CommitMessageEncoding {
		if _, err := fmt.Fprintf(w, "encoding %s\n", c.Encoding); err != nil {
			return err
		}
	}

	if c.MergeTag != "" {
		if err := encodeMultiline(w, "mergetag", c.MergeTag); err != nil {
			return err
		}
	}

	if includeSig && c.PGPSignature != "" {
		if err := encodeMultiline(w, "gpgsig", ensureTrailingNewline(c.PGPSignature)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, c.Message); err != nil {
		return err
	}

	return nil
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func encodeExtraHeader(w io.Writer, h ExtraHeader) error {
	return encodeMultiline(w, h.Key, h.Value)
}

// encodeMultiline writes "key value\n", continuing any subsequent lines in
// value with a leading space, the way git folds long header values.
func encodeMultiline(w io.Writer, key, value string) error {
	lines := strings.Split(strings.TrimSuffix(value, "\n"), "\n")

	if key == "" {
		if _, err := fmt.Fprintf(w, " %s\n", lines[0]); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(w, "%s %s\n", key, lines[0]); err != nil {
		return err
	}

	for _, l := range lines[1:] {
		if _, err := fmt.Fprintf(w, " %s\n", l); err != nil {
			return err
		}
	}

	return nil
}

// CommitIter is a generic closable interface for iterating over commits.
type CommitIter interface {
	Next() (*Commit, error)
	ForEach(func(*Commit) error) error
	Close()
}

type commitIter struct {
	storer.EncodedObjectIter
	s storer.EncodedObjectStorer
}

// NewCommitIter returns a CommitIter decoding each object returned by iter
// as a Commit.
func NewCommitIter(s storer.EncodedObjectStorer, iter storer.EncodedObjectIter) CommitIter {
	return &commitIter{iter, s}
}

func (iter *commitIter) Next() (*Commit, error) {
	obj, err := iter.EncodedObjectIter.Next()
	if err != nil {
		return nil, err
	}

	return DecodeCommit(iter.s, obj)
}

func (iter *commitIter) ForEach(cb func(*Commit) error) error {
	return iter.EncodedObjectIter.ForEach(func(obj plumbing.EncodedObject) error {
		c, err := DecodeCommit(iter.s, obj)
		if err != nil {
			return err
		}

		return cb(c)
	})
}
