package object

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/filemode"
	"github.com/forgevcs/forge/plumbing/storer"
)

// TreeEntry is one line of a Tree: a name, its mode and the hash of the
// object (blob, or nested tree) it refers to.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Tree is a flat directory listing used to reconstruct the hierarchy of a
// commit's working copy. Each entry either references a Blob (a file) or
// another Tree (a subdirectory).
type Tree struct {
	Entries []TreeEntry
	Hash    plumbing.Hash

	s storer.EncodedObjectStorer
	m map[string]*TreeEntry
}

// ID returns the tree's hash.
func (t *Tree) ID() plumbing.Hash { return t.Hash }

// Type returns plumbing.TreeObject.
func (t *Tree) Type() plumbing.ObjectType { return plumbing.TreeObject }

// Decode transforms an EncodedObject into a Tree struct, parsing the
// binary "<mode> <name>\0<20-or-32-byte-hash>" entry encoding.
func (t *Tree) Decode(o plumbing.EncodedObject) error {
	if o.Type() != plumbing.TreeObject {
		return plumbing.ErrInvalidType
	}

	t.Hash = o.Hash()
	t.Entries = nil
	t.m = nil

	r, err := o.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	hashSize := t.hashSize()

	for {
		modeStr, err := br.ReadString(' ')
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		modeStr = strings.TrimSuffix(modeStr, " ")

		mode, err := filemode.New(modeStr)
		if err != nil {
			return fmt.Errorf("malformed tree entry mode %q: %w", modeStr, err)
		}

		name, err := br.ReadString(0)
		if err != nil {
			return err
		}
		name = strings.TrimSuffix(name, "\x00")

		hashBytes := make([]byte, hashSize)
		if _, err := io.ReadFull(br, hashBytes); err != nil {
			return err
		}

		var h plumbing.Hash
		h, _ = plumbing.FromBytes(hashBytes)

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, Hash: h})
	}

	return nil
}

func (t *Tree) hashSize() int {
	if t.Hash.Size() > 0 {
		return t.Hash.Size()
	}
	return 20
}

// Encode transforms a Tree into an EncodedObject, writing the same binary
// entry encoding Decode reads.
func (t *Tree) Encode(o plumbing.EncodedObject) error {
	o.SetType(plumbing.TreeObject)

	w, err := o.Writer()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, e := range t.Entries {
		if _, err := fmt.Fprintf(w, "%s %s", strconv.FormatUint(uint64(e.Mode), 8), e.Name); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		if _, err := w.Write(e.Hash.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree) buildMap() {
	if t.m != nil {
		return
	}

	t.m = make(map[string]*TreeEntry, len(t.Entries))
	for i := range t.Entries {
		t.m[t.Entries[i].Name] = &t.Entries[i]
	}
}

// entry returns the direct child entry with the given name.
func (t *Tree) entry(name string) (*TreeEntry, error) {
	t.buildMap()

	e, ok := t.m[name]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// ErrEntryNotFound is returned when a path does not resolve to any tree
// entry.
var ErrEntryNotFound = fmt.Errorf("entry not found")

// ErrDirectoryNotFound is returned when an intermediate path component is
// not a tree.
var ErrDirectoryNotFound = fmt.Errorf("directory not found")

// FindEntry walks path, which may contain slashes, resolving it against
// nested trees.
func (t *Tree) FindEntry(path string) (*TreeEntry, error) {
	pathParts := strings.Split(path, "/")

	var tree *Tree
	var err error
	if tree, err = t.findParentTree(pathParts); err != nil {
		return nil, err
	}

	return tree.entry(pathParts[len(pathParts)-1])
}

func (t *Tree) findParentTree(pathParts []string) (*Tree, error) {
	if len(pathParts) == 1 {
		return t, nil
	}

	e, err := t.entry(pathParts[0])
	if err != nil {
		return nil, ErrDirectoryNotFound
	}

	tree, err := GetTree(t.s, e.Hash)
	if err != nil {
		return nil, err
	}

	return tree.findParentTree(pathParts[1:])
}

// File returns the File with the given path, which may contain slashes.
func (t *Tree) File(filePath string) (*File, error) {
	e, err := t.FindEntry(filePath)
	if err != nil {
		return nil, ErrFileNotFound
	}

	blob, err := GetBlob(t.s, e.Hash)
	if err != nil {
		if err == plumbing.ErrObjectNotFound {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	return NewFile(path.Base(filePath), e.Mode, blob), nil
}

// Files returns an iterator over every regular file reachable from this
// tree, recursing into subtrees and skipping submodules.
func (t *Tree) Files() *FileIter {
	return NewFileIter(t.s, t)
}

// TreeEntryFile returns the File for a TreeEntry known to belong to this
// tree, looking up its blob by hash.
func (t *Tree) TreeEntryFile(e *TreeEntry) (*File, error) {
	blob, err := GetBlob(t.s, e.Hash)
	if err != nil {
		return nil, err
	}

	return NewFile(e.Name, e.Mode, blob), nil
}

func (t *Tree) entries() []TreeEntry { return t.Entries }
