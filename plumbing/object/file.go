package object

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/filemode"
	"github.com/forgevcs/forge/plumbing/storer"
)

// ErrFileNotFound is returned when a path does not resolve to a regular
// file in a tree.
var ErrFileNotFound = errors.New("file not found")

// File represents a single file as resolved from a tree: its path, its
// mode, and the blob holding its content.
type File struct {
	// Name is the full path of the file, as resolved from the tree root.
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash

	blob *Blob
}

// NewFile returns a File named name, with mode m, backed by blob b.
func NewFile(name string, m filemode.FileMode, b *Blob) *File {
	return &File{Name: name, Mode: m, Hash: b.Hash, blob: b}
}

// ID returns the hash of the underlying blob.
func (f *File) ID() plumbing.Hash { return f.Hash }

// Reader returns a reader for the file's content.
func (f *File) Reader() (io.ReadCloser, error) {
	return f.blob.Reader()
}

// Contents returns the file's content as a string.
func (f *File) Contents() (string, error) {
	r, err := f.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Lines returns the file's content split on newlines, with the trailing
// newline (if any) not producing an extra empty element.
func (f *File) Lines() ([]string, error) {
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}

	splits := strings.Split(content, "\n")
	if splits[len(splits)-1] == "" {
		splits = splits[:len(splits)-1]
	}

	return splits, nil
}

// IsBinary returns whether the file content appears to be binary, using a
// simple NUL-byte heuristic over a fixed-size prefix of the content.
func (f *File) IsBinary() (bool, error) {
	r, err := f.Reader()
	if err != nil {
		return false, err
	}
	defer r.Close()

	br := bufio.NewReader(r)
	buf := make([]byte, 8000)
	n, err := br.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}

	for _, b := range buf[:n] {
		if b == 0 {
			return true, nil
		}
	}

	return false, nil
}

// FileIter iterates over every regular file reachable from a tree,
// expanding subtrees depth-first and skipping submodules and empty
// directories.
type FileIter struct {
	s      storer.EncodedObjectStorer
	stack  []*Tree
	prefix []string
	pos    []int
	walked map[plumbing.Hash]bool
}

// NewFileIter returns a FileIter over the files reachable from t.
func NewFileIter(s storer.EncodedObjectStorer, t *Tree) *FileIter {
	return &FileIter{
		s:      s,
		stack:  []*Tree{t},
		prefix: []string{""},
		pos:    []int{0},
		walked: make(map[plumbing.Hash]bool),
	}
}

// Next returns the next file, or io.EOF when the tree is exhausted.
func (iter *FileIter) Next() (*File, error) {
	for {
		if len(iter.stack) == 0 {
			return nil, io.EOF
		}

		top := iter.stack[len(iter.stack)-1]
		idx := iter.pos[len(iter.pos)-1]

		if idx >= len(top.Entries) {
			iter.stack = iter.stack[:len(iter.stack)-1]
			iter.pos = iter.pos[:len(iter.pos)-1]
			iter.prefix = iter.prefix[:len(iter.prefix)-1]
			continue
		}

		iter.pos[len(iter.pos)-1]++
		e := top.Entries[idx]
		fullName := e.Name
		if p := iter.prefix[len(iter.prefix)-1]; p != "" {
			fullName = p + "/" + e.Name
		}

		switch {
		case e.Mode == filemode.Dir:
			if iter.walked[e.Hash] {
				continue
			}
			iter.walked[e.Hash] = true

			subtree, err := GetTree(iter.s, e.Hash)
			if err != nil {
				return nil, err
			}
			if len(subtree.Entries) == 0 {
				continue
			}

			iter.stack = append(iter.stack, subtree)
			iter.pos = append(iter.pos, 0)
			iter.prefix = append(iter.prefix, fullName)
		case e.Mode == filemode.Submodule:
			continue
		default:
			blob, err := GetBlob(iter.s, e.Hash)
			if err != nil {
				return nil, err
			}

			return NewFile(fullName, e.Mode, blob), nil
		}
	}
}

// ForEach calls cb for every remaining file, stopping early (without error)
// if cb returns storer.ErrStop.
func (iter *FileIter) ForEach(cb func(*File) error) error {
	for {
		f, err := iter.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := cb(f); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

// Close is a no-op, provided for interface symmetry with other iterators.
func (iter *FileIter) Close() {}
