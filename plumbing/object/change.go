package object

import (
	"fmt"

	"github.com/forgevcs/forge/plumbing/filemode"
)

// ChangeEntry carries the name, the tree that held it, and the entry found
// on one side of a Change (either the "from" or the "to" side). A zero-value
// ChangeEntry (empty Name) means that side of the change is absent, as for
// an insertion or deletion.
type ChangeEntry struct {
	Name      string
	Tree      *Tree
	TreeEntry TreeEntry
}

// Change describes a single difference between two trees: a file or
// directory that was inserted, deleted, or modified.
type Change struct {
	From ChangeEntry
	To   ChangeEntry
}

// Action classifies a Change as an insertion, deletion, or modification.
func (c *Change) Action() (merkletrieAction, error) {
	if c.From.Name == "" && c.To.Name == "" {
		return 0, fmt.Errorf("malformed change: empty from and to")
	}

	if c.From.Name == "" {
		return Insert, nil
	}

	if c.To.Name == "" {
		return Delete, nil
	}

	return Modify, nil
}

// Files returns the blob-backed File on each side of the change, either of
// which may be nil if that side of the change is absent or points at a
// directory.
func (c *Change) Files() (from, to *File, err error) {
	if c.From.Name != "" && c.From.TreeEntry.Mode != filemode.Dir {
		from, err = c.From.Tree.TreeEntryFile(&c.From.TreeEntry)
		if err != nil {
			return
		}
	}

	if c.To.Name != "" && c.To.TreeEntry.Mode != filemode.Dir {
		to, err = c.To.Tree.TreeEntryFile(&c.To.TreeEntry)
	}

	return
}

func (c *Change) String() string {
	action, err := c.Action()
	if err != nil {
		return fmt.Sprintf("malformed change: %s", err)
	}

	return fmt.Sprintf("<Action: %s, Path: %s>", action, c.name())
}

func (c *Change) name() string {
	if c.From.Name != "" {
		return c.From.Name
	}
	return c.To.Name
}

// merkletrieAction mirrors the three possible tree-diff outcomes without
// depending on a trie-based diff engine.
type merkletrieAction int8

const (
	Insert merkletrieAction = iota
	Delete
	Modify
)

func (a merkletrieAction) String() string {
	switch a {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Modify:
		return "Modify"
	default:
		return "Unknown"
	}
}

// Changes is a collection of changes between two trees, in path order.
type Changes []*Change

func (c Changes) String() string {
	var out string
	for i, ch := range c {
		if i > 0 {
			out += ", "
		}
		out += ch.String()
	}
	return "[" + out + "]"
}
