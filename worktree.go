package git

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/forgevcs/forge/config"
	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/filemode"
	"github.com/forgevcs/forge/plumbing/format/index"
	"github.com/forgevcs/forge/plumbing/object"
	"github.com/forgevcs/forge/utils/merkletrie"

	"github.com/go-git/go-billy/v6"
)

var (
	ErrWorktreeNotClean  = errors.New("worktree is not clean")
	ErrSubmoduleNotFound = errors.New("submodule not found")
	ErrUnstagedChanges   = errors.New("worktree contains unstaged changes")
)

// Worktree represents the files checked out from a Repository's object
// database onto a filesystem.
type Worktree struct {
	r  *Repository
	fs billy.Filesystem
}

// Checkout switches branches or restores working tree files to match the
// commit identified by opts.
func (w *Worktree) Checkout(opts *CheckoutOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	if !opts.Force {
		unstaged, err := w.hasUnstagedChanges()
		if err != nil {
			return err
		}

		if unstaged {
			return ErrUnstagedChanges
		}
	}

	commit, err := w.resolveCheckoutCommit(opts)
	if err != nil {
		return err
	}

	ro := &ResetOptions{Commit: commit, Mode: MergeReset}
	if opts.Force {
		ro.Mode = HardReset
	}

	if !opts.Hash.IsZero() {
		err = w.setHEADToCommit(opts.Hash)
	} else {
		err = w.setHEADToBranch(opts.Branch, commit)
	}

	if err != nil {
		return err
	}

	return w.Reset(ro)
}

// resolveCheckoutCommit finds the commit opts actually points at, following
// a tag through to the commit it targets if necessary.
func (w *Worktree) resolveCheckoutCommit(opts *CheckoutOptions) (plumbing.Hash, error) {
	if !opts.Hash.IsZero() {
		return opts.Hash, nil
	}

	ref, err := w.r.Reference(opts.Branch, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if !ref.IsTag() {
		return ref.Hash(), nil
	}

	o, err := w.r.Object(plumbing.AnyObject, ref.Hash())
	if err != nil {
		return plumbing.ZeroHash, err
	}

	switch o := o.(type) {
	case *object.Tag:
		if o.TargetType != plumbing.CommitObject {
			return plumbing.ZeroHash, fmt.Errorf("unsupported tag object target %q", o.TargetType)
		}

		return o.Target, nil
	case *object.Commit:
		return o.Hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("unsupported tag target %q", o.Type())
}

func (w *Worktree) setHEADToCommit(commit plumbing.Hash) error {
	head := plumbing.NewHashReference(plumbing.HEAD, commit)
	return w.r.s.SetReference(head)
}

func (w *Worktree) setHEADToBranch(branch plumbing.ReferenceName, commit plumbing.Hash) error {
	target, err := w.r.s.Reference(branch)
	if err != nil {
		return err
	}

	var head *plumbing.Reference
	if target.IsBranch() {
		head = plumbing.NewSymbolicReference(plumbing.HEAD, target.Name())
	} else {
		head = plumbing.NewHashReference(plumbing.HEAD, commit)
	}

	return w.r.s.SetReference(head)
}

// Reset moves HEAD, and depending on opts.Mode the index and/or the
// worktree, to match a previous commit.
func (w *Worktree) Reset(opts *ResetOptions) error {
	if err := opts.Validate(w.r); err != nil {
		return err
	}

	if opts.Mode == MergeReset {
		unstaged, err := w.hasUnstagedChanges()
		if err != nil {
			return err
		}

		if unstaged {
			return ErrUnstagedChanges
		}
	}

	changes, err := w.diffCommitWithStaging(opts.Commit, true)
	if err != nil {
		return err
	}

	idx, err := w.r.s.Index()
	if err != nil {
		return err
	}

	t, err := w.treeFromCommit(opts.Commit)
	if err != nil {
		return err
	}

	for _, ch := range changes {
		if err := w.applyChange(ch, t, idx); err != nil {
			return err
		}
	}

	if err := w.r.s.SetIndex(idx); err != nil {
		return err
	}

	return w.setHEADCommit(opts.Commit)
}

func (w *Worktree) hasUnstagedChanges() (bool, error) {
	ch, err := w.diffStagingWithWorktree()
	if err != nil {
		return false, err
	}

	return len(ch) != 0, nil
}

func (w *Worktree) setHEADCommit(commit plumbing.Hash) error {
	head, err := w.r.Reference(plumbing.HEAD, false)
	if err != nil {
		return err
	}

	if head.Type() == plumbing.HashReference {
		head = plumbing.NewHashReference(plumbing.HEAD, commit)
		return w.r.s.SetReference(head)
	}

	branch, err := w.r.Reference(head.Target(), false)
	if err != nil {
		return err
	}

	if !branch.IsBranch() {
		return fmt.Errorf("invalid HEAD target should be a branch, found %s", branch.Type())
	}

	branch = plumbing.NewHashReference(branch.Name(), commit)
	return w.r.s.SetReference(branch)
}

// applyChange mutates the worktree filesystem and the given index entry to
// reflect a single merkletrie change between the staged tree and commit t.
func (w *Worktree) applyChange(ch merkletrie.Change, t *object.Tree, idx *index.Index) error {
	action, err := ch.Action()
	if err != nil {
		return err
	}

	switch action {
	case merkletrie.Modify:
		name := ch.To.String()
		if err := w.removeIndexEntry(name, idx); err != nil {
			return err
		}

		// billy has no chmod, so a permission change has to go through a
		// delete and a fresh write of the file.
		if err := w.fs.Remove(name); err != nil {
			return err
		}

		fallthrough
	case merkletrie.Insert:
		name := ch.To.String()
		e, err := t.FindEntry(name)
		if err != nil {
			return err
		}

		if e.Mode == filemode.Submodule {
			return w.addSubmoduleIndexEntry(name, e, idx)
		}

		f, err := t.File(name)
		if err != nil {
			return err
		}

		if err := w.writeFile(f); err != nil {
			return err
		}

		return w.addFileIndexEntry(name, e.Hash, idx)
	case merkletrie.Delete:
		name := ch.From.String()
		if err := w.fs.Remove(name); err != nil {
			return err
		}

		return w.removeIndexEntry(name, idx)
	}

	return nil
}

func (w *Worktree) writeFile(f *object.File) error {
	from, err := f.Reader()
	if err != nil {
		return err
	}
	defer from.Close()

	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		return err
	}

	to, err := w.fs.OpenFile(f.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer to.Close()

	_, err = io.Copy(to, from)
	return err
}

func (w *Worktree) addSubmoduleIndexEntry(name string, f *object.TreeEntry, idx *index.Index) error {
	idx.Entries = append(idx.Entries, index.Entry{
		Hash: f.Hash,
		Name: name,
		Mode: filemode.Submodule,
	})

	return nil
}

func (w *Worktree) addFileIndexEntry(name string, h plumbing.Hash, idx *index.Index) error {
	fi, err := w.fs.Stat(name)
	if err != nil {
		return err
	}

	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return err
	}

	e := index.Entry{
		Hash:       h,
		Name:       name,
		Mode:       mode,
		ModifiedAt: fi.ModTime(),
		Size:       uint32(fi.Size()),
	}

	// FileInfo.Sys() only yields ctime/dev/inode/uid/gid when it comes from
	// the local os filesystem; other billy backends leave it nil.
	if fillSystemInfo != nil {
		fillSystemInfo(&e, fi.Sys())
	}

	idx.Entries = append(idx.Entries, e)
	return nil
}

func (w *Worktree) removeIndexEntry(name string, idx *index.Index) error {
	for i, e := range idx.Entries {
		if e.Name != name {
			continue
		}

		idx.Entries = append(idx.Entries[:i], idx.Entries[i+1:]...)
		return nil
	}

	return nil
}

func (w *Worktree) treeFromCommit(commit plumbing.Hash) (*object.Tree, error) {
	c, err := w.r.Commit(commit)
	if err != nil {
		return nil, err
	}

	return c.Tree()
}

func (w *Worktree) initializeIndex() error {
	return w.r.s.SetIndex(&index.Index{Version: 2})
}

var fillSystemInfo func(e *index.Entry, sys interface{})

const gitmodulesFile = ".gitmodules"

// Submodule returns the submodule with the given name.
func (w *Worktree) Submodule(name string) (*Submodule, error) {
	l, err := w.Submodules()
	if err != nil {
		return nil, err
	}

	for _, m := range l {
		if m.Config().Name == name {
			return m, nil
		}
	}

	return nil, ErrSubmoduleNotFound
}

// Submodules returns every submodule registered in .gitmodules, joined with
// any initialization state recorded in the repository config.
func (w *Worktree) Submodules() (Submodules, error) {
	l := make(Submodules, 0)
	m, err := w.readGitmodulesFile()
	if err != nil || m == nil {
		return l, err
	}

	c, err := w.r.Config()
	if err != nil {
		return nil, err
	}

	for _, s := range m.Submodules {
		l = append(l, w.newSubmodule(s, c.Submodules[s.Name]))
	}

	return l, nil
}

func (w *Worktree) newSubmodule(fromModules, fromConfig *config.Submodule) *Submodule {
	m := &Submodule{w: w}
	m.initialized = fromConfig != nil

	if !m.initialized {
		m.c = fromModules
		return m
	}

	m.c = fromConfig
	m.c.Path = fromModules.Path
	return m
}

func (w *Worktree) readGitmodulesFile() (*config.Modules, error) {
	f, err := w.fs.Open(gitmodulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	input, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	m := config.NewModules()
	return m, m.Unmarshal(input)
}

func (w *Worktree) readIndexEntry(path string) (index.Entry, error) {
	var e index.Entry

	idx, err := w.r.s.Index()
	if err != nil {
		return e, err
	}

	for _, e := range idx.Entries {
		if e.Name == path {
			return e, nil
		}
	}

	return e, fmt.Errorf("unable to find %q entry in the index", path)
}
