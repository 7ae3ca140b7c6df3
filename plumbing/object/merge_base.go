package object

import (
	"io"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/plumbing/storer"
)

// ancestorsOf returns every commit reachable from start by walking parents,
// including start itself, indexed by hash.
func ancestorsOf(start *Commit) (map[plumbing.Hash]*Commit, error) {
	index := make(map[plumbing.Hash]*Commit)

	iter := NewCommitPreorderIter(start, nil, nil)
	err := iter.ForEach(func(c *Commit) error {
		index[c.Hash] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return index, nil
}

// IsAncestor returns whether c is an ancestor of other, or is other itself.
func (c *Commit) IsAncestor(other *Commit) (bool, error) {
	found := false

	iter := NewCommitPreorderIter(other, nil, nil)
	err := iter.ForEach(func(candidate *Commit) error {
		if candidate.Hash == c.Hash {
			found = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && err != io.EOF {
		return false, err
	}

	return found, nil
}

// MergeBase returns the best common ancestor(s) of c and other: the common
// ancestors that are not themselves ancestors of any other common ancestor.
// Cross-merged or multiply-diverged histories can produce more than one.
func (c *Commit) MergeBase(other *Commit) ([]*Commit, error) {
	ancestorsC, err := ancestorsOf(c)
	if err != nil {
		return nil, err
	}

	ancestorsOther, err := ancestorsOf(other)
	if err != nil {
		return nil, err
	}

	var common []*Commit
	for h, commit := range ancestorsC {
		if _, ok := ancestorsOther[h]; ok {
			common = append(common, commit)
		}
	}

	return Independents(common)
}

// Independents returns the subset of commits that are not reachable from
// any other commit in the list, deduplicating repeated commits first.
func Independents(commits []*Commit) ([]*Commit, error) {
	byHash := make(map[plumbing.Hash]*Commit, len(commits))
	var order []plumbing.Hash
	for _, c := range commits {
		if _, ok := byHash[c.Hash]; !ok {
			byHash[c.Hash] = c
			order = append(order, c.Hash)
		}
	}

	var result []*Commit
	for i, h := range order {
		c := byHash[h]

		reachableFromOther := false
		for j, oh := range order {
			if i == j {
				continue
			}

			ok, err := c.IsAncestor(byHash[oh])
			if err != nil {
				return nil, err
			}
			if ok {
				reachableFromOther = true
				break
			}
		}

		if !reachableFromOther {
			result = append(result, c)
		}
	}

	return result, nil
}
