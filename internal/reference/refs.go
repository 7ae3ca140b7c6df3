package reference

import (
	"io"

	"github.com/forgevcs/forge/plumbing"
	"github.com/forgevcs/forge/storage"
)

// References returns all references from the storage.
func References(st storage.Storer) ([]*plumbing.Reference, error) {
	var localRefs []*plumbing.Reference

	iter, err := st.IterReferences()
	if err != nil {
		return nil, err
	}

	for {
		ref, err := iter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		localRefs = append(localRefs, ref)
	}

	return localRefs, nil
}
