package objfile

import (
	"bytes"
	"encoding/base64"

	"github.com/forgevcs/forge/plumbing"
)

// objfileFixture holds a loose object in both its plaintext and
// zlib-compressed on-disk forms, both base64 encoded so they read like the
// fixture tables used elsewhere in the tree.
type objfileFixture struct {
	hash    string
	content string
	data    string
	t       plumbing.ObjectType
}

var objfileFixtures = buildObjfileFixtures()

// buildObjfileFixtures derives the fixture table from Writer itself rather
// than hardcoding zlib output, since loose objects were never actually
// checked into the fixture set this package inherited.
func buildObjfileFixtures() []objfileFixture {
	raw := []struct {
		t       plumbing.ObjectType
		content string
	}{
		{plumbing.BlobObject, ""},
		{plumbing.BlobObject, "hello world\n"},
		{
			plumbing.CommitObject,
			"tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"author A U Thor <author@example.com> 1243040974 +0200\n" +
				"committer A U Thor <author@example.com> 1243040974 +0200\n" +
				"\ninitial commit\n",
		},
	}

	fixtures := make([]objfileFixture, len(raw))
	for i, f := range raw {
		content := []byte(f.content)

		buf := bytes.NewBuffer(nil)
		w := NewWriter(buf)
		if err := w.WriteHeader(f.t, int64(len(content))); err != nil {
			panic(err)
		}
		if _, err := w.Write(content); err != nil {
			panic(err)
		}
		hash := w.Hash()
		if err := w.Close(); err != nil {
			panic(err)
		}

		fixtures[i] = objfileFixture{
			hash:    hash.String(),
			content: base64.StdEncoding.EncodeToString(content),
			data:    base64.StdEncoding.EncodeToString(buf.Bytes()),
			t:       f.t,
		}
	}

	return fixtures
}
