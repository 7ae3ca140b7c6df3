package plumbing

import (
	"fmt"
	"strings"
)

const (
	refHeadPrefix   = "refs/heads/"
	refTagPrefix    = "refs/tags/"
	refRemotePrefix = "refs/remotes/"
	refNotePrefix   = "refs/notes/"
	symrefPrefix    = "ref: "
)

// HEAD is the name of the reference pointing at the current checkout.
const HEAD ReferenceName = "HEAD"

// ReferenceType defines the type of a reference.
type ReferenceType int8

const (
	InvalidReference  ReferenceType = 0
	HashReference     ReferenceType = 1
	SymbolicReference ReferenceType = 2
)

func (r ReferenceType) String() string {
	switch r {
	case HashReference:
		return "hash-reference"
	case SymbolicReference:
		return "symbolic-reference"
	default:
		return "invalid-reference"
	}
}

// ReferenceName is a reference path such as "refs/heads/master".
type ReferenceName string

// Short returns the last path component, with the refs/<kind>/ prefix
// stripped off for well-known kinds (heads, tags) and the full "refs/"
// prefix stripped off otherwise.
func (r ReferenceName) Short() string {
	s := string(r)
	res := s
	for _, prefix := range []string{
		refHeadPrefix,
		refTagPrefix,
		refRemotePrefix,
	} {
		if strings.HasPrefix(s, prefix) {
			res = s[len(prefix):]
		}
	}

	if res == s && strings.HasPrefix(s, "refs/") {
		res = s[len("refs/"):]
	}

	return res
}

func (r ReferenceName) String() string {
	return string(r)
}

// IsBranch returns true for refs/heads/... names.
func (r ReferenceName) IsBranch() bool {
	return strings.HasPrefix(string(r), refHeadPrefix)
}

// IsNote returns true for refs/notes/... names.
func (r ReferenceName) IsNote() bool {
	return strings.HasPrefix(string(r), refNotePrefix)
}

// IsRemote returns true for refs/remotes/... names.
func (r ReferenceName) IsRemote() bool {
	return strings.HasPrefix(string(r), refRemotePrefix)
}

// IsTag returns true for refs/tags/... names.
func (r ReferenceName) IsTag() bool {
	return strings.HasPrefix(string(r), refTagPrefix)
}

// ErrInvalidReferenceName is returned by Validate when a reference name
// does not conform to git's ref-name rules.
var ErrInvalidReferenceName = fmt.Errorf("invalid reference name")

// Validate checks r against the same rules git applies in
// check-ref-format: no empty path components, no ".." or trailing "." in a
// component, no ".lock" suffix, no ASCII control characters or any of
// space ~ ^ : ? * [ \, no bare "@" component or "@{" sequence, and branch
// or tag names may not start with "-".
func (r ReferenceName) Validate() error {
	s := string(r)

	if s == string(HEAD) {
		return nil
	}

	if !strings.HasPrefix(s, "refs/") {
		return r.invalid()
	}

	suffix := s[len("refs/"):]
	if suffix == "" {
		return r.invalid()
	}

	for _, c := range strings.Split(s, "/") {
		if err := validateComponent(c); err != nil {
			return r.invalid()
		}
	}

	if strings.HasPrefix(s, refHeadPrefix) {
		if strings.HasPrefix(s[len(refHeadPrefix):], "-") {
			return r.invalid()
		}
	}
	if strings.HasPrefix(s, refTagPrefix) {
		if strings.HasPrefix(s[len(refTagPrefix):], "-") {
			return r.invalid()
		}
	}

	return nil
}

func (r ReferenceName) invalid() error {
	return fmt.Errorf("%w: %q", ErrInvalidReferenceName, string(r))
}

func validateComponent(c string) error {
	if c == "" {
		return ErrInvalidReferenceName
	}
	if c == "." || c == ".." || c == "@" {
		return ErrInvalidReferenceName
	}
	if strings.HasSuffix(c, ".") || strings.HasSuffix(c, ".lock") {
		return ErrInvalidReferenceName
	}
	if strings.Contains(c, "..") || strings.Contains(c, "@{") {
		return ErrInvalidReferenceName
	}
	for _, r := range c {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidReferenceName
		}
		switch r {
		case ' ', '~', '^', ':', '?', '*', '[', '\\':
			return ErrInvalidReferenceName
		}
	}
	return nil
}

// NewBranchReferenceName returns the full reference name for a branch.
func NewBranchReferenceName(name string) ReferenceName {
	return ReferenceName(refHeadPrefix + name)
}

// NewNoteReferenceName returns the full reference name for a note.
func NewNoteReferenceName(name string) ReferenceName {
	return ReferenceName(refNotePrefix + name)
}

// NewRemoteReferenceName returns the full reference name for a remote
// tracking branch.
func NewRemoteReferenceName(remote, name string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/" + name)
}

// NewRemoteHEADReferenceName returns the full reference name for a remote's
// HEAD symbolic reference.
func NewRemoteHEADReferenceName(remote string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/HEAD")
}

// NewTagReferenceName returns the full reference name for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return ReferenceName(refTagPrefix + name)
}

// Reference is either a direct reference, pointing at an object hash, or a
// symbolic reference, pointing at another ReferenceName.
type Reference struct {
	t      ReferenceType
	n      ReferenceName
	h      Hash
	target ReferenceName
}

// NewReferenceFromStrings creates a Reference from its on-disk string
// representation: name is the ref path, target is either a 40/64-hex hash
// or a "ref: <name>" symbolic target.
func NewReferenceFromStrings(name, target string) *Reference {
	n := ReferenceName(name)

	if strings.HasPrefix(target, symrefPrefix) {
		return NewSymbolicReference(n, ReferenceName(strings.TrimPrefix(target, symrefPrefix)))
	}

	return NewHashReference(n, NewHash(target))
}

// NewSymbolicReference creates a new symbolic reference named n, pointing
// at target.
func NewSymbolicReference(n, target ReferenceName) *Reference {
	return &Reference{
		t:      SymbolicReference,
		n:      n,
		target: target,
	}
}

// NewHashReference creates a new direct reference named n, pointing at h.
func NewHashReference(n ReferenceName, h Hash) *Reference {
	return &Reference{
		t: HashReference,
		n: n,
		h: h,
	}
}

// Type returns the reference's type.
func (r *Reference) Type() ReferenceType {
	if r == nil {
		return InvalidReference
	}
	return r.t
}

// Name returns the reference's name.
func (r *Reference) Name() ReferenceName {
	if r == nil {
		return ""
	}
	return r.n
}

// Hash returns the hash a direct reference points at. It is ZeroHash for
// symbolic references.
func (r *Reference) Hash() Hash {
	if r == nil {
		return ZeroHash
	}
	return r.h
}

// Target returns the reference name a symbolic reference points at. It is
// empty for direct references.
func (r *Reference) Target() ReferenceName {
	if r == nil {
		return ""
	}
	return r.target
}

// Strings returns the on-disk (name, target) pair for the reference.
func (r *Reference) Strings() [2]string {
	if r.Type() == SymbolicReference {
		return [2]string{r.Name().String(), symrefPrefix + r.Target().String()}
	}

	return [2]string{r.Name().String(), r.Hash().String()}
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}

	switch r.Type() {
	case SymbolicReference:
		return symrefPrefix + r.Target().String()
	case HashReference:
		return r.Hash().String()
	default:
		return ""
	}
}
