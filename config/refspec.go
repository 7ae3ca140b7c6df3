package config

import (
	"errors"
	"strings"

	"github.com/forgevcs/forge/plumbing"
)

const (
	refSpecWildcard  = "*"
	refSpecForce     = "+"
	refSpecSeparator = ":"
)

var (
	// ErrRefSpecMalformedSeparator is returned by Validate when a RefSpec
	// doesn't have exactly one separator, or has the separator as its last
	// character.
	ErrRefSpecMalformedSeparator = errors.New("malformed refspec, separator is required")
	// ErrRefSpecMalformedWildcard is returned by Validate when the number
	// of wildcards on each side of the separator don't match, or a side
	// has more than one wildcard.
	ErrRefSpecMalformedWildcard = errors.New("malformed refspec, mismatched number of wildcards")
)

// RefSpec is a mapping from local branches to remote references.
// The format of the refspec is an optional +, followed by <src>:<dst>, where
// <src> is the pattern for references on the remote side and <dst> is where
// those references will be written locally. The + tells Git to update the
// reference even if it isn't a fast-forward.
// eg.: "+refs/heads/*:refs/remotes/origin/*"
//
// https://git-scm.com/book/en/v2/Git-Internals-The-Refspec
type RefSpec string

// IsValid validates the RefSpec.
func (s RefSpec) IsValid() bool {
	return s.Validate() == nil
}

// Validate validates the RefSpec.
func (s RefSpec) Validate() error {
	spec := string(s)
	if strings.Count(spec, refSpecSeparator) != 1 {
		return ErrRefSpecMalformedSeparator
	}

	sep := strings.Index(spec, refSpecSeparator)
	if sep == len(spec)-1 {
		return ErrRefSpecMalformedSeparator
	}

	ws := strings.Count(spec[0:sep], refSpecWildcard)
	wd := strings.Count(spec[sep+1:], refSpecWildcard)
	if ws != wd || ws > 1 || wd > 1 {
		return ErrRefSpecMalformedWildcard
	}

	return nil
}

// IsForceUpdate returns if update is allowed in non fast-forward merges.
func (s RefSpec) IsForceUpdate() bool {
	return strings.HasPrefix(string(s), refSpecForce)
}

// IsDelete returns true if the RefSpec has an empty source, used to delete
// references on the destination.
func (s RefSpec) IsDelete() bool {
	return s.Src() == ""
}

// IsExactSHA1 returns true if the source side of the RefSpec is a 40
// character SHA1 instead of a reference name pattern.
func (s RefSpec) IsExactSHA1() bool {
	return plumbing.IsHash(s.Src())
}

// Src returns the src side.
func (s RefSpec) Src() string {
	spec := string(s)
	spec = strings.TrimPrefix(spec, refSpecForce)

	sep := strings.Index(spec, refSpecSeparator)
	return spec[:sep]
}

// Match matches the given plumbing.ReferenceName against the source.
func (s RefSpec) Match(n plumbing.ReferenceName) bool {
	if !s.isGlob() {
		return s.matchExact(n)
	}

	return s.matchGlob(n)
}

func (s RefSpec) isGlob() bool {
	return strings.Contains(s.Src(), refSpecWildcard)
}

func (s RefSpec) matchExact(n plumbing.ReferenceName) bool {
	return s.Src() == n.String()
}

func (s RefSpec) matchGlob(n plumbing.ReferenceName) bool {
	src := s.Src()
	name := n.String()
	wildcard := strings.Index(src, refSpecWildcard)

	var prefix, suffix string
	prefix = src[0:wildcard]
	if wildcard+1 < len(src) {
		suffix = src[wildcard+1:]
	}

	return len(name) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, suffix)
}

// Dst returns the destination for the given remote reference, substituting
// any wildcard captured from n.
func (s RefSpec) Dst(n plumbing.ReferenceName) plumbing.ReferenceName {
	spec := string(s)
	sep := strings.Index(spec, refSpecSeparator)
	dst := spec[sep+1:]
	src := s.Src()

	if !s.isGlob() {
		return plumbing.ReferenceName(dst)
	}

	name := n.String()
	ws := strings.Index(src, refSpecWildcard)
	wd := strings.Index(dst, refSpecWildcard)
	match := name[ws : len(name)-(len(src)-(ws+1))]

	return plumbing.ReferenceName(dst[0:wd] + match + dst[wd+1:])
}

// Reverse returns a new RefSpec with the source and destination reversed.
func (s RefSpec) Reverse() RefSpec {
	spec := string(s)
	sep := strings.Index(spec, refSpecSeparator)

	return RefSpec(spec[sep+1:] + refSpecSeparator + spec[0:sep])
}

func (s RefSpec) String() string {
	return string(s)
}

// MatchAny returns true if any of the RefSpec match with the given
// ReferenceName.
func MatchAny(l []RefSpec, n plumbing.ReferenceName) bool {
	for _, r := range l {
		if r.Match(n) {
			return true
		}
	}

	return false
}
