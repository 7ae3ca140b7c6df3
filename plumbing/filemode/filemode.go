// Package filemode defines the file modes used in git trees and the
// staging index.
package filemode

import (
	"fmt"
	"os"
	"strconv"
)

// A FileMode represents the unix mode_t bits used by git to classify tree
// and index entries. Unlike os.FileMode, FileMode bits map directly onto
// the handful of values git itself ever writes.
type FileMode uint32

const (
	Empty      FileMode = 0
	Dir        FileMode = 0o040000
	Regular    FileMode = 0o100644
	Deprecated FileMode = 0o100664
	Executable FileMode = 0o100755
	Symlink    FileMode = 0o120000
	Submodule  FileMode = 0o160000
)

// New parses a mode string as found in a tree entry or in `git diff-tree`
// output. The string is interpreted as octal, regardless of leading
// zeroes, and may have any number of leading zeroes.
func New(input string) (FileMode, error) {
	var m uint32

	length := len(input)
	if length == 0 {
		return Empty, fmt.Errorf("malformed mode: empty string")
	}

	for i := 0; i < length; i++ {
		c := input[i]
		if c < '0' || c > '9' {
			return Empty, fmt.Errorf("malformed mode: invalid character %q in %q", c, input)
		}
		if c > '7' {
			return Empty, fmt.Errorf("malformed mode: invalid octal digit %q in %q", c, input)
		}

		m = (m << 3) | uint32(c-'0')
	}

	return FileMode(m), nil
}

// NewFromOSFileMode converts an os.FileMode into the equivalent git
// FileMode. Modes with no git equivalent (devices, sockets, pipes,
// temporary files, ...) return Empty and a descriptive error.
func NewFromOSFileMode(m os.FileMode) (FileMode, error) {
	if m&os.ModeTemporary != 0 {
		return Empty, fmt.Errorf("no equivalent git mode for temporary files (%s)", m)
	}
	if m&os.ModeDevice != 0 {
		return Empty, fmt.Errorf("no equivalent git mode for device files (%s)", m)
	}
	if m&os.ModeNamedPipe != 0 {
		return Empty, fmt.Errorf("no equivalent git mode for named pipes (%s)", m)
	}
	if m&os.ModeSocket != 0 {
		return Empty, fmt.Errorf("no equivalent git mode for sockets (%s)", m)
	}
	if m&os.ModeCharDevice != 0 {
		return Empty, fmt.Errorf("no equivalent git mode for char devices (%s)", m)
	}

	if m&os.ModeSymlink != 0 {
		return Symlink, nil
	}
	if m&os.ModeDir != 0 {
		return Dir, nil
	}

	if m&0o100 != 0 {
		return Executable, nil
	}

	return Regular, nil
}

// Bytes returns the little-endian 4-byte representation of m, as used by
// the staging index codec.
func (m FileMode) Bytes() []byte {
	return []byte{
		byte(m),
		byte(m >> 8),
		byte(m >> 16),
		byte(m >> 24),
	}
}

// String renders m the way git does: seven zero-padded octal digits.
func (m FileMode) String() string {
	return fmt.Sprintf("%07s", strconv.FormatUint(uint64(m), 8))
}

// IsMalformed returns true if m does not correspond to any of the known
// git file modes.
func (m FileMode) IsMalformed() bool {
	switch m {
	case Dir, Regular, Deprecated, Executable, Symlink, Submodule:
		return false
	default:
		return true
	}
}

// IsRegular returns true for the two regular-file modes (normal and the
// deprecated group-writable variant).
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Deprecated
}

// IsFile returns true for anything that isn't a directory or submodule:
// regular files, the deprecated mode, executables and symlinks.
func (m FileMode) IsFile() bool {
	switch m {
	case Regular, Deprecated, Executable, Symlink:
		return true
	default:
		return false
	}
}

// ToOSFileMode converts m to the closest matching os.FileMode. It returns
// an error if m IsMalformed.
func (m FileMode) ToOSFileMode() (os.FileMode, error) {
	switch m {
	case Dir, Submodule:
		return os.ModePerm | os.ModeDir, nil
	case Symlink:
		return os.ModePerm | os.ModeSymlink, nil
	case Regular, Deprecated:
		return os.FileMode(0o644), nil
	case Executable:
		return os.FileMode(0o755), nil
	default:
		return os.FileMode(0), fmt.Errorf("malformed mode %s has no equivalent os.FileMode", m)
	}
}
