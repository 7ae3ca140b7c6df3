package objfile

import (
	"bufio"
	"compress/zlib"
	"errors"
	"io"
	"strconv"

	"github.com/forgevcs/forge/plumbing"
	format "github.com/forgevcs/forge/plumbing/format/config"
)

// ErrHeader is returned when a loose object's header can't be parsed.
var ErrHeader = errors.New("objfile: invalid header")

// Reader reads a single loose object from its zlib-compressed on-disk form.
type Reader struct {
	zr     io.ReadCloser
	br     *bufio.Reader
	hasher plumbing.Hasher

	typ       plumbing.ObjectType
	size      int64
	remaining int64
}

// NewReader returns a Reader that inflates r. The object header is not read
// until Header is called.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}

	return &Reader{
		zr: zr,
		br: bufio.NewReader(zr),
	}, nil
}

// Header reads and parses the "<type> <size>\x00" header, returning the
// object's type and content size.
func (r *Reader) Header() (t plumbing.ObjectType, size int64, err error) {
	typ, err := r.br.ReadString(' ')
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}
	typ = typ[:len(typ)-1]

	t, err = plumbing.ParseObjectType(typ)
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}

	sz, err := r.br.ReadString(0)
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}
	sz = sz[:len(sz)-1]

	size, err = strconv.ParseInt(sz, 10, 64)
	if err != nil {
		return plumbing.InvalidObject, 0, ErrHeader
	}

	r.typ = t
	r.size = size
	r.remaining = size
	r.hasher = plumbing.NewHasher(format.SHA1, t, size)

	return t, size, nil
}

// Read reads object content, updating the running hash as bytes are
// consumed.
func (r *Reader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}

	n, err := r.br.Read(p)
	if n > 0 {
		r.hasher.Write(p[:n])
		r.remaining -= int64(n)
	}

	return n, err
}

// Hash returns the hash of the object's header and content. It is only
// accurate once the content has been fully read.
func (r *Reader) Hash() plumbing.Hash {
	return r.hasher.Sum()
}

// Close closes the underlying zlib stream.
func (r *Reader) Close() error {
	return r.zr.Close()
}
