package boot

import (
	"errors"
	"io"
)

// SubRange narrows an [io.ReaderAt] to the byte range [start, end).
// Offsets seen through SubRange are relative to start.
type SubRange struct {
	r          io.ReaderAt
	start, end int64
	// relative to start
	cursor int64
}

var (
	_ io.ReadSeeker = (*SubRange)(nil)
	_ io.ReaderAt   = (*SubRange)(nil)
)

// NewSubRange returns a [SubRange] of r covering [start, end).
func NewSubRange(r io.ReaderAt, start, end int64) *SubRange {
	if start < 0 || end < start {
		panic("invalid range")
	}
	return &SubRange{r: r, start: start, end: end}
}

// Size returns the length of the range.
func (s *SubRange) Size() int64 { return s.end - s.start }

// Start returns the absolute offset of the range in the underlying reader.
func (s *SubRange) Start() int64 { return s.start }

func (s *SubRange) Read(p []byte) (n int, err error) {
	n, err = s.ReadAt(p, s.cursor)
	s.cursor += int64(n)
	return
}

func (s *SubRange) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= s.Size() {
		return 0, io.EOF
	}

	if max := s.Size() - off; int64(len(p)) > max {
		p = p[:max]
		n, err = s.r.ReadAt(p, s.start+off)
		if err == nil {
			err = io.EOF
		}
		return
	}
	return s.r.ReadAt(p, s.start+off)
}

var errWhence = errors.New("invalid whence")

func (s *SubRange) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += s.cursor
	case io.SeekEnd:
		offset += s.Size()
	default:
		return 0, errWhence
	}

	if offset < 0 {
		return 0, ErrNegativeOffset
	}
	s.cursor = offset
	return offset, nil
}

// image is the host binary opened for reading.
type image struct {
	k    syscallDispatcher
	name string
	fd   int
	size int64
}

// ReadAt implements [io.ReaderAt] on top of pread, which may return short.
func (i *image) ReadAt(p []byte, off int64) (n int, err error) {
	for n < len(p) {
		var nr int
		nr, err = i.k.pread(i.fd, p[n:], off+int64(n))
		n += nr
		if err != nil {
			return
		}
		if nr == 0 {
			return n, io.EOF
		}
	}
	return
}

// openImage opens the running executable.
func openImage(k syscallDispatcher) (*image, error) {
	name, err := k.executable()
	if err != nil {
		return nil, &StartupError{"locate executable", err}
	}

	fd, err := k.open(name)
	if err != nil {
		return nil, &StartupError{"open executable", err}
	}

	i := &image{k: k, name: name, fd: fd}
	if i.size, err = k.fstat(fd); err != nil {
		_ = k.close(fd)
		return nil, &StartupError{"stat executable", err}
	}
	return i, nil
}

// payload returns the range holding the payload of the host binary.
func (i *image) payload(offsetFromEnd int64) (*SubRange, error) {
	if offsetFromEnd < 0 || offsetFromEnd > i.size {
		return nil, &StartupError{"seek to payload", ErrOffsetRange}
	}
	return NewSubRange(i, i.size-offsetFromEnd, i.size), nil
}

func (i *image) close() error { return i.k.close(i.fd) }
