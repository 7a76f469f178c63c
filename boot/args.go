package boot

import (
	"strings"
)

// ArgBuffer holds synthetic arguments in a single contiguous buffer.
//
// Data holds each argument terminated by a NUL byte, and Offsets holds the offset of
// each argument in Data. The first argument is the program identity slot.
type ArgBuffer struct {
	Data    string
	Offsets []uint32
}

// NewArgBuffer lays out args in a new [ArgBuffer].
// An argument containing a NUL byte cannot be represented and causes a panic.
func NewArgBuffer(args ...string) ArgBuffer {
	var (
		b    strings.Builder
		offs = make([]uint32, 0, len(args))
	)
	for _, arg := range args {
		if strings.IndexByte(arg, 0) >= 0 {
			panic("argument " + arg + " contains NUL")
		}
		offs = append(offs, uint32(b.Len()))
		b.WriteString(arg)
		b.WriteByte(0)
	}
	return ArgBuffer{b.String(), offs}
}

// Len returns the number of arguments held by [ArgBuffer].
func (b ArgBuffer) Len() int { return len(b.Offsets) }

// Valid returns whether the offset table describes Data exactly.
func (b ArgBuffer) Valid() bool {
	var next uint32
	for _, off := range b.Offsets {
		if off != next || int(off) >= len(b.Data) {
			return false
		}
		end := strings.IndexByte(b.Data[off:], 0)
		if end < 0 {
			return false
		}
		next = off + uint32(end) + 1
	}
	return int(next) == len(b.Data)
}

// Index returns the argument at index i. [ArgBuffer] must be valid.
func (b ArgBuffer) Index(i int) string {
	s := b.Data[b.Offsets[i]:]
	return s[:strings.IndexByte(s, 0)]
}

// Strings returns a copy of all arguments.
func (b ArgBuffer) Strings() []string {
	v := make([]string, b.Len())
	for i := range v {
		v[i] = b.Index(i)
	}
	return v
}

// splice builds the argument vector seen by the interpreter: the program identity,
// the synthetic arguments following the identity slot, then argv[1:].
// If identity is false, argv[0] takes the place of the identity slot.
func splice(argv []string, b ArgBuffer, identity bool) []string {
	v := make([]string, 0, b.Len()+len(argv)-1)
	if identity {
		v = append(v, b.Index(0))
	} else {
		v = append(v, argv[0])
	}
	for i := 1; i < b.Len(); i++ {
		v = append(v, b.Index(i))
	}
	return append(v, argv[1:]...)
}
