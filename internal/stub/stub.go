// Package stub records the system calls a unit under test makes through its
// dispatcher and checks them against an expected sequence.
package stub

import (
	"errors"
	"reflect"
	"slices"
	"strconv"
	"testing"
)

// stub must never end up in a production binary
var _ = func() {
	if !testing.Testing() {
		panic("stub imported while not in a test")
	}
}

// ExpectArgs holds the expected arguments of a [Call] by position.
type ExpectArgs = [4]any

// A Call is one expected call and the outcome returned to the caller.
type Call struct {
	// Name of the dispatcher method.
	Name string
	// Args are the expected arguments, checked by [CheckArg] or [CheckArgReflect].
	Args ExpectArgs
	// Ret is handed back as the return value.
	Ret any
	// Err is handed back as the returned error.
	Err error
}

// ErrCheck is returned by [Call.Error] when an argument did not match.
var ErrCheck = errors.New("one or more arguments did not match")

// Error returns Err if every check passed, or [ErrCheck] otherwise.
func (c *Call) Error(ok ...bool) error {
	if slices.Contains(ok, false) {
		return ErrCheck
	}
	return c.Err
}

// Expect is the sequence of calls a single goroutine is expected to make.
type Expect []Call

// A Stub walks an [Expect] as calls are made.
type Stub[K any] struct {
	testing.TB

	want Expect
	pos  int
}

// New returns a [Stub] expecting the calls in want.
func New[K any](tb testing.TB, want Expect) *Stub[K] { return &Stub[K]{TB: tb, want: want} }

func (s *Stub[K]) FailNow()          { s.Helper(); panic(panicFailNow) }
func (s *Stub[K]) Fatal(args ...any) { s.Helper(); s.Error(args...); panic(panicFatal) }
func (s *Stub[K]) Fatalf(format string, args ...any) {
	s.Helper()
	s.Errorf(format, args...)
	panic(panicFatal)
}

// Pos returns the number of calls made so far.
func (s *Stub[K]) Pos() int { return s.pos }

// Len returns the number of expected calls.
func (s *Stub[K]) Len() int { return len(s.want) }

// VisitIncomplete calls f if fewer calls were made than expected.
func (s *Stub[K]) VisitIncomplete(f func(s *Stub[K])) {
	s.Helper()
	if s.pos != len(s.want) {
		f(s)
	}
}

// Expects consumes the next expected call, which must be named name.
func (s *Stub[K]) Expects(name string) *Call {
	s.Helper()

	if s.pos == len(s.want) {
		s.Fatalf("Expects: func = %s beyond %d expected calls", name, len(s.want))
	}
	expect := &s.want[s.pos]
	if name != expect.Name {
		s.Fatalf("Expects: func = %s, want %s (%d)", name, expect.Name, s.pos)
	}
	s.pos++
	return expect
}

// last returns the call most recently consumed by Expects.
func (s *Stub[K]) last(fn string) *Call {
	if s.pos == 0 {
		panic("invalid call to " + fn)
	}
	return &s.want[s.pos-1]
}

// CheckArg checks argument n of the last call with the == operator.
func CheckArg[T comparable, K any](s *Stub[K], arg string, got T, n int) bool {
	s.Helper()
	expect := s.last("CheckArg")
	if want, ok := expect.Args[n].(T); !ok || got != want {
		s.Errorf("%s: %s = %#v, want %#v (%d)", expect.Name, arg, got, expect.Args[n], s.pos-1)
		return false
	}
	return true
}

// CheckArgReflect checks argument n of the last call with [reflect.DeepEqual].
func CheckArgReflect[K any](s *Stub[K], arg string, got any, n int) bool {
	s.Helper()
	expect := s.last("CheckArgReflect")
	if !reflect.DeepEqual(got, expect.Args[n]) {
		s.Errorf("%s: %s = %#v, want %#v (%d)", expect.Name, arg, got, expect.Args[n], s.pos-1)
		return false
	}
	return true
}

// UniqueError is an error only matching a [UniqueError] of the same value.
type UniqueError uintptr

func (e UniqueError) Error() string { return "injected error " + strconv.Itoa(int(e)) }

func (e UniqueError) Is(target error) bool {
	u, ok := target.(UniqueError)
	return ok && e == u
}
