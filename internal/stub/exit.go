package stub

import "testing"

// PanicExit is recovered by [HandleExit] as a simulated process exit.
const PanicExit = 0xdeadbeef

const (
	panicFailNow = 0xcafe0000 + iota
	panicFatal
)

// HandleExit recovers a simulated exit, or a failure raised through the [Stub].
// It must be deferred before any call reaches the stub.
func HandleExit(tb testing.TB) {
	tb.Helper()

	switch r := recover(); r {
	case nil, PanicExit:
	case panicFailNow, panicFatal:
		tb.FailNow()
	default:
		panic(r)
	}
}
