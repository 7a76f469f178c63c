package boot

import (
	"os"

	"golang.org/x/sys/unix"

	"shimpack.app/message"
)

// syscallDispatcher provides methods that make state-dependent system calls as part of their behaviour.
type syscallDispatcher interface {
	// executable provides [os.Executable].
	executable() (string, error)
	// open provides [unix.Open] for reading.
	open(name string) (fd int, err error)
	// fstat returns the size of fd via [unix.Fstat].
	fstat(fd int) (size int64, err error)
	// pread provides [unix.Pread].
	pread(fd int, p []byte, off int64) (n int, err error)
	// close provides [unix.Close].
	close(fd int) error

	// fatal prints v through msg and exits.
	fatal(msg message.Msg, v ...any)
}

// direct implements syscallDispatcher on the current kernel.
type direct struct{}

func (direct) executable() (string, error) { return os.Executable() }

func (direct) open(name string) (int, error) {
	fd, err := unix.Open(name, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return fd, nil
}

func (direct) fstat(fd int) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, os.NewSyscallError("fstat", err)
	}
	return st.Size, nil
}

func (direct) pread(fd int, p []byte, off int64) (int, error) {
	n, err := unix.Pread(fd, p, off)
	if n < 0 {
		n = 0
	}
	return n, os.NewSyscallError("pread", err)
}

func (direct) close(fd int) error { return os.NewSyscallError("close", unix.Close(fd)) }

func (direct) fatal(msg message.Msg, v ...any) {
	msg.GetLogger().Println(v...)
	msg.BeforeExit()
	os.Exit(1)
}
