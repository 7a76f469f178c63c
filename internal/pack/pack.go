// Package pack appends a payload to a copy of a host binary.
package pack

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"shimpack.app/boot"
)

// ErrEmpty is returned for a payload holding no bytes.
var ErrEmpty = errors.New("payload is empty")

// Write copies host to a new executable at name, followed by payload.
// The returned offset is the distance from the end of the output to the start of payload.
func Write(name string, host, payload io.Reader) (offset int64, err error) {
	var f *os.File
	if f, err = os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755); err != nil {
		return
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(f, host); err != nil {
		return
	}
	if offset, err = io.Copy(f, payload); err == nil && offset == 0 {
		err = ErrEmpty
	}
	return
}

// Script appends the script at script to a copy of host.
func Script(name, host, script string) (int64, error) {
	h, err := os.Open(host)
	if err != nil {
		return 0, err
	}
	defer h.Close()

	s, err := os.Open(script)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return Write(name, h, s)
}

// Archive appends an archive to a copy of host. If src is a directory, a new archive
// of its contents is built, otherwise src must be an existing zip archive.
func Archive(name, host, src string) (int64, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	var payload io.Reader
	if fi.IsDir() {
		var buf bytes.Buffer
		if err = Zip(&buf, os.DirFS(src)); err != nil {
			return 0, err
		}
		payload = &buf
	} else {
		var data []byte
		if data, err = os.ReadFile(src); err != nil {
			return 0, err
		}
		if _, err = zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
			return 0, &os.PathError{Op: "read", Path: src, Err: err}
		}
		payload = bytes.NewReader(data)
	}

	h, err := os.Open(host)
	if err != nil {
		return 0, err
	}
	defer h.Close()
	return Write(name, h, payload)
}

// modTime is the modification time of every archived file, so archives only depend on content.
var modTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Zip writes an archive of the regular files in fsys to w.
func Zip(w io.Writer, fsys fs.FS) error {
	var names []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			names = append(names, path)
		}
		return nil
	}); err != nil {
		return err
	}
	slices.Sort(names)

	z := zip.NewWriter(w)
	for _, path := range names {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		fw, err := z.CreateHeader(&zip.FileHeader{Name: path, Method: zip.Deflate, Modified: modTime})
		if err != nil {
			return err
		}
		if _, err = fw.Write(data); err != nil {
			return err
		}
	}
	return z.Close()
}

// Info describes the payload of a packed binary.
type Info struct {
	// Size is the size of the packed binary.
	Size int64
	// Start is the offset of the payload.
	Start int64
	// Entries holds the names of archive entries, or nil if the payload is not an archive.
	Entries []string
}

// Inspect locates the payload at offset from the end of the packed binary at name.
func Inspect(name string, offset int64) (*Info, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if offset <= 0 || offset > fi.Size() {
		return nil, &boot.StartupError{Step: "seek to payload", Err: boot.ErrOffsetRange}
	}

	info := &Info{Size: fi.Size(), Start: fi.Size() - offset}
	r := boot.NewSubRange(f, info.Start, info.Size)
	if z, zipErr := zip.NewReader(r, r.Size()); zipErr == nil {
		info.Entries = make([]string, len(z.File))
		for i, file := range z.File {
			info.Entries[i] = file.Name
		}
	}
	return info, nil
}
