package boot

import (
	"archive/zip"
	"io"
)

// openArchive reads the central directory of the archive held by r.
func openArchive(r *SubRange) (*zip.Reader, error) {
	z, err := zip.NewReader(r, r.Size())
	if err != nil {
		return nil, &StartupError{"read embedded archive", err}
	}
	return z, nil
}

// archiveEntry returns a reader over the entry name of z, held by the executable at archive.
// A stored entry is returned as a [SubRange] of r, a compressed entry is decompressed while read.
func archiveEntry(z *zip.Reader, r *SubRange, archive, name string) (io.Reader, error) {
	for _, f := range z.File {
		if f.Name != name || f.Mode().IsDir() {
			continue
		}

		if f.Method == zip.Store {
			off, err := f.DataOffset()
			if err != nil {
				return nil, &StartupError{"locate archive entry " + name, err}
			}
			return NewSubRange(r, off, off+int64(f.CompressedSize64)), nil
		}

		rc, err := f.Open()
		if err != nil {
			return nil, &StartupError{"open archive entry " + name, err}
		}
		return rc, nil
	}
	return nil, &StartupError{"open archive entry", &EntryError{name, archive}}
}
