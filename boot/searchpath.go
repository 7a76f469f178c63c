package boot

import (
	"errors"
	"io"
	"io/fs"
)

// SearchRoot is a root of the module search order.
type SearchRoot struct {
	// Name is reported in diagnostics.
	Name string
	// FS holds modules by slash-separated path.
	FS fs.FS
}

// injectSearchPath prepends the embedded archive to the module search order.
func (c *Context) injectSearchPath() error {
	if err := c.openArchive(); err != nil {
		return err
	}
	c.SearchPath = append([]SearchRoot{{c.image.name, c.archive}}, c.SearchPath...)
	c.msg.Verbosef("search root %s holds %d entries", c.image.name, len(c.archive.File))
	return nil
}

// Lookup returns the first module of the specified name in the search order.
func (c *Context) Lookup(name string) (fs.File, *SearchRoot, error) {
	if !fs.ValidPath(name) {
		return nil, nil, &fs.PathError{Op: "lookup", Path: name, Err: fs.ErrInvalid}
	}
	for i := range c.SearchPath {
		root := &c.SearchPath[i]
		f, err := root.FS.Open(name)
		if err == nil {
			return f, root, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, root, err
		}
	}
	return nil, nil, &fs.PathError{Op: "lookup", Path: name, Err: fs.ErrNotExist}
}

// ModuleError is returned by Require.
type ModuleError struct {
	// Name of the module.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *ModuleError) Unwrap() error   { return e.Err }
func (e *ModuleError) Error() string   { return "module " + e.Name + ": " + e.Err.Error() }
func (e *ModuleError) Message() string { return "cannot load module " + e.Name + ": " + e.Err.Error() }

// Require looks up a module and passes its contents to load.
// Loading a module while it is already being loaded is rejected.
func (c *Context) Require(name string, load func(r io.Reader) error) error {
	if _, ok := c.loading[name]; ok {
		return &ModuleError{name, ErrReentrant}
	}

	f, root, err := c.Lookup(name)
	if err != nil {
		return &ModuleError{name, err}
	}
	defer f.Close()
	c.msg.Verbosef("loading module %s from %s", name, root.Name)

	c.loading[name] = struct{}{}
	defer delete(c.loading, name)
	if err = load(f); err != nil {
		return &ModuleError{name, err}
	}
	return nil
}
