package static

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the storage the plugin reads assets from. Names passed to
// it are absolute: Root() joined with a slash-separated relative path.
// Implementations must honour ctx cancellation where the backend blocks.
type FileSystem interface {
	// Root is the absolute, cleaned root every name lives under.
	Root() string
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error)
}

// Dir serves assets from an OS directory. A relative root is resolved
// against the working directory.
func Dir(root string) FileSystem {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	return dirFS{root: abs}
}

type dirFS struct {
	root string
}

func (d dirFS) Root() string { return d.root }

func (d dirFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(name)
}

func (d dirFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}

func (d dirFS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(name)
}

// FromFS serves assets from an fs.FS such as embed.FS or os.DirFS.
// Names are rooted at the virtual root "/".
func FromFS(fsys fs.FS) FileSystem {
	return ioFS{fsys: fsys}
}

type ioFS struct {
	fsys fs.FS
}

func (f ioFS) Root() string { return "/" }

// rel converts an absolute virtual name into an fs.FS name.
func (f ioFS) rel(name string) string {
	name = strings.TrimLeft(filepath.ToSlash(name), "/")
	if name == "" {
		return "."
	}
	return name
}

func (f ioFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.Stat(f.fsys, f.rel(name))
}

func (f ioFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.fsys, f.rel(name))
}

func (f ioFS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadDir(f.fsys, f.rel(name))
}
