package tree

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// FS answers the two filesystem questions the tree needs. Both calls are
// synchronous.
type FS interface {
	ListDir(path string) ([]string, error)
	IsDir(path string) bool
}

// Resolver is implemented by filesystems that can resolve symlinks. Cascading
// checks use it to avoid loading the same directory twice through a cycle.
type Resolver interface {
	RealPath(path string) (string, error)
}

// Listing is the outcome of listing one directory. A failed listing keeps
// its error so callers can tell a genuinely empty directory from one that
// could not be read; the tree treats both as empty.
type Listing struct {
	Names []string
	Err   error
}

// Failed reports whether the listing could not be read.
func (l Listing) Failed() bool { return l.Err != nil }

func list(p FS, path string) Listing {
	names, err := p.ListDir(path)
	if err != nil {
		return Listing{Err: err}
	}
	return Listing{Names: names}
}

// OSFS reads the local filesystem.
type OSFS struct{}

func (OSFS) ListDir(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// IsDir follows symlinks, so a link to a directory is a directory.
func (OSFS) IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (OSFS) RealPath(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// BillyFS reads any go-billy filesystem. Paths are passed through as is,
// so the filesystem must accept the tree's absolute paths.
type BillyFS struct {
	FS billy.Filesystem
}

func NewBillyFS(fs billy.Filesystem) *BillyFS {
	return &BillyFS{FS: fs}
}

func (p *BillyFS) ListDir(path string) ([]string, error) {
	infos, err := p.FS.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names, nil
}

func (p *BillyFS) IsDir(path string) bool {
	fi, err := p.FS.Stat(path)
	return err == nil && fi.IsDir()
}
