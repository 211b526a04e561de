package fs

import (
	"fmt"
	"strings"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/types"
)

// Directory is the in-memory image of a fixed-capacity NumEntries-slot
// directory file. Per the design note in spec.md §9, it is read and
// written strictly through an OpenFile, never by reaching around the
// byte-I/O layer.
//
// Grounded on original_source/code/filesys/directory.cc.
type Directory struct {
	entries []types.DirectoryEntry
}

// newDirectory returns an empty directory with the fixed entry count.
func newDirectory() *Directory {
	return &Directory{entries: make([]types.DirectoryEntry, types.NumEntries)}
}

// fetchDirectory loads a directory's entry table from its open file.
func fetchDirectory(f *OpenFile) (*Directory, error) {
	d := newDirectory()
	buf := make([]byte, types.DirectoryFileSize)
	n, err := f.ReadAt(buf, types.DirectoryFileSize, 0)
	if err != nil {
		return nil, fmt.Errorf("fs: fetching directory: %w", err)
	}
	for i := 0; i < types.NumEntries; i++ {
		off := i * types.DirEntrySize
		if off+types.DirEntrySize > n {
			break // short (freshly formatted) directory file: rest stay zero
		}
		if err := d.entries[i].UnmarshalBinary(buf[off : off+types.DirEntrySize]); err != nil {
			return nil, fmt.Errorf("fs: decoding directory entry %d: %w", i, err)
		}
	}
	return d, nil
}

// writeBack serializes the whole entry table back through the file layer.
func (d *Directory) writeBack(f *OpenFile) error {
	buf := make([]byte, types.DirectoryFileSize)
	for i := range d.entries {
		eb, err := d.entries[i].MarshalBinary()
		if err != nil {
			return fmt.Errorf("fs: encoding directory entry %d: %w", i, err)
		}
		copy(buf[i*types.DirEntrySize:], eb)
	}
	n, err := f.WriteAt(buf, len(buf), 0)
	if err != nil {
		return fmt.Errorf("fs: writing directory: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("fs: writing directory: short write %d/%d bytes", n, len(buf))
	}
	return nil
}

// findIndex returns the table slot of an in-use entry named name, bounded
// to FileNameMaxLen, or -1 if absent.
func (d *Directory) findIndex(name string) int {
	bounded := boundName(name)
	for i, e := range d.entries {
		if e.InUse && boundName(e.Name) == bounded {
			return i
		}
	}
	return -1
}

func boundName(name string) string {
	if len(name) > types.FileNameMaxLen {
		return name[:types.FileNameMaxLen]
	}
	return name
}

// findLocal looks up name in this directory only, returning its header
// sector and whether it is a subdirectory, or types.NoSector if absent.
func (d *Directory) findLocal(name string) (sector int, isDir bool, ok bool) {
	i := d.findIndex(name)
	if i == -1 {
		return types.NoSector, false, false
	}
	return int(d.entries[i].Sector), d.entries[i].IsDirectory, true
}

// add inserts a new entry. It fails with ErrDuplicate if name already
// exists locally, or ErrDirectoryFull if every slot is occupied.
func (d *Directory) add(name string, sector int, isDirectory bool) error {
	if d.findIndex(name) != -1 {
		return ErrDuplicate
	}
	for i := range d.entries {
		if !d.entries[i].InUse {
			d.entries[i] = types.DirectoryEntry{
				InUse:       true,
				IsDirectory: isDirectory,
				Sector:      int32(sector),
				Name:        boundName(name),
			}
			return nil
		}
	}
	return ErrDirectoryFull
}

// remove marks name's slot free. It does not free any sectors — that is
// the file system layer's job (spec.md §4.4).
func (d *Directory) remove(name string) error {
	i := d.findIndex(name)
	if i == -1 {
		return ErrPathNotFound
	}
	d.entries[i].InUse = false
	return nil
}

// dirEntry exposes one in-use entry for recursive traversal by the file
// system layer (listing, recursive remove).
type dirEntry struct {
	Name        string
	Sector      int
	IsDirectory bool
}

// liveEntries returns every in-use entry in table order.
func (d *Directory) liveEntries() []dirEntry {
	var out []dirEntry
	for _, e := range d.entries {
		if e.InUse {
			out = append(out, dirEntry{Name: e.Name, Sector: int(e.Sector), IsDirectory: e.IsDirectory})
		}
	}
	return out
}

// findRecursive resolves an absolute slash-delimited path starting from
// rootSector, per the algorithm in spec.md §4.4. It reports whether the
// resolved entry is itself a directory (root always is).
func findRecursive(dev device.BlockDevice, path string, rootSector int) (sector int, isDir bool, err error) {
	if len(path) == 0 || path[0] != '/' {
		return types.NoSector, false, ErrInvalidPath
	}
	if path == "/" {
		return rootSector, true, nil
	}

	rest := path[1:]
	seg := rest
	tail := ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		seg = rest[:i]
		tail = rest[i:]
	}

	f, err := openFileAt(dev, rootSector)
	if err != nil {
		return types.NoSector, false, err
	}
	dir, err := fetchDirectory(f)
	if err != nil {
		return types.NoSector, false, err
	}

	childSector, childIsDir, ok := dir.findLocal(seg)
	if !ok {
		return types.NoSector, false, ErrPathNotFound
	}
	if tail == "" {
		return childSector, childIsDir, nil
	}
	if !childIsDir {
		return types.NoSector, false, ErrNotADirectory
	}
	return findRecursive(dev, tail, childSector)
}

// splitPath decomposes an absolute path into (parent_path, leaf_name) by
// its last '/', per spec.md §4.5. If the last '/' is at index 0,
// parent_path is "/".
func splitPath(path string) (parent, leaf string, err error) {
	if len(path) == 0 || path[0] != '/' || path == "/" {
		return "", "", ErrInvalidPath
	}
	i := strings.LastIndexByte(path, '/')
	leaf = path[i+1:]
	if leaf == "" {
		return "", "", ErrInvalidPath
	}
	if i == 0 {
		return "/", leaf, nil
	}
	return path[:i], leaf, nil
}
