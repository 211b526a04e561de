package fs

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/types"
)

// FileSystem is the top-level orchestrator named in spec.md §4.5. Every
// mutating operation loads a fresh FreeMap and the directories it
// touches from disk, mutates those in-memory copies, and only flushes
// them back on full success. A failure partway through simply drops the
// in-memory copies: the on-disk state is left exactly as it was, the
// all-or-nothing-at-disk-level semantics spec.md §4.5 requires.
//
// Grounded on original_source/code/filesys/filesys.cc's FileSystem
// class, restructured around the OpenFile/Directory/FreeMap layering
// built up in this package.
type FileSystem struct {
	dev        device.BlockDevice
	numSectors int

	// descriptors holds ids 1..MaxOpenFiles (index 0 is the reserved,
	// never-handed-out id), so the backing array needs one extra slot
	// beyond MaxOpenFiles (spec.md §3: "1...MAX_OPEN_FILES").
	descriptors    [types.MaxOpenFiles + 1]*descriptorSlot
	nextDescriptor int
}

type descriptorSlot struct {
	file *OpenFile
	path string
}

// Mount wraps an already-formatted device with a FileSystem. It does no
// I/O itself; every operation below reloads the structures it needs.
func Mount(dev device.BlockDevice) *FileSystem {
	return &FileSystem{dev: dev, numSectors: dev.NumSectors(), nextDescriptor: 1}
}

// Format lays down a brand-new file system on dev: an empty free map
// with the free map's own header sector and the root directory's own
// header sector pre-marked allocated, and an empty root directory.
// Grounded on FileSystem::FileSystem(format=true) in original_source.
func Format(dev device.BlockDevice) (*FileSystem, error) {
	numSectors := dev.NumSectors()
	freeMap := NewFreeMap(numSectors)
	freeMap.Mark(types.FreeMapSector)
	freeMap.Mark(types.RootDirSector)
	freeMap.Mark(types.VolumeSector)

	volBuf := make([]byte, types.SectorSize)
	volUUID := uuid.New()
	copy(volBuf, volUUID[:])
	if err := dev.WriteSector(types.VolumeSector, volBuf); err != nil {
		return nil, fmt.Errorf("fs: format: stamping volume signature: %w", err)
	}

	freeMapHdr := newFileHeader(dev)
	if err := freeMapHdr.allocate(freeMap, byteLen(numSectors)); err != nil {
		return nil, fmt.Errorf("fs: format: allocating free map file: %w", err)
	}
	if err := freeMapHdr.writeChain(types.FreeMapSector); err != nil {
		return nil, fmt.Errorf("fs: format: writing free map header: %w", err)
	}

	rootHdr := newFileHeader(dev)
	if err := rootHdr.allocate(freeMap, types.DirectoryFileSize); err != nil {
		return nil, fmt.Errorf("fs: format: allocating root directory file: %w", err)
	}
	if err := rootHdr.writeChain(types.RootDirSector); err != nil {
		return nil, fmt.Errorf("fs: format: writing root directory header: %w", err)
	}

	freeMapFile, err := openFileAt(dev, types.FreeMapSector)
	if err != nil {
		return nil, fmt.Errorf("fs: format: opening free map file: %w", err)
	}
	if err := freeMap.Store(freeMapFile); err != nil {
		return nil, fmt.Errorf("fs: format: storing free map: %w", err)
	}

	rootFile, err := openFileAt(dev, types.RootDirSector)
	if err != nil {
		return nil, fmt.Errorf("fs: format: opening root directory file: %w", err)
	}
	if err := newDirectory().writeBack(rootFile); err != nil {
		return nil, fmt.Errorf("fs: format: writing empty root directory: %w", err)
	}

	return Mount(dev), nil
}

// VolumeID returns the uuid signature stamped into the volume's
// superblock area at Format time.
func (fsys *FileSystem) VolumeID() (uuid.UUID, error) {
	buf := make([]byte, types.SectorSize)
	if err := fsys.dev.ReadSector(types.VolumeSector, buf); err != nil {
		return uuid.UUID{}, fmt.Errorf("fs: reading volume signature: %w", err)
	}
	id, err := uuid.FromBytes(buf[:16])
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("fs: decoding volume signature: %w", err)
	}
	return id, nil
}

func (fsys *FileSystem) loadFreeMap() (*FreeMap, error) {
	f, err := openFileAt(fsys.dev, types.FreeMapSector)
	if err != nil {
		return nil, fmt.Errorf("fs: loading free map: %w", err)
	}
	freeMap := NewFreeMap(fsys.numSectors)
	if err := freeMap.Load(f); err != nil {
		return nil, err
	}
	return freeMap, nil
}

func (fsys *FileSystem) resolve(path string) (sector int, isDir bool, err error) {
	return findRecursive(fsys.dev, path, types.RootDirSector)
}

func (fsys *FileSystem) loadDirectoryAt(sector int) (*Directory, *OpenFile, error) {
	f, err := openFileAt(fsys.dev, sector)
	if err != nil {
		return nil, nil, err
	}
	dir, err := fetchDirectory(f)
	if err != nil {
		return nil, nil, err
	}
	return dir, f, nil
}

// Create adds a new file or subdirectory at path, allocating sizeBytes
// of storage for it (for a directory, sizeBytes is ignored in favor of
// the fixed DirectoryFileSize). It fails with ErrDuplicate if the name
// already exists in its parent, ErrDirectoryFull if the parent's entry
// table is full, and ErrNoFreeSector if the device is exhausted.
func (fsys *FileSystem) Create(path string, sizeBytes int, isDirectory bool) error {
	parentPath, leaf, err := splitPath(path)
	if err != nil {
		return err
	}
	parentSector, parentIsDir, err := fsys.resolve(parentPath)
	if err != nil {
		return err
	}
	if !parentIsDir {
		return ErrNotADirectory
	}

	freeMap, err := fsys.loadFreeMap()
	if err != nil {
		return err
	}
	parentDir, parentFile, err := fsys.loadDirectoryAt(parentSector)
	if err != nil {
		return err
	}
	if _, _, ok := parentDir.findLocal(leaf); ok {
		return ErrDuplicate
	}

	newSector := freeMap.FindAndSet()
	if newSector == types.NoSector {
		return ErrNoFreeSector
	}

	if err := parentDir.add(leaf, newSector, isDirectory); err != nil {
		freeMap.Clear(newSector)
		return err
	}

	if isDirectory {
		sizeBytes = types.DirectoryFileSize
	}
	hdr := newFileHeader(fsys.dev)
	if err := hdr.allocate(freeMap, sizeBytes); err != nil {
		freeMap.Clear(newSector)
		return err
	}
	if err := hdr.writeChain(newSector); err != nil {
		return fmt.Errorf("fs: create %s: %w", path, err)
	}

	if isDirectory {
		childFile, err := openFileAt(fsys.dev, newSector)
		if err != nil {
			return err
		}
		if err := newDirectory().writeBack(childFile); err != nil {
			return err
		}
	}

	if err := parentDir.writeBack(parentFile); err != nil {
		return err
	}
	freeMapFile, err := openFileAt(fsys.dev, types.FreeMapSector)
	if err != nil {
		return err
	}
	return freeMap.Store(freeMapFile)
}

// Open resolves path and returns a fresh OpenFile handle over it. It
// fails with ErrIsDirectory if path names a directory: directories are
// navigated with List, not opened for byte I/O (spec.md §4.5).
func (fsys *FileSystem) Open(path string) (*OpenFile, error) {
	sector, isDir, err := fsys.resolve(path)
	if err != nil {
		return nil, err
	}
	if isDir {
		return nil, ErrIsDirectory
	}
	return openFileAt(fsys.dev, sector)
}

// Remove deletes the file or, when recursive is true, the directory
// subtree at path, reclaiming every sector it owns. A non-recursive
// Remove on any directory, empty or not, fails with ErrIsDirectory: the
// caller passes recursive=true for directories.
func (fsys *FileSystem) Remove(path string, recursive bool) error {
	parentPath, leaf, err := splitPath(path)
	if err != nil {
		return err
	}
	parentSector, parentIsDir, err := fsys.resolve(parentPath)
	if err != nil {
		return err
	}
	if !parentIsDir {
		return ErrNotADirectory
	}

	freeMap, err := fsys.loadFreeMap()
	if err != nil {
		return err
	}
	parentDir, parentFile, err := fsys.loadDirectoryAt(parentSector)
	if err != nil {
		return err
	}
	targetSector, targetIsDir, ok := parentDir.findLocal(leaf)
	if !ok {
		return ErrPathNotFound
	}
	if targetIsDir && !recursive {
		return ErrIsDirectory
	}

	if err := fsys.removeTree(targetSector, targetIsDir, freeMap); err != nil {
		return err
	}
	if err := parentDir.remove(leaf); err != nil {
		return err
	}

	if err := parentDir.writeBack(parentFile); err != nil {
		return err
	}
	freeMapFile, err := openFileAt(fsys.dev, types.FreeMapSector)
	if err != nil {
		return err
	}
	return freeMap.Store(freeMapFile)
}

// removeTree reclaims sector, descending into its children first when
// it is a directory, then deallocating its own header chain and
// header sector.
func (fsys *FileSystem) removeTree(sector int, isDir bool, freeMap *FreeMap) error {
	hdr, err := fetchFileHeader(fsys.dev, sector)
	if err != nil {
		return err
	}
	if isDir {
		dir, file, err := fsys.loadDirectoryAt(sector)
		if err != nil {
			return err
		}
		_ = file
		for _, child := range dir.liveEntries() {
			if err := fsys.removeTree(child.Sector, child.IsDirectory, freeMap); err != nil {
				return err
			}
		}
	}
	if err := hdr.deallocate(freeMap); err != nil {
		return err
	}
	freeMap.Clear(sector)
	return nil
}

// List returns the names in dirPath, formatted with a two-space indent
// per nesting level when recursive is true (spec.md §4.6 / SPEC_FULL.md
// §4 supplement). Non-recursive listing returns just the immediate
// children.
func (fsys *FileSystem) List(dirPath string, recursive bool) ([]string, error) {
	sector, isDir, err := fsys.resolve(dirPath)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, ErrNotADirectory
	}
	var out []string
	if err := fsys.listInto(sector, 0, recursive, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (fsys *FileSystem) listInto(sector, depth int, recursive bool, out *[]string) error {
	dir, _, err := fsys.loadDirectoryAt(sector)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)
	for _, e := range dir.liveEntries() {
		*out = append(*out, indent+e.Name)
		if recursive && e.IsDirectory {
			if err := fsys.listInto(e.Sector, depth+1, recursive, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Print renders the free map and the root directory tree, grounded on
// FileSystem::Print in original_source.
func (fsys *FileSystem) Print() (string, error) {
	freeMap, err := fsys.loadFreeMap()
	if err != nil {
		return "", err
	}
	entries, err := fsys.List("/", true)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "free map: %s\n", freeMap.Print())
	b.WriteString("root directory file:\n")
	for _, e := range entries {
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Put opens path and installs it in the descriptor table, returning its
// descriptor id. Allocation rotates through 1..MaxOpenFiles starting
// from the slot after the last one handed out (id 0 is never handed
// out — it is reserved the way fd 0 is reserved for stdin in the
// teacher's syscall surface). Put fails with ErrTooManyOpen after a
// full sweep finds no free slot (spec.md §9 design note).
func (fsys *FileSystem) Put(path string) (int, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	for i := 0; i < types.MaxOpenFiles; i++ {
		id := 1 + (fsys.nextDescriptor-1+i)%types.MaxOpenFiles
		if fsys.descriptors[id] == nil {
			fsys.descriptors[id] = &descriptorSlot{file: file, path: path}
			fsys.nextDescriptor = id + 1
			return id, nil
		}
	}
	return 0, ErrTooManyOpen
}

func (fsys *FileSystem) descriptor(id int) (*descriptorSlot, error) {
	if id <= 0 || id > types.MaxOpenFiles || fsys.descriptors[id] == nil {
		return nil, ErrBadDescriptor
	}
	return fsys.descriptors[id], nil
}

// Read reads at most n bytes from descriptor id's current cursor.
func (fsys *FileSystem) Read(id int, buf []byte, n int) (int, error) {
	slot, err := fsys.descriptor(id)
	if err != nil {
		return 0, err
	}
	return slot.file.Read(buf, n)
}

// Write writes at most n bytes at descriptor id's current cursor.
func (fsys *FileSystem) Write(id int, buf []byte, n int) (int, error) {
	slot, err := fsys.descriptor(id)
	if err != nil {
		return 0, err
	}
	return slot.file.Write(buf, n)
}

// Close releases descriptor id, freeing its slot for reuse.
func (fsys *FileSystem) Close(id int) error {
	if _, err := fsys.descriptor(id); err != nil {
		return err
	}
	fsys.descriptors[id] = nil
	return nil
}
