package fs

import (
	"fmt"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/types"
)

// OpenFile is a cursor-bearing handle performing logical byte I/O over a
// FileHeader chain. It is a transient object, owned solely by its
// creator (spec.md §3): nothing here is safe to share across threads.
type OpenFile struct {
	dev    device.BlockDevice
	hdr    *fileHeader
	sector int // the header's own sector, needed to flush it back
	cursor int
}

// openFileAt loads the header at sector and returns a fresh OpenFile
// handle over it.
func openFileAt(dev device.BlockDevice, sector int) (*OpenFile, error) {
	hdr, err := fetchFileHeader(dev, sector)
	if err != nil {
		return nil, err
	}
	return &OpenFile{dev: dev, hdr: hdr, sector: sector}, nil
}

// Length returns the file's logical byte length.
func (f *OpenFile) Length() int { return f.hdr.length() }

// ReadAt reads the intersection of [offset, offset+n) with [0, length)
// one sector at a time, returning the number of bytes actually read.
// Reads past end-of-file are clamped, never an error (spec.md §4.3).
func (f *OpenFile) ReadAt(buf []byte, n, offset int) (int, error) {
	if offset >= f.Length() {
		return 0, nil
	}
	if offset+n > f.Length() {
		n = f.Length() - offset
	}
	read := 0
	sectorBuf := make([]byte, types.SectorSize)
	for read < n {
		cur := offset + read
		sector, err := f.hdr.byteToSector(cur)
		if err != nil {
			return read, fmt.Errorf("fs: read at %d: %w", cur, err)
		}
		if err := f.dev.ReadSector(sector, sectorBuf); err != nil {
			return read, fmt.Errorf("fs: read at %d: %w", cur, err)
		}
		within := cur % types.SectorSize
		take := types.SectorSize - within
		if take > n-read {
			take = n - read
		}
		copy(buf[read:read+take], sectorBuf[within:within+take])
		read += take
	}
	return read, nil
}

// WriteAt writes the intersection of [offset, offset+n) with [0, length)
// one sector at a time, read-modify-write on partially touched boundary
// sectors. Writes past end-of-file are truncated: files are
// non-extensible at this layer (spec.md §4.3).
func (f *OpenFile) WriteAt(buf []byte, n, offset int) (int, error) {
	if offset >= f.Length() {
		return 0, nil
	}
	if offset+n > f.Length() {
		n = f.Length() - offset
	}
	written := 0
	sectorBuf := make([]byte, types.SectorSize)
	for written < n {
		cur := offset + written
		sector, err := f.hdr.byteToSector(cur)
		if err != nil {
			return written, fmt.Errorf("fs: write at %d: %w", cur, err)
		}
		within := cur % types.SectorSize
		take := types.SectorSize - within
		if take > n-written {
			take = n - written
		}
		// Partial sector write: read-modify-write so untouched bytes
		// in the sector survive.
		if within != 0 || take != types.SectorSize {
			if err := f.dev.ReadSector(sector, sectorBuf); err != nil {
				return written, fmt.Errorf("fs: write at %d: %w", cur, err)
			}
		}
		copy(sectorBuf[within:within+take], buf[written:written+take])
		if err := f.dev.WriteSector(sector, sectorBuf); err != nil {
			return written, fmt.Errorf("fs: write at %d: %w", cur, err)
		}
		written += take
	}
	return written, nil
}

// Read reads at most n bytes from the current cursor and advances it.
func (f *OpenFile) Read(buf []byte, n int) (int, error) {
	got, err := f.ReadAt(buf, n, f.cursor)
	f.cursor += got
	return got, err
}

// Write writes at most n bytes at the current cursor and advances it.
func (f *OpenFile) Write(buf []byte, n int) (int, error) {
	put, err := f.WriteAt(buf, n, f.cursor)
	f.cursor += put
	return put, err
}
