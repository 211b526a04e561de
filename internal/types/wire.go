package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FileHeader is the on-disk inode: it maps a file's logical byte range to
// allocated sector numbers, optionally chaining to a continuation header
// when the file outgrows one header's direct table.
//
// Reference: spec.md §6, "FileHeader: bit-exact" layout.
type FileHeader struct {
	// Length is the file's length in bytes. On a continuation header
	// (NextHeaderSector of the *previous* header pointed here), Length
	// still reflects the whole file's length, matching how the original
	// Nachos FileHeader chain was read.
	Length int32
	// NumSectors is the count of valid entries in DataSectors for this
	// header (not counting any continuation chain).
	NumSectors int32
	// NextHeaderSector chains to a continuation FileHeader, or NoSector
	// if this is the last header in the chain.
	NextHeaderSector int32
	// DataSectors holds up to NumDirectSectors data-sector numbers.
	DataSectors []int32
}

// NewFileHeader returns a zeroed header with its DataSectors table sized
// to the sector-fitting capacity computed in constants.go.
func NewFileHeader() *FileHeader {
	return &FileHeader{
		NextHeaderSector: NoSector,
		DataSectors:      make([]int32, NumDirectSectors),
	}
}

// MarshalBinary serializes the header to exactly SectorSize bytes.
func (h *FileHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SectorSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Length))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.NumSectors))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.NextHeaderSector))
	off := fileHeaderFixedFields
	for i := 0; i < NumDirectSectors; i++ {
		var v int32 = NoSector
		if i < len(h.DataSectors) {
			v = h.DataSectors[i]
		}
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}
	return buf, nil
}

// UnmarshalBinary parses a FileHeader from a SectorSize-byte sector.
func (h *FileHeader) UnmarshalBinary(data []byte) error {
	if len(data) < SectorSize {
		return fmt.Errorf("types: short header sector: got %d bytes, want %d", len(data), SectorSize)
	}
	h.Length = int32(binary.LittleEndian.Uint32(data[0:4]))
	h.NumSectors = int32(binary.LittleEndian.Uint32(data[4:8]))
	h.NextHeaderSector = int32(binary.LittleEndian.Uint32(data[8:12]))
	h.DataSectors = make([]int32, NumDirectSectors)
	off := fileHeaderFixedFields
	for i := 0; i < NumDirectSectors; i++ {
		h.DataSectors[i] = int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
	}
	return nil
}

// DirectoryEntry is one fixed-size slot of a Directory's entry table.
//
// Reference: spec.md §6, "DirectoryEntry: bit-exact" layout.
type DirectoryEntry struct {
	InUse       bool
	IsDirectory bool
	Sector      int32
	// Name is stored NUL-terminated within FileNameMaxLen+1 bytes;
	// comparisons are always bounded to FileNameMaxLen, matching the
	// original's strncmp(table[i].name, name, FileNameMaxLen).
	Name string
}

// MarshalBinary serializes one entry to exactly DirEntrySize bytes.
func (e *DirectoryEntry) MarshalBinary() ([]byte, error) {
	if len(e.Name) > FileNameMaxLen {
		return nil, fmt.Errorf("types: name %q exceeds FileNameMaxLen (%d)", e.Name, FileNameMaxLen)
	}
	buf := make([]byte, DirEntrySize)
	putBool(buf[0:4], e.InUse)
	putBool(buf[4:8], e.IsDirectory)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(e.Sector))
	copy(buf[12:12+FileNameMaxLen+1], []byte(e.Name))
	return buf, nil
}

// UnmarshalBinary parses one entry from a DirEntrySize-byte slice.
func (e *DirectoryEntry) UnmarshalBinary(data []byte) error {
	if len(data) < DirEntrySize {
		return fmt.Errorf("types: short directory entry: got %d bytes, want %d", len(data), DirEntrySize)
	}
	e.InUse = getBool(data[0:4])
	e.IsDirectory = getBool(data[4:8])
	e.Sector = int32(binary.LittleEndian.Uint32(data[8:12]))
	nameBytes := data[12 : 12+FileNameMaxLen+1]
	if i := bytes.IndexByte(nameBytes, 0); i >= 0 {
		nameBytes = nameBytes[:i]
	}
	e.Name = string(nameBytes)
	return nil
}

func putBool(dst []byte, v bool) {
	if v {
		binary.LittleEndian.PutUint32(dst, 1)
	} else {
		binary.LittleEndian.PutUint32(dst, 0)
	}
}

func getBool(src []byte) bool {
	return binary.LittleEndian.Uint32(src) != 0
}
