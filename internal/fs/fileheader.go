package fs

import (
	"fmt"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/types"
)

// fileHeader wraps types.FileHeader with the allocation and chain-walking
// operations spec.md §4.2 names. The wire struct stays a dumb byte layout
// in internal/types; all behavior lives here.
type fileHeader struct {
	hdr  *types.FileHeader
	dev  device.BlockDevice
	next *fileHeader // loaded lazily by nextHeader()
}

func newFileHeader(dev device.BlockDevice) *fileHeader {
	return &fileHeader{hdr: types.NewFileHeader(), dev: dev}
}

// fetchFileHeader reads the header at the given sector.
func fetchFileHeader(dev device.BlockDevice, sector int) (*fileHeader, error) {
	buf := make([]byte, types.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return nil, fmt.Errorf("fs: fetching header from sector %d: %w", sector, err)
	}
	hdr := types.NewFileHeader()
	if err := hdr.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("fs: decoding header at sector %d: %w", sector, err)
	}
	return &fileHeader{hdr: hdr, dev: dev}, nil
}

// writeBack serializes the header to the given sector.
func (h *fileHeader) writeBack(sector int) error {
	buf, err := h.hdr.MarshalBinary()
	if err != nil {
		return fmt.Errorf("fs: encoding header: %w", err)
	}
	if err := h.dev.WriteSector(sector, buf); err != nil {
		return fmt.Errorf("fs: writing header to sector %d: %w", sector, err)
	}
	return nil
}

func (h *fileHeader) length() int { return int(h.hdr.Length) }

func (h *fileHeader) nextHeaderSector() int { return int(h.hdr.NextHeaderSector) }

// nextHeader loads and caches the continuation header, or returns nil at
// the end of the chain.
func (h *fileHeader) nextHeader() (*fileHeader, error) {
	if h.nextHeaderSector() == types.NoSector {
		return nil, nil
	}
	if h.next == nil {
		nh, err := fetchFileHeader(h.dev, h.nextHeaderSector())
		if err != nil {
			return nil, err
		}
		h.next = nh
	}
	return h.next, nil
}

// allocate reserves ceil(sizeBytes/SectorSize) data sectors via
// freeMap.FindAndSet, chaining additional headers when the direct table
// of one header is not enough. On any partial failure, it releases every
// sector it reserved (including chained-header sectors) and reports
// failure, per spec.md §4.2.
func (h *fileHeader) allocate(freeMap *FreeMap, sizeBytes int) error {
	h.hdr.Length = int32(sizeBytes)
	needed := (sizeBytes + types.SectorSize - 1) / types.SectorSize

	reserved, err := h.reserveChain(freeMap, needed)
	if err != nil {
		for _, s := range reserved {
			freeMap.Clear(s)
		}
		return err
	}
	return nil
}

// reserveChain fills this header (and as many chained headers as
// needed) with data sectors for `needed` total data blocks, returning
// every sector number it allocated (data and continuation-header alike)
// so the caller can roll back on failure.
func (h *fileHeader) reserveChain(freeMap *FreeMap, needed int) ([]int, error) {
	var reserved []int
	cur := h
	remaining := needed
	for {
		take := remaining
		if take > types.NumDirectSectors {
			take = types.NumDirectSectors
		}
		cur.hdr.DataSectors = make([]int32, types.NumDirectSectors)
		for i := range cur.hdr.DataSectors {
			cur.hdr.DataSectors[i] = types.NoSector
		}
		for i := 0; i < take; i++ {
			s := freeMap.FindAndSet()
			if s == types.NoSector {
				return reserved, ErrNoFreeSector
			}
			reserved = append(reserved, s)
			cur.hdr.DataSectors[i] = int32(s)
		}
		cur.hdr.NumSectors = int32(take)
		remaining -= take
		if remaining <= 0 {
			cur.hdr.NextHeaderSector = types.NoSector
			break
		}
		// Need a continuation header: reserve one more sector to hold it.
		contSector := freeMap.FindAndSet()
		if contSector == types.NoSector {
			return reserved, ErrNoFreeSector
		}
		reserved = append(reserved, contSector)
		cur.hdr.NextHeaderSector = int32(contSector)
		next := newFileHeader(h.dev)
		next.hdr.Length = h.hdr.Length
		cur.next = next
		cur = next
	}
	return reserved, nil
}

// writeChain flushes this header and every chained continuation header
// to their sectors, walking NextHeaderSector. The head's own sector is
// supplied by the caller (it is the sector recorded in the directory);
// every other sector in the chain was already assigned during allocate.
func (h *fileHeader) writeChain(headSector int) error {
	cur := h
	sector := headSector
	for cur != nil {
		if err := cur.writeBack(sector); err != nil {
			return err
		}
		sector = cur.nextHeaderSector()
		next, err := cur.nextHeader()
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// deallocate clears every data sector and every chained-header sector in
// this chain. Per spec.md §4.2, the head header's own sector is cleared
// separately by the caller (the file system layer), since the head
// header's sector number is recorded in the directory, not in itself.
func (h *fileHeader) deallocate(freeMap *FreeMap) error {
	cur := h
	for cur != nil {
		for i := 0; i < int(cur.hdr.NumSectors); i++ {
			freeMap.Clear(int(cur.hdr.DataSectors[i]))
		}
		next, err := cur.nextHeader()
		if err != nil {
			return err
		}
		if next != nil {
			freeMap.Clear(cur.nextHeaderSector())
		}
		cur = next
	}
	return nil
}

// byteToSector walks the chain to resolve a file-relative byte offset to
// an absolute disk sector number.
func (h *fileHeader) byteToSector(offset int) (int, error) {
	sectorIndex := offset / types.SectorSize
	cur := h
	for {
		if sectorIndex < int(cur.hdr.NumSectors) {
			return int(cur.hdr.DataSectors[sectorIndex]), nil
		}
		sectorIndex -= int(cur.hdr.NumSectors)
		next, err := cur.nextHeader()
		if err != nil {
			return types.NoSector, err
		}
		if next == nil {
			return types.NoSector, fmt.Errorf("fs: offset %d beyond header chain capacity", offset)
		}
		cur = next
	}
}
