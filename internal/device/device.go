// Package device implements the sector-level BlockDevice contract that
// the file system is built against. It is the "external collaborator"
// spec.md §1 describes: fixed-size sector read/write, nothing more.
package device

import (
	"fmt"

	"github.com/go-nachos/kernel/internal/types"
)

// BlockDevice is the fixed-size sector read/write contract the file
// system core consumes. Implementations never interpret sector contents;
// they only move SectorSize-byte slices to and from sector numbers.
type BlockDevice interface {
	// ReadSector fills buf (which must be exactly types.SectorSize bytes)
	// with the contents of sector n.
	ReadSector(n int, buf []byte) error
	// WriteSector writes buf (exactly types.SectorSize bytes) to sector n.
	WriteSector(n int, buf []byte) error
	// NumSectors reports the device's total sector count.
	NumSectors() int
}

// checkSector validates a sector number and buffer length shared by every
// BlockDevice implementation.
func checkSector(n, numSectors int, buf []byte) error {
	if n < 0 || n >= numSectors {
		return fmt.Errorf("device: sector %d out of range [0,%d)", n, numSectors)
	}
	if len(buf) != types.SectorSize {
		return fmt.Errorf("device: buffer is %d bytes, want %d", len(buf), types.SectorSize)
	}
	return nil
}
