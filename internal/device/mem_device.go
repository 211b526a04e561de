package device

import "github.com/go-nachos/kernel/internal/types"

// MemDevice is an in-memory RAM disk BlockDevice, used by the test suite
// so filesystem and scheduler invariants can be checked without touching
// a real file.
type MemDevice struct {
	sectors [][]byte
}

// NewMemDevice returns a zeroed RAM disk with the given sector count.
func NewMemDevice(numSectors int) *MemDevice {
	sectors := make([][]byte, numSectors)
	for i := range sectors {
		sectors[i] = make([]byte, types.SectorSize)
	}
	return &MemDevice{sectors: sectors}
}

// NumSectors implements BlockDevice.
func (d *MemDevice) NumSectors() int { return len(d.sectors) }

// ReadSector implements BlockDevice.
func (d *MemDevice) ReadSector(n int, buf []byte) error {
	if err := checkSector(n, len(d.sectors), buf); err != nil {
		return err
	}
	copy(buf, d.sectors[n])
	return nil
}

// WriteSector implements BlockDevice.
func (d *MemDevice) WriteSector(n int, buf []byte) error {
	if err := checkSector(n, len(d.sectors), buf); err != nil {
		return err
	}
	copy(d.sectors[n], buf)
	return nil
}
