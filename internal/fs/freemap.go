package fs

import (
	"fmt"

	"github.com/go-nachos/kernel/internal/types"
)

// FreeMap is a persistent bitmap of sector allocation state: bit i is 1
// iff sector i is allocated. It is an ordinary resident file whose header
// lives at the well-known types.FreeMapSector, loaded fresh at the start
// of every mutating file system operation and flushed only on success —
// spec.md §3's "instantiated from disk on every mutating operation,
// flushed on success, discarded on failure" lifecycle.
//
// Grounded on original_source/code/filesys/filesys.cc's PersistentBitmap
// usage pattern (load from freeMapFile, FindAndSet, WriteBack-or-discard).
type FreeMap struct {
	bits []byte // one bit per sector, LSB-first within each byte
	n    int    // total number of sectors represented
}

// NewFreeMap returns an all-clear FreeMap sized for n sectors.
func NewFreeMap(n int) *FreeMap {
	return &FreeMap{bits: make([]byte, (n+7)/8), n: n}
}

// Test reports whether sector i is marked allocated.
func (m *FreeMap) Test(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	return m.bits[i/8]&(1<<uint(i%8)) != 0
}

// Mark sets sector i as allocated.
func (m *FreeMap) Mark(i int) {
	if i < 0 || i >= m.n {
		return
	}
	m.bits[i/8] |= 1 << uint(i%8)
}

// Clear marks sector i as free.
func (m *FreeMap) Clear(i int) {
	if i < 0 || i >= m.n {
		return
	}
	m.bits[i/8] &^= 1 << uint(i%8)
}

// FindAndSet returns the lowest-indexed clear bit, marks it allocated,
// and returns it. It returns types.NoSector if the map is saturated —
// an ordinary return value, never a fault, per spec.md §4.1.
func (m *FreeMap) FindAndSet() int {
	for i := 0; i < m.n; i++ {
		if !m.Test(i) {
			m.Mark(i)
			return i
		}
	}
	return types.NoSector
}

// Count returns the number of allocated sectors.
func (m *FreeMap) Count() int {
	c := 0
	for i := 0; i < m.n; i++ {
		if m.Test(i) {
			c++
		}
	}
	return c
}

// Load reads the free map's raw packed bits from its resident file.
func (m *FreeMap) Load(f *OpenFile) error {
	buf := make([]byte, len(m.bits))
	n, err := f.Read(buf, len(buf))
	if err != nil {
		return fmt.Errorf("fs: loading free map: %w", err)
	}
	copy(m.bits, buf[:n])
	return nil
}

// Store writes the free map's raw packed bits back through the file
// layer. Per spec.md §3/§7, the caller only calls Store after an
// operation fully succeeds; on failure the in-memory FreeMap is simply
// dropped without ever reaching this method.
func (m *FreeMap) Store(f *OpenFile) error {
	n, err := f.Write(m.bits, len(m.bits))
	if err != nil {
		return fmt.Errorf("fs: storing free map: %w", err)
	}
	if n != len(m.bits) {
		return fmt.Errorf("fs: storing free map: short write %d/%d bytes", n, len(m.bits))
	}
	return nil
}

// Print renders the free map as a line of 0/1 characters, one per
// sector, for debugging — grounded on the original PersistentBitmap::Print.
func (m *FreeMap) Print() string {
	out := make([]byte, m.n)
	for i := 0; i < m.n; i++ {
		if m.Test(i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// byteLen is the size in bytes of the packed bitmap for a device with n
// sectors, used by the file system to size the free-map file.
func byteLen(n int) int { return (n + 7) / 8 }
