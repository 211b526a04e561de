// Package types holds the on-disk layout shared by the scheduler-adjacent
// file system: sector geometry, the free-map bit convention, and the
// fixed-size structures that are serialized byte-for-byte to disk.
package types

const (
	// SectorSize is the fixed size in bytes of every disk sector. All
	// persistent structures (FileHeader, DirectoryEntry tables, FreeMap
	// pages) are sector-aligned multiples of this value.
	SectorSize = 128

	// FreeMapSector is the well-known sector holding the FreeMap file's
	// own FileHeader.
	FreeMapSector = 0

	// RootDirSector is the well-known sector holding the root directory
	// file's FileHeader.
	RootDirSector = 1

	// VolumeSector is the well-known sector holding the volume's uuid
	// signature, stamped at Format time.
	VolumeSector = 2

	// NumEntries is the fixed capacity of a Directory's entry table.
	NumEntries = 64

	// FileNameMaxLen is the maximum length of a path segment, not
	// counting the NUL terminator carried on disk.
	FileNameMaxLen = 9

	// LevelGap divides the priority range [0,150) into the three
	// scheduler tiers.
	LevelGap = 50

	// AgingTicks is the staleness threshold (in virtual ticks) after
	// which a queued thread's priority is aged upward.
	AgingTicks = 1500

	// DemoteLimitTicks is the uninterrupted-burst threshold after which
	// the running thread is demoted to the top of the next lower tier.
	DemoteLimitTicks = 100

	// MaxOpenFiles bounds the descriptor table; id 0 is reserved.
	MaxOpenFiles = 20

	// NoSector is the sentinel "no sector" / "end of chain" value used
	// wherever spec.md says NONE for a sector number.
	NoSector = -1
)

// fileHeaderFixedFields is the byte size of everything in a FileHeader
// except its data-sector table: Length, NumSectors, NextHeaderSector,
// each encoded as a little-endian int32.
const fileHeaderFixedFields = 4 * 3

// NumDirectSectors is computed so that exactly one FileHeader occupies
// exactly one SectorSize-byte sector, satisfying the on-disk layout
// invariant from spec.md §6 for whatever SectorSize is configured.
var NumDirectSectors = (SectorSize - fileHeaderFixedFields) / 4

// DirEntrySize is the on-disk size of one DirectoryEntry: InUse (int32) +
// IsDirectory (int32) + Sector (int32) + Name ([FileNameMaxLen+1]byte).
const DirEntrySize = 4 + 4 + 4 + (FileNameMaxLen + 1)

// DirectoryFileSize is the fixed byte length of a directory file's
// content: NumEntries fixed-size entries, never more, never fewer.
const DirectoryFileSize = DirEntrySize * NumEntries
