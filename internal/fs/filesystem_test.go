package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/fs"
)

func newFormatted(t *testing.T) *fs.FileSystem {
	t.Helper()
	dev := device.NewMemDevice(512)
	fsys, err := fs.Format(dev)
	require.NoError(t, err)
	return fsys
}

// Scenario 1, spec.md §8: Format -> Create -> Open -> Write -> Read.
func TestCreateOpenWriteRead(t *testing.T) {
	fsys := newFormatted(t)

	require.NoError(t, fsys.Create("/a", 200, false))

	f, err := fsys.Open("/a")
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("hello"), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = f.ReadAt(buf, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

// Scenario 2, spec.md §8: duplicate create fails without disturbing disk.
func TestDuplicateCreateFails(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/a", 200, false))

	err := fsys.Create("/a", 50, false)
	assert.ErrorIs(t, err, fs.ErrDuplicate)

	f, err := fsys.Open("/a")
	require.NoError(t, err)
	assert.Equal(t, 200, f.Length())
}

// Scenario 3, spec.md §8: hierarchical path resolution.
func TestHierarchicalPath(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/d", 0, true))
	require.NoError(t, fsys.Create("/d/x", 10, false))

	_, err := fsys.Open("/d/x")
	require.NoError(t, err)

	_, err = fsys.Open("/d/y")
	assert.ErrorIs(t, err, fs.ErrPathNotFound)
}

// Scenario 4, spec.md §8: recursive remove.
func TestRecursiveRemove(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/d", 0, true))
	require.NoError(t, fsys.Create("/d/x", 10, false))

	err := fsys.Remove("/d", false)
	assert.ErrorIs(t, err, fs.ErrIsDirectory)

	require.NoError(t, fsys.Remove("/d", true))

	_, err = fsys.Open("/d/x")
	assert.ErrorIs(t, err, fs.ErrPathNotFound)
}

func TestListRecursiveIndentsByDepth(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/d", 0, true))
	require.NoError(t, fsys.Create("/d/x", 10, false))

	names, err := fsys.List("/", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "  x"}, names)
}

func TestOpenOnDirectoryFails(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/d", 0, true))

	_, err := fsys.Open("/d")
	assert.ErrorIs(t, err, fs.ErrIsDirectory)
}

func TestDescriptorTableRoundTrip(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/a", 64, false))

	fd, err := fsys.Put("/a")
	require.NoError(t, err)
	assert.NotZero(t, fd)

	n, err := fsys.Write(fd, []byte("data"), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, fsys.Close(fd))

	_, err = fsys.Read(fd, make([]byte, 4), 4)
	assert.ErrorIs(t, err, fs.ErrBadDescriptor)
}

func TestWriteAtIsNonExtending(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/a", 4, false))
	f, err := fsys.Open("/a")
	require.NoError(t, err)

	n, err := f.WriteAt([]byte("abcdef"), 6, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "write past end of file must be truncated")
}

// Format stamps a uuid volume signature into the superblock area; it
// must round-trip and be stable across remounts of the same device.
func TestVolumeIDStampedAtFormat(t *testing.T) {
	dev := device.NewMemDevice(512)
	fsys, err := fs.Format(dev)
	require.NoError(t, err)

	id, err := fsys.VolumeID()
	require.NoError(t, err)
	assert.NotEqual(t, id.String(), "00000000-0000-0000-0000-000000000000")

	remounted := fs.Mount(dev)
	again, err := remounted.VolumeID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

// spec.md §3: descriptor ids span 1..MaxOpenFiles (1..20) inclusive.
func TestDescriptorTableUsesFullCapacity(t *testing.T) {
	fsys := newFormatted(t)
	require.NoError(t, fsys.Create("/a", 64, false))

	seen := make(map[int]bool)
	var fds []int
	for i := 0; i < 20; i++ {
		fd, err := fsys.Put("/a")
		require.NoError(t, err)
		require.False(t, seen[fd], "descriptor id %d handed out twice while in use", fd)
		seen[fd] = true
		fds = append(fds, fd)
	}

	_, err := fsys.Put("/a")
	assert.ErrorIs(t, err, fs.ErrTooManyOpen, "21st concurrent open must fail")

	assert.True(t, seen[20], "id 20 must be reachable: spec.md §3 says 1...MAX_OPEN_FILES")

	for _, fd := range fds {
		require.NoError(t, fsys.Close(fd))
	}
}
