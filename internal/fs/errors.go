package fs

import "errors"

// Sentinel errors for the file system's tag-only error kinds
// (spec.md §7). Callers compare with errors.Is; call sites wrap these
// with %w to add path context, the way the teacher wraps parser errors
// throughout internal/services.
var (
	ErrPathNotFound  = errors.New("fs: path not found")
	ErrNotADirectory = errors.New("fs: not a directory")
	ErrDuplicate     = errors.New("fs: name already exists")
	ErrDirectoryFull = errors.New("fs: directory is full")
	ErrNoFreeSector  = errors.New("fs: no free sector")
	ErrIsDirectory   = errors.New("fs: is a directory")
	ErrBadDescriptor = errors.New("fs: bad descriptor")
	ErrInvalidPath   = errors.New("fs: invalid path")
	ErrTooManyOpen   = errors.New("fs: too many open files")
)
