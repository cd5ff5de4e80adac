package uploadclient

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileHandle is a file offered to the queue. The queue keeps the handle, not
// a copy of its contents.
type FileHandle interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type TrackedFile struct {
	ID     string
	Name   string
	Size   int64
	Handle FileHandle
}

// DiskFile is a FileHandle backed by a path on the local filesystem.
type DiskFile struct {
	path string
	size int64
}

func NewDiskFile(path string) (*DiskFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &DiskFile{path: path, size: info.Size()}, nil
}

func (f *DiskFile) Name() string {
	return filepath.Base(f.path)
}

func (f *DiskFile) Size() int64 {
	return f.size
}

func (f *DiskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// newFileID builds name-millis-suffix. The random suffix keeps IDs unique for
// same-named files added within one millisecond.
func newFileID(name string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return name + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
