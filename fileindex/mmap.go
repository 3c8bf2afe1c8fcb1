package fileindex

import (
	"golang.org/x/exp/mmap"
)

// MmapSource is an io.ReaderAt backed by a memory-mapped local file, an
// alternate InputStream to the plain os.File-backed io.SectionReader path
// (spec §6 external interfaces: "local filesystem" is one of the named
// backends). Large file-index blobs benefit from letting the OS page
// cache serve repeated random-access reads during predicate evaluation
// without an explicit read syscall per access.
type MmapSource struct {
	r *mmap.ReaderAt
}

// OpenMmap memory-maps path read-only for use as a Container's src.
func OpenMmap(path string) (*MmapSource, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &MmapSource{r: r}, nil
}

func (m *MmapSource) ReadAt(p []byte, off int64) (int, error) { return m.r.ReadAt(p, off) }

func (m *MmapSource) Len() int64 { return int64(m.r.Len()) }

func (m *MmapSource) Close() error { return m.r.Close() }
