package pipeline

import "fmt"

const (
	DefaultChunkSize   = 1 << 20 // bytes per read
	DefaultChannelSize = 10      // chunks buffered per algorithm
)

// ReadError reports an I/O failure partway through a file. The file's
// digests are discarded; open failures stay plain *fs.PathError.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %s", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// Options carries the tunables for a hashing run.
type Options struct {
	ChunkSize       int
	ChannelSize     int
	ContinueOnError bool
	OnResult        func(FileResult)
}

// Entry is one unit of work produced by path enumeration.
type Entry struct {
	Path string
	Size int64
	Skip string // non-empty reason when the entry must not be hashed
}

// FileResult is the outcome of processing a single entry.
type FileResult struct {
	Path    string
	Size    int64    // bytes read
	Digests []string // lowercase hex in request order; nil when Err or Skipped is set
	Skipped string
	Err     error
}
