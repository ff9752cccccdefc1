package checkfile

// Entry is one checksum line: the expected digests in algorithm order plus
// the path they were recorded for.
type Entry struct {
	Path     string
	Expected []string
}
