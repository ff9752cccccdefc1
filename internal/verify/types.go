package verify

// Row is the verification outcome for one check-file entry, in entry order.
type Row struct {
	OK       bool
	Path     string
	Computed []string // recomputed digests; nil when the file could not be hashed
	Err      error
}

type Mismatch struct {
	Path      string
	Algorithm string
	Expected  string
	Computed  string
}

type Result struct {
	Rows       []Row
	Mismatches []Mismatch
	Failed     int
}
