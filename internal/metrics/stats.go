package metrics

import "time"

type Stats struct {
	TotalBytes int64

	Total      int64
	Processed  int64
	OK         int64
	Skipped    int64
	FileErrors int64
	Mismatches int64

	BytesHashed int64
	Started     time.Time
	Finished    time.Time
}

func (s *Stats) Start() { s.Started = time.Now() }
func (s *Stats) Stop()  { s.Finished = time.Now() }
func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
