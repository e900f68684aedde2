package storage

import "time"

// DurationRecord is a remembered probe result for one media file. It is only
// valid while the file keeps the same size and modification time.
type DurationRecord struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Seconds  float64
	ProbedAt time.Time
}

// Matches reports whether the record still describes a file with the given
// size and modification time, compared to the nanosecond.
func (r DurationRecord) Matches(size int64, modTime time.Time) bool {
	return r.Size == size && r.ModTime.UnixNano() == modTime.UnixNano()
}
