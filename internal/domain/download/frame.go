package download

// EntryView is an immutable copy of one table entry.
type EntryView struct {
	Name string
	ProgressEntry
}

// Frame is a consistent snapshot of a batch, the only input a renderer needs.
type Frame struct {
	Completed int
	Total     int
	Entries   []EntryView
}

// Fraction returns Completed/Total, or 1 when there is nothing to do.
func (f Frame) Fraction() float64 {
	if f.Total <= 0 {
		return 1
	}
	return float64(f.Completed) / float64(f.Total)
}

// Finished reports whether every task has terminated.
func (f Frame) Finished() bool {
	return f.Completed == f.Total
}
