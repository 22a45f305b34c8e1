package progress

// Recorder keeps every reported event; it is meant for tests.
type Recorder struct {
	Labels   []string
	Totals   []int64
	Updates  []int64
	Finished int
}

func (r *Recorder) Start(total int64, label string) {
	r.Labels = append(r.Labels, label)
	r.Totals = append(r.Totals, total)
}

func (r *Recorder) Update(current int64) { r.Updates = append(r.Updates, current) }

func (r *Recorder) Finish() { r.Finished++ }

// Last returns the most recent update, or -1 when there was none.
func (r *Recorder) Last() int64 {
	if len(r.Updates) == 0 {
		return -1
	}
	return r.Updates[len(r.Updates)-1]
}
