// Package budget tracks spend against a budget ceiling.
package budget

type Status string

const (
	StatusWithin Status = "within_budget"
	StatusNear   Status = "near_budget"
	StatusOver   Status = "over_budget"
)

// NearThreshold is the percentage at which spend is reported as near the ceiling.
const NearThreshold = 80.0

type Entry struct {
	Action string
	Cost   int64
}

// Summary is a read-only view of a Tracker.
type Summary struct {
	Ceiling   int64
	Total     int64
	Remaining int64
	Percent   float64
	Status    Status
	Breakdown []Entry
}

// Tracker is not safe for concurrent use; the session state guards it.
type Tracker struct {
	ceiling int64
	entries []Entry
}

func NewTracker(ceiling int64) *Tracker {
	return &Tracker{ceiling: ceiling}
}

func (t *Tracker) SetCeiling(ceiling int64) {
	t.ceiling = ceiling
}

func (t *Tracker) Ceiling() int64 {
	return t.ceiling
}

// Record adds a cost. Negative costs are ignored.
func (t *Tracker) Record(action string, cost int64) {
	if cost < 0 {
		return
	}
	t.entries = append(t.entries, Entry{Action: action, Cost: cost})
}

func (t *Tracker) Total() int64 {
	var total int64
	for _, e := range t.entries {
		total += e.Cost
	}
	return total
}

// Percent is spend as a percentage of the ceiling, 0 without a ceiling.
func (t *Tracker) Percent() float64 {
	if t.ceiling <= 0 {
		return 0
	}
	return float64(t.Total()) / float64(t.ceiling) * 100
}

func (t *Tracker) Remaining() int64 {
	return t.ceiling - t.Total()
}

func (t *Tracker) Status() Status {
	if t.ceiling <= 0 {
		if t.Total() > 0 {
			return StatusOver
		}
		return StatusWithin
	}
	pct := t.Percent()
	switch {
	case pct > 100:
		return StatusOver
	case pct >= NearThreshold:
		return StatusNear
	default:
		return StatusWithin
	}
}

func (t *Tracker) Summary() Summary {
	breakdown := make([]Entry, len(t.entries))
	copy(breakdown, t.entries)
	return Summary{
		Ceiling:   t.ceiling,
		Total:     t.Total(),
		Remaining: t.Remaining(),
		Percent:   t.Percent(),
		Status:    t.Status(),
		Breakdown: breakdown,
	}
}
