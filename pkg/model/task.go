package model

import (
	"fmt"
	"strings"
	"time"
)

// Row is one record of the tabular plan, with raw values as the external
// reader supplied them (float64, string, bool or nil).
type Row struct {
	OutlineNumber string
	Name          string
	Assignee      string
	Start         any
	End           any
	DurationText  any
	Bucket        any
	Progress      any
	Priority      any
	DependsOn     any
	Milestone     any
	Notes         any
}

const calendarDateLayout = "2006-01-02"

// CalendarDate is a day-precision date with no time zone attached.
type CalendarDate struct {
	time.Time
}

// NewCalendarDate returns the date at UTC midnight.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseCalendarDate parses a YYYY-MM-DD string.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(calendarDateLayout, strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("failed to parse calendar date '%s': %w", s, err)
	}
	return CalendarDate{Time: t}, nil
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDate{Time: d.Time.AddDate(0, 0, n)}
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the whole number of days from d to other. Both dates sit
// on UTC midnight, so the Unix second difference is an exact day multiple.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int((other.Unix() - d.Unix()) / secondsPerDay)
}

func (d CalendarDate) String() string {
	return d.Time.Format(calendarDateLayout)
}

// MarshalJSON implements the json.Marshaler interface for CalendarDate.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for CalendarDate.
func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task is a node of the Gantt task tree.
type Task struct {
	ID                 int           `json:"id"`
	Name               string        `json:"name"`
	StartDate          *CalendarDate `json:"startDate,omitempty"`
	Duration           *int          `json:"duration,omitempty"`
	ResourceAssignment string        `json:"resourceAssignment,omitempty"`
	PercentDone        float64       `json:"percentDone"`
	Expanded           bool          `json:"expanded,omitempty"`
	Note               string        `json:"note,omitempty"`
	Bucket             string        `json:"bucket,omitempty"`
	Priority           string        `json:"priority,omitempty"`
	Children           []*Task       `json:"children"`

	// OutlineNumber is kept for sinks that need a stable key; the Gantt
	// document does not carry it.
	OutlineNumber string `json:"-"`
}

// Walk visits t and all of its descendants depth first, parents before children.
func (t *Task) Walk(fn func(*Task)) {
	fn(t)
	for _, child := range t.Children {
		child.Walk(fn)
	}
}

// DependencyType is the Gantt component's dependency enumeration.
type DependencyType int

const (
	StartToStart   DependencyType = 0
	StartToFinish  DependencyType = 1
	FinishToStart  DependencyType = 2
	FinishToFinish DependencyType = 3
)

func (t DependencyType) String() string {
	switch t {
	case StartToStart:
		return "SS"
	case StartToFinish:
		return "SF"
	case FinishToStart:
		return "FS"
	case FinishToFinish:
		return "FF"
	}
	return fmt.Sprintf("DependencyType(%d)", int(t))
}

// Dependency is an edge between two tasks.
type Dependency struct {
	ID       int            `json:"id"`
	FromTask int            `json:"fromTask"`
	ToTask   int            `json:"toTask"`
	Type     DependencyType `json:"type"`
}

type TaskRows struct {
	Rows []*Task `json:"rows"`
}

type DependencyRows struct {
	Rows []Dependency `json:"rows"`
}

// LoadResponse is the document handed to the Gantt component.
type LoadResponse struct {
	Success      bool           `json:"success"`
	Tasks        TaskRows       `json:"tasks"`
	Dependencies DependencyRows `json:"dependencies"`
}
