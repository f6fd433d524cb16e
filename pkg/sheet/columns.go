package sheet

import (
	"github.com/harrisonrobin/gantta/pkg/model"
	"github.com/harrisonrobin/gantta/pkg/util"
)

// DefaultHeaderRows is the number of leading records that hold the export's
// title block and column captions rather than tasks.
const DefaultHeaderRows = 8

// Columns maps each row field to the record key it is read from.
type Columns struct {
	Outline   string `toml:"outline"`
	Name      string `toml:"name"`
	Assignee  string `toml:"assignee"`
	Start     string `toml:"start"`
	End       string `toml:"end"`
	Duration  string `toml:"duration"`
	Bucket    string `toml:"bucket"`
	Progress  string `toml:"progress"`
	Priority  string `toml:"priority"`
	DependsOn string `toml:"depends_on"`
	Milestone string `toml:"milestone"`
	Notes     string `toml:"notes"`
}

// DefaultColumns returns the layout of a project plan exported to Excel. The
// outline number sits under the project title; every other column has a
// blank caption in the header row.
func DefaultColumns(project string) Columns {
	return Columns{
		Outline:   project,
		Name:      "__EMPTY",
		Assignee:  "__EMPTY_1",
		Start:     "__EMPTY_2",
		End:       "__EMPTY_3",
		Duration:  "__EMPTY_4",
		Bucket:    "__EMPTY_5",
		Progress:  "__EMPTY_6",
		Priority:  "__EMPTY_7",
		DependsOn: "__EMPTY_8",
		Milestone: "__EMPTY_13",
		Notes:     "__EMPTY_14",
	}
}

// Merge returns c with every empty key filled from defaults.
func (c Columns) Merge(defaults Columns) Columns {
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Columns{
		Outline:   pick(c.Outline, defaults.Outline),
		Name:      pick(c.Name, defaults.Name),
		Assignee:  pick(c.Assignee, defaults.Assignee),
		Start:     pick(c.Start, defaults.Start),
		End:       pick(c.End, defaults.End),
		Duration:  pick(c.Duration, defaults.Duration),
		Bucket:    pick(c.Bucket, defaults.Bucket),
		Progress:  pick(c.Progress, defaults.Progress),
		Priority:  pick(c.Priority, defaults.Priority),
		DependsOn: pick(c.DependsOn, defaults.DependsOn),
		Milestone: pick(c.Milestone, defaults.Milestone),
		Notes:     pick(c.Notes, defaults.Notes),
	}
}

// Row maps a single record.
func (c Columns) Row(r Record) model.Row {
	return model.Row{
		OutlineNumber: util.Text(r[c.Outline]),
		Name:          util.Text(r[c.Name]),
		Assignee:      util.Text(r[c.Assignee]),
		Start:         r[c.Start],
		End:           r[c.End],
		DurationText:  r[c.Duration],
		Bucket:        r[c.Bucket],
		Progress:      r[c.Progress],
		Priority:      r[c.Priority],
		DependsOn:     r[c.DependsOn],
		Milestone:     r[c.Milestone],
		Notes:         r[c.Notes],
	}
}

// Rows skips the first headerRows records and maps the rest.
func Rows(records []Record, cols Columns, headerRows int) []model.Row {
	if headerRows < 0 {
		headerRows = 0
	}
	if headerRows >= len(records) {
		return nil
	}
	rows := make([]model.Row, 0, len(records)-headerRows)
	for _, r := range records[headerRows:] {
		rows = append(rows, cols.Row(r))
	}
	return rows
}
