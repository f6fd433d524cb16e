// Package outline rebuilds the task hierarchy from dotted outline numbers and
// resolves the dependency codes staged while doing so.
//
// Rows must list a parent before any of its children. Build does not sort;
// a child whose parent has not been seen yet is created but left out of the
// tree. CheckOrder reports such rows up front.
package outline

import (
	"strings"

	"github.com/harrisonrobin/gantta/pkg/dependency"
	"github.com/harrisonrobin/gantta/pkg/model"
	"github.com/harrisonrobin/gantta/pkg/util"
)

const separator = "."

// RawDependency is the unresolved dependency text of one task.
type RawDependency struct {
	TaskID        int
	OutlineNumber string
	References    []dependency.Reference
}

// Stats counts what Build dropped. It is informational only.
type Stats struct {
	Skipped    int
	Orphaned   int
	References int
	// Duplicates counts rows reusing an earlier outline number. The later
	// row wins the Index entry.
	Duplicates int
}

// Plan is the output of the tree building pass.
type Plan struct {
	// Roots holds the root tasks in encounter order.
	Roots []*model.Task
	// Tasks is indexed by task ID and includes orphans.
	Tasks []*model.Task
	// Index maps an outline number to a task ID.
	Index  map[string]int
	Staged []RawDependency
	Stats  Stats
}

// Build runs the single pass over rows.
func Build(rows []model.Row) *Plan {
	plan := &Plan{
		Roots: []*model.Task{},
		Index: make(map[string]int),
	}

	for _, row := range rows {
		if row.Name == "" || row.OutlineNumber == "" {
			plan.Stats.Skipped++
			continue
		}

		task := newTask(len(plan.Tasks), row)
		plan.Tasks = append(plan.Tasks, task)

		if IsRoot(row.OutlineNumber) {
			plan.Roots = append(plan.Roots, task)
		} else if parentID, ok := plan.Index[ParentOf(row.OutlineNumber)]; ok {
			parent := plan.Tasks[parentID]
			parent.Children = append(parent.Children, task)
		} else {
			plan.Stats.Orphaned++
		}

		if refs := dependency.ParseText(row.DependsOn); len(refs) > 0 {
			plan.Staged = append(plan.Staged, RawDependency{
				TaskID:        task.ID,
				OutlineNumber: row.OutlineNumber,
				References:    refs,
			})
			plan.Stats.References += len(refs)
		}

		// Registered after the parent lookup so a task never parents itself.
		if _, seen := plan.Index[row.OutlineNumber]; seen {
			plan.Stats.Duplicates++
		}
		plan.Index[row.OutlineNumber] = task.ID
	}

	return plan
}

func newTask(id int, row model.Row) *model.Task {
	task := &model.Task{
		ID:                 id,
		Name:               row.Name,
		ResourceAssignment: row.Assignee,
		PercentDone:        util.PercentFromFraction(row.Progress),
		Expanded:           IsRoot(row.OutlineNumber),
		Note:               util.Text(row.Notes),
		Bucket:             util.Text(row.Bucket),
		Priority:           util.Text(row.Priority),
		Children:           []*model.Task{},
		OutlineNumber:      row.OutlineNumber,
	}

	start, hasStart := util.DateValue(row.Start)
	end, hasEnd := util.DateValue(row.End)
	if hasStart {
		task.StartDate = &start
	}

	switch {
	case util.Flag(row.Milestone):
		task.Duration = intPtr(0)
	case hasStart && hasEnd:
		task.Duration = intPtr(util.DurationFromDates(start, end))
	case util.Present(row.DurationText):
		task.Duration = intPtr(util.DurationFromText(row.DurationText))
	}

	return task
}

func intPtr(n int) *int {
	return &n
}

// IsRoot reports whether an outline number has no parent segment.
func IsRoot(outlineNumber string) bool {
	return !strings.Contains(outlineNumber, separator)
}

// ParentOf returns the top level segment of an outline number, "2" for "2.1.3".
func ParentOf(outlineNumber string) string {
	head, _, _ := strings.Cut(outlineNumber, separator)
	return head
}
