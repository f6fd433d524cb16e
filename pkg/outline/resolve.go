package outline

import (
	"fmt"

	"github.com/harrisonrobin/gantta/pkg/dependency"
	"github.com/harrisonrobin/gantta/pkg/model"
)

// Resolve turns staged dependency text into edges. References to outline
// numbers missing from index produce no edge. Edge IDs start at 0 and follow
// staging order.
func Resolve(staged []RawDependency, tasks []*model.Task, index map[string]int) []model.Dependency {
	edges := []model.Dependency{}
	lookup := func(outlineNumber string) (*model.Task, bool) {
		id, ok := index[outlineNumber]
		if !ok || id < 0 || id >= len(tasks) {
			return nil, false
		}
		return tasks[id], true
	}

	for _, raw := range staged {
		for _, ref := range raw.References {
			from, ok := lookup(ref.OutlineNumber)
			if !ok {
				continue
			}
			to, ok := lookup(raw.OutlineNumber)
			if !ok {
				continue
			}
			edges = append(edges, model.Dependency{
				ID:       len(edges),
				FromTask: from.ID,
				ToTask:   to.ID,
				Type:     dependency.MapTypeCode(ref.TypeCode),
			})
		}
	}
	return edges
}

// Dependencies resolves the plan's own staged entries.
func (p *Plan) Dependencies() []model.Dependency {
	return Resolve(p.Staged, p.Tasks, p.Index)
}

// OrderError names a child row that appears before its parent, or whose
// parent never appears.
type OrderError struct {
	Row           int
	OutlineNumber string
	Parent        string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("row %d: outline %s appears before its parent %s", e.Row, e.OutlineNumber, e.Parent)
}

// CheckOrder verifies that every child row follows its parent row. Rows Build
// would skip are ignored. The returned error is an *OrderError for the first
// offending row.
func CheckOrder(rows []model.Row) error {
	seen := make(map[string]bool)
	for i, row := range rows {
		if row.Name == "" || row.OutlineNumber == "" {
			continue
		}
		if !IsRoot(row.OutlineNumber) {
			parent := ParentOf(row.OutlineNumber)
			if !seen[parent] {
				return &OrderError{Row: i, OutlineNumber: row.OutlineNumber, Parent: parent}
			}
		}
		seen[row.OutlineNumber] = true
	}
	return nil
}
