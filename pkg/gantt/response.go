// Package gantt assembles and checks the Gantt load-response document.
package gantt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrisonrobin/gantta/pkg/model"
	"github.com/harrisonrobin/gantta/pkg/outline"
)

// Assemble wraps the task tree and edges in the load-response shape.
func Assemble(roots []*model.Task, edges []model.Dependency) *model.LoadResponse {
	if roots == nil {
		roots = []*model.Task{}
	}
	if edges == nil {
		edges = []model.Dependency{}
	}
	return &model.LoadResponse{
		Success:      true,
		Tasks:        model.TaskRows{Rows: roots},
		Dependencies: model.DependencyRows{Rows: edges},
	}
}

// Convert runs the whole transformation over rows.
func Convert(rows []model.Row) *model.LoadResponse {
	resp, _ := ConvertPlan(rows)
	return resp
}

// ConvertPlan is Convert that also hands back the intermediate plan.
func ConvertPlan(rows []model.Row) (*model.LoadResponse, *outline.Plan) {
	plan := outline.Build(rows)
	return Assemble(plan.Roots, plan.Dependencies()), plan
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, resp *model.LoadResponse) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode load response: %w", err)
	}
	return nil
}

// Marshal returns the document as indented JSON bytes.
func Marshal(resp *model.LoadResponse) ([]byte, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal load response: %w", err)
	}
	return append(data, '\n'), nil
}
