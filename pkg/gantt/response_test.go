package gantt

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/gantta/pkg/model"
)

func sampleRows() []model.Row {
	return []model.Row{
		{OutlineNumber: "1", Name: "Discovery", Start: float64(45607), End: float64(45609), Progress: 1.0, Assignee: "Ana"},
		{OutlineNumber: "2", Name: "Build", DurationText: "5 days", DependsOn: "1FS"},
		{OutlineNumber: "2.1", Name: "Frontend", Start: float64(45610), End: float64(45612), Bucket: "Web", Priority: "Medium"},
		{OutlineNumber: "2.2", Name: "Backend", DependsOn: "2.1SS,9FS", Notes: "API first"},
		{OutlineNumber: "3", Name: "Launch", Start: float64(45620), Milestone: "Yes", DependsOn: "2FF"},
	}
}

func TestConvertDocumentShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Convert([]model.Row{
		{OutlineNumber: "1", Name: "a"},
		{OutlineNumber: "2", Name: "b", DependsOn: "1FS"},
	})))

	expected := `{
  "success": true,
  "tasks": {
    "rows": [
      {
        "id": 0,
        "name": "a",
        "percentDone": 0,
        "expanded": true,
        "children": []
      },
      {
        "id": 1,
        "name": "b",
        "percentDone": 0,
        "expanded": true,
        "children": []
      }
    ]
  },
  "dependencies": {
    "rows": [
      {
        "id": 0,
        "fromTask": 0,
        "toTask": 1,
        "type": 2
      }
    ]
  }
}
`
	assert.Equal(t, expected, buf.String())
}

func TestConvertSample(t *testing.T) {
	resp := Convert(sampleRows())

	require.True(t, resp.Success)
	require.Len(t, resp.Tasks.Rows, 3)
	build := resp.Tasks.Rows[1]
	require.Len(t, build.Children, 2)
	assert.False(t, build.Children[0].Expanded)

	launch := resp.Tasks.Rows[2]
	assert.Equal(t, 4, launch.ID)
	require.NotNil(t, launch.Duration)
	assert.Equal(t, 0, *launch.Duration)

	assert.Equal(t, []model.Dependency{
		{ID: 0, FromTask: 0, ToTask: 1, Type: model.FinishToStart},
		{ID: 1, FromTask: 2, ToTask: 3, Type: model.StartToStart},
		{ID: 2, FromTask: 1, ToTask: 4, Type: model.FinishToFinish},
	}, resp.Dependencies.Rows)
}

func TestConvertIsIdempotent(t *testing.T) {
	first, err := Marshal(Convert(sampleRows()))
	require.NoError(t, err)
	second, err := Marshal(Convert(sampleRows()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestAssembleEmpty(t *testing.T) {
	data, err := json.Marshal(Assemble(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"tasks":{"rows":[]},"dependencies":{"rows":[]}}`, string(data))
}

func TestConvertNonFiniteProgress(t *testing.T) {
	for _, progress := range []string{"NaN", "inf", "-Infinity"} {
		resp := Convert([]model.Row{{OutlineNumber: "1", Name: "a", Progress: progress}})
		data, err := Marshal(resp)
		require.NoError(t, err, "progress %q", progress)

		var doc struct {
			Tasks struct {
				Rows []map[string]any `json:"rows"`
			} `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		require.Len(t, doc.Tasks.Rows, 1)
		assert.Equal(t, float64(0), doc.Tasks.Rows[0]["percentDone"], "progress %q", progress)
		require.NoError(t, Validate(resp))
	}
}

func TestValidateAcceptsConverted(t *testing.T) {
	require.NoError(t, Validate(Convert(sampleRows())))
	require.NoError(t, Validate(Convert(nil)))
}

func TestValidateRejects(t *testing.T) {
	err := ValidateJSON([]byte(`{"tasks":{"rows":[]},"dependencies":{"rows":[]}}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)

	err = ValidateJSON([]byte(`{"success":true,"tasks":{"rows":[{"id":0,"name":"a","percentDone":0,"children":[],"startDate":"11/11/2024"}]},"dependencies":{"rows":[]}}`))
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Contains(t, ve.Path, "tasks.rows[0]")
}

func TestPointerToPath(t *testing.T) {
	assert.Equal(t, "tasks.rows[0].children[2].name", pointerToPath("/tasks/rows/0/children/2/name"))
	assert.Equal(t, "", pointerToPath(""))
}
