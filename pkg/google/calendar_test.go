package google

import (
	"strings"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/gantta/pkg/model"
)

func intPtr(n int) *int { return &n }

func TestEventFromTask(t *testing.T) {
	start := model.NewCalendarDate(2024, time.November, 11)
	task := &model.Task{
		ID:                 3,
		Name:               "Frontend",
		StartDate:          &start,
		Duration:           intPtr(2),
		ResourceAssignment: "Ana",
		PercentDone:        50,
		Bucket:             "Web",
		Note:               "Use the design kit",
		OutlineNumber:      "2.1",
	}

	event := EventFromTask(task, "Launch#2.1", "4")

	if event.Summary != "Frontend" {
		t.Errorf("Expected summary 'Frontend', got '%s'", event.Summary)
	}
	if event.Start.Date != "2024-11-11" || event.End.Date != "2024-11-13" {
		t.Errorf("Expected 2024-11-11..2024-11-13, got %s..%s", event.Start.Date, event.End.Date)
	}
	if event.ColorId != "4" {
		t.Errorf("Expected color 4, got %s", event.ColorId)
	}
	if got := event.ExtendedProperties.Private[eventKeyProperty]; got != "Launch#2.1" {
		t.Errorf("Expected key Launch#2.1, got %s", got)
	}
	for _, want := range []string{"Outline: 2.1", "Progress: 50%", "Assigned to: Ana", "Bucket: Web", "Use the design kit"} {
		if !strings.Contains(event.Description, want) {
			t.Errorf("Expected description to contain %q, got: %s", want, event.Description)
		}
	}
}

func TestEventFromTaskMilestoneAndDone(t *testing.T) {
	start := model.NewCalendarDate(2024, time.December, 31)

	milestone := EventFromTask(&model.Task{Name: "Go live", StartDate: &start, Duration: intPtr(0)}, "k", "")
	if milestone.Summary != "◆ Go live" {
		t.Errorf("Expected milestone marker, got '%s'", milestone.Summary)
	}
	if milestone.End.Date != "2025-01-01" {
		t.Errorf("Expected a one day event, got end %s", milestone.End.Date)
	}

	done := EventFromTask(&model.Task{Name: "Kickoff", StartDate: &start, PercentDone: 100}, "k", "")
	if done.Summary != "✓ Kickoff" {
		t.Errorf("Expected done marker, got '%s'", done.Summary)
	}
}

func TestEventPatch(t *testing.T) {
	start := model.NewCalendarDate(2024, time.November, 11)
	task := &model.Task{Name: "A", StartDate: &start, Duration: intPtr(3)}
	target := EventFromTask(task, "k", "1")

	same := *target
	if patch := EventPatch(&same, target); patch != nil {
		t.Errorf("Expected no patch for identical events, got %+v", patch)
	}

	moved := *target
	moved.End = &calendar.EventDateTime{Date: "2024-11-20"}
	moved.Summary = "old name"
	patch := EventPatch(&moved, target)
	if patch == nil {
		t.Fatal("Expected a patch")
	}
	if patch.Summary != "A" || patch.End.Date != "2024-11-14" {
		t.Errorf("Unexpected patch %+v", patch)
	}
	if patch.Description != "" {
		t.Errorf("Expected unchanged description to be left out of the patch")
	}
}

func TestEventKeysDistinctOnDuplicateOutline(t *testing.T) {
	tasks := []*model.Task{
		{ID: 0, OutlineNumber: "1"},
		{ID: 1, OutlineNumber: "1.1"},
		{ID: 2, OutlineNumber: "1.1"},
		{ID: 3, OutlineNumber: "2"},
	}
	keys := eventKeys("Launch", tasks)

	want := map[int]string{0: "Launch#1", 1: "Launch#1.1", 2: "Launch#1.1~2", 3: "Launch#2"}
	for id, k := range want {
		if keys[id] != k {
			t.Errorf("task %d: expected key %s, got %s", id, k, keys[id])
		}
	}
}

func TestQuoteSheetTitle(t *testing.T) {
	if got := quoteSheetTitle("Bob's plan"); got != "'Bob''s plan'" {
		t.Errorf("Expected escaped title, got %s", got)
	}
}
