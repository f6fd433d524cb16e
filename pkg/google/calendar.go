package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/gantta/pkg/colors"
	"github.com/harrisonrobin/gantta/pkg/index"
	"github.com/harrisonrobin/gantta/pkg/model"
)

// eventKeyProperty is the private extended property that ties an event to a
// plan task.
const eventKeyProperty = "gantta_key"

// CalendarClient publishes plan tasks as all-day events.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	project    string
	index      *index.EventIndex
	colors     *colors.ColorCache
	logger     *slog.Logger
}

// PublishStats counts what Publish did.
type PublishStats struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
}

// NewCalendarClient looks up calendarName among the user's calendars.
func NewCalendarClient(ctx context.Context, client *http.Client, calendarName, project string, idx *index.EventIndex, cache *colors.ColorCache) (*CalendarClient, error) {
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar '%s' not found", calendarName)
	}

	return &CalendarClient{
		srv:        srv,
		calendarID: calendarID,
		project:    project,
		index:      idx,
		colors:     cache,
		logger:     slog.Default(),
	}, nil
}

// Publish creates or updates one event per task that has a start date.
// Tasks without a start date are skipped.
func (c *CalendarClient) Publish(ctx context.Context, resp *model.LoadResponse) (PublishStats, error) {
	var stats PublishStats
	var tasks []*model.Task
	for _, root := range resp.Tasks.Rows {
		root.Walk(func(t *model.Task) { tasks = append(tasks, t) })
	}

	keys := eventKeys(c.project, tasks)
	for _, task := range tasks {
		if task.StartDate == nil {
			stats.Skipped++
			continue
		}
		colorID := ""
		if c.colors != nil {
			colorID = c.colors.GetColorID(task.Bucket)
		}
		key := keys[task.ID]
		target := EventFromTask(task, key, colorID)

		existing, err := c.findEvent(ctx, key)
		if err != nil {
			return stats, fmt.Errorf("error searching for event of task %d: %w", task.ID, err)
		}

		if existing == nil {
			created, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
			if err != nil {
				return stats, fmt.Errorf("insert event for task %d: %w", task.ID, err)
			}
			c.remember(key, created.Id)
			stats.Created++
			continue
		}

		patch := EventPatch(existing, target)
		if patch == nil {
			c.remember(key, existing.Id)
			stats.Unchanged++
			continue
		}
		updated, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Context(ctx).Do()
		if err != nil {
			return stats, fmt.Errorf("patch event %s for task %d: %w", existing.Id, task.ID, err)
		}
		c.remember(key, updated.Id)
		stats.Updated++
	}

	if c.colors != nil {
		if err := c.colors.Save(); err != nil {
			c.logger.Warn("failed to save bucket colors", "err", err)
		}
	}
	if c.index != nil {
		if err := c.index.Save(); err != nil {
			c.logger.Warn("failed to save event index", "err", err)
		}
	}
	return stats, nil
}

// eventKeys assigns each task its event index key. The first task with an
// outline number gets the plain key; later tasks repeating it get the task ID
// appended so they never overwrite each other's event.
func eventKeys(project string, tasks []*model.Task) map[int]string {
	keys := make(map[int]string, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		key := index.Key(project, task.OutlineNumber)
		if seen[key] {
			key = fmt.Sprintf("%s~%d", key, task.ID)
		}
		seen[key] = true
		keys[task.ID] = key
	}
	return keys
}

func (c *CalendarClient) remember(key, eventID string) {
	if c.index != nil {
		c.index.Set(key, eventID)
	}
}

// findEvent tries the local index first and falls back to an API search on
// the private property.
func (c *CalendarClient) findEvent(ctx context.Context, key string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(key); eventID != "" {
			event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			c.index.Remove(key)
		}
	}

	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", eventKeyProperty, key)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// EventFromTask builds the all-day event for a task. A zero-length task such
// as a milestone still occupies its start day.
func EventFromTask(task *model.Task, key, colorID string) *calendar.Event {
	days := 1
	if task.Duration != nil && *task.Duration > 1 {
		days = *task.Duration
	}
	start := *task.StartDate

	summary := task.Name
	switch {
	case task.PercentDone >= 100:
		summary = "✓ " + task.Name
	case task.Duration != nil && *task.Duration == 0:
		summary = "◆ " + task.Name
	}

	return &calendar.Event{
		Summary:     summary,
		Description: eventDescription(task),
		ColorId:     colorID,
		Start:       &calendar.EventDateTime{Date: start.String()},
		End:         &calendar.EventDateTime{Date: start.AddDays(days).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{eventKeyProperty: key},
		},
	}
}

func eventDescription(task *model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outline: %s\n", task.OutlineNumber)
	fmt.Fprintf(&b, "Progress: %g%%\n", task.PercentDone)
	if task.ResourceAssignment != "" {
		fmt.Fprintf(&b, "Assigned to: %s\n", task.ResourceAssignment)
	}
	if task.Bucket != "" {
		fmt.Fprintf(&b, "Bucket: %s\n", task.Bucket)
	}
	if task.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	}
	if task.Note != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", task.Note)
	}
	return b.String()
}

// EventPatch returns the fields of target that differ from existing, or nil
// when the event is already up to date.
func EventPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}
