package onboarding

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/asana/asanatest"
	"github.com/Afrawles/onboardtracker/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Asana: config.AsanaConfig{SectionGID: "S1", MaxDepth: 5},
		CustomFields: config.CustomFieldsConfig{
			State:           "f-state",
			Position:        "f-position",
			StartDate:       "f-start",
			Email:           "f-email",
			Phone:           "f-phone",
			ShippingAddress: "f-ship",
		},
		Milestones: config.MilestonesConfig{
			MicrosoftAccount: "Create Microsoft user account",
			SoftwareAccounts: "Add user to role-based apps",
			Laptop:           "Deploy laptop",
			Peripherals:      "Deploy peripherals",
			ExpandGroups:     []string{"Technology set up"},
			OnsiteState:      "IN",
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(s string) *string { return &s }

func newFixture(t *testing.T) *asanatest.Server {
	t.Helper()
	srv := asanatest.NewServer()
	t.Cleanup(srv.Close)
	return srv
}

func newTestAggregator(t *testing.T, srv *asanatest.Server, now time.Time) *Aggregator {
	t.Helper()
	client := asana.NewClient(asanatest.Token, asana.WithBaseURL(srv.URL))
	agg, err := NewAggregator(client, testConfig(), discardLogger())
	require.NoError(t, err)
	agg.Now = func() time.Time { return now }
	return agg
}

func TestGenerate_EndToEnd(t *testing.T) {
	srv := newFixture(t)
	srv.AddSectionTask("S1", asana.Task{
		GID:  "T1",
		Name: "Onboard Jane Doe",
		CustomFields: []asana.CustomField{
			{GID: "f-state", EnumValue: &asana.EnumValue{Name: "OH"}},
			{GID: "f-position", TextValue: str("Engineer")},
			{GID: "f-start", DateValue: &asana.DateValue{Date: "2024-06-01"}},
			{GID: "f-email", TextValue: str("jane@example.com")},
		},
	})
	srv.AddTask("T1", asana.Task{GID: "A", Name: "Paperwork", ResourceSubtype: "default_task"})
	srv.AddTask("T1", asana.Task{GID: "TECH", Name: "Technology set up"})
	srv.AddTask("TECH", asana.Task{GID: "L", Name: "Deploy laptop", Completed: true, CompletedAt: str("2024-05-01T10:00:00.000Z")})
	srv.AddTask("TECH", asana.Task{GID: "P", Name: "Deploy peripherals", Completed: true, CompletedAt: str("2024-05-02T09:00:00.000Z")})

	agg := newTestAggregator(t, srv, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	records, err := agg.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Jane Doe", r.Name)
	assert.Equal(t, "T1", r.TaskGID)
	assert.Equal(t, "OH", *r.State)
	assert.Equal(t, "Engineer", *r.Position)
	assert.Equal(t, "jane@example.com", *r.Email)
	assert.Nil(t, r.Phone)
	assert.True(t, r.IsRemote)

	assert.True(t, r.Timeline.OfferAccepted.Completed)
	assert.Equal(t, Milestone{}, r.Timeline.MicrosoftAccount)
	assert.False(t, r.Timeline.SoftwareAccounts.Completed)

	eq := r.Timeline.EquipmentReady
	assert.True(t, eq.Completed)
	assert.Equal(t, "2024-05-02T09:00:00.000Z", *eq.CompletedAt)
	assert.Equal(t, "L", *eq.TaskGID)

	assert.True(t, r.Timeline.StartDate.Completed)
	assert.Equal(t, "2024-06-01", *r.Timeline.StartDate.CompletedAt)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	nodes := decoded["timeline_nodes"].(map[string]any)
	assert.Equal(t, map[string]any{"completed": false, "completed_at": nil, "task_gid": nil}, nodes["microsoft_account"])
	assert.Equal(t, true, nodes["equipment_ready"].(map[string]any)["completed"])
	assert.Equal(t, map[string]any{"date": "2024-06-01", "date_time": nil}, decoded["start_date"])
}

func TestGenerate_FiltersTitlesAndCompleted(t *testing.T) {
	src := &fakeSource{
		sectionTasks: []asana.Task{
			{GID: "1", Name: "Onboard Jane Doe"},
			{GID: "2", Name: "Onboard Done Person", Completed: true},
			{GID: "3", Name: "Offboard John"},
			{GID: "4", Name: "Team lunch"},
		},
	}
	agg, err := NewAggregator(src, testConfig(), discardLogger())
	require.NoError(t, err)

	records, err := agg.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].Name)
	assert.Equal(t, []string{"1"}, src.fieldCalls)
}

func TestGenerate_EmptySectionReturnsEmptySlice(t *testing.T) {
	agg, err := NewAggregator(&fakeSource{}, testConfig(), discardLogger())
	require.NoError(t, err)

	records, err := agg.Generate(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGenerate_NestedFailureDiscardsEverything(t *testing.T) {
	srv := newFixture(t)
	srv.AddSectionTask("S1", asana.Task{GID: "T1", Name: "Onboard A"})
	srv.AddSectionTask("S1", asana.Task{GID: "T2", Name: "Onboard B"})
	srv.AddTask("T2", asana.Task{GID: "SEC", Name: "Week one", ResourceSubtype: asana.SubtypeSection})
	srv.Failures["/tasks/SEC/subtasks"] = http.StatusForbidden

	agg := newTestAggregator(t, srv, time.Now())
	records, err := agg.Generate(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)

	apiErr, ok := asana.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "forced failure", apiErr.Message)
}

func TestGenerate_SectionSubtasksAreSearched(t *testing.T) {
	srv := newFixture(t)
	srv.AddSectionTask("S1", asana.Task{GID: "T1", Name: "Onboard A"})
	srv.AddTask("T1", asana.Task{GID: "SEC", Name: "Accounts", ResourceSubtype: asana.SubtypeSection})
	srv.AddTask("SEC", asana.Task{GID: "MS", Name: "create microsoft USER account", Completed: true, CompletedAt: str("2024-01-01T00:00:00.000Z")})

	agg := newTestAggregator(t, srv, time.Now())
	records, err := agg.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Timeline.MicrosoftAccount.Completed)
	assert.Equal(t, "MS", *records[0].Timeline.MicrosoftAccount.TaskGID)
}

func TestGenerate_StartDateInFuture(t *testing.T) {
	srv := newFixture(t)
	srv.AddSectionTask("S1", asana.Task{
		GID:  "T1",
		Name: "Onboard A",
		CustomFields: []asana.CustomField{
			{GID: "f-state", TextValue: str("IN")},
			{GID: "f-start", DateValue: &asana.DateValue{Date: "2024-07-01"}},
		},
	})

	agg := newTestAggregator(t, srv, time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC))
	records, err := agg.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Timeline.StartDate.Completed)
	assert.Nil(t, records[0].Timeline.StartDate.CompletedAt)
	assert.Equal(t, "2024-07-01", records[0].Timeline.StartDate.Date.Date)
	assert.False(t, records[0].IsRemote)
}

func TestNewAggregator_InvalidPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Milestones.Laptop = "Deploy (laptop"
	_, err := NewAggregator(&fakeSource{}, cfg, discardLogger())
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	done := Milestone{Completed: true}
	records := []Record{
		{
			IsRemote: true,
			Timeline: Timeline{
				OfferAccepted: done, MicrosoftAccount: done, SoftwareAccounts: done, EquipmentReady: done,
				StartDate: StartDateStatus{Milestone: done},
			},
		},
		{Timeline: Timeline{OfferAccepted: done}},
	}

	stats := Statistics(records)
	assert.Equal(t, 2, stats["total"])
	assert.Equal(t, 1, stats["remote"])
	assert.Equal(t, 1, stats["completed"])
	byMilestone := stats["by_milestone"].(map[string]int)
	assert.Equal(t, 2, byMilestone["offer_accepted"])
	assert.Equal(t, 1, byMilestone["equipment_ready"])
}

type fakeSource struct {
	sectionTasks []asana.Task
	fieldCalls   []string
}

func (f *fakeSource) SectionTasks(context.Context, string) ([]asana.Task, error) {
	return f.sectionTasks, nil
}

func (f *fakeSource) TaskCustomFields(_ context.Context, gid string) ([]asana.CustomField, error) {
	f.fieldCalls = append(f.fieldCalls, gid)
	return nil, nil
}

func (f *fakeSource) Subtasks(context.Context, string) ([]asana.Task, error) {
	return nil, nil
}
