package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/config"
)

type Aggregator struct {
	Source     TaskSource
	Resolver   *asana.Resolver
	SectionGID string
	Fields     config.CustomFieldsConfig
	Logger     *slog.Logger
	Now        func() time.Time

	expandGroups []string
	onsiteState  string
	microsoft    *regexp.Regexp
	software     *regexp.Regexp
	laptop       *regexp.Regexp
	peripherals  *regexp.Regexp
}

func NewAggregator(src TaskSource, cfg *config.Config, logger *slog.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Aggregator{
		Source:       src,
		Resolver:     asana.NewResolver(src, cfg.Asana.MaxDepth, logger),
		SectionGID:   cfg.Asana.SectionGID,
		Fields:       cfg.CustomFields,
		Logger:       logger,
		Now:          time.Now,
		expandGroups: cfg.Milestones.ExpandGroups,
		onsiteState:  cfg.Milestones.OnsiteState,
	}

	patterns := []struct {
		dst     **regexp.Regexp
		pattern string
	}{
		{&a.microsoft, cfg.Milestones.MicrosoftAccount},
		{&a.software, cfg.Milestones.SoftwareAccounts},
		{&a.laptop, cfg.Milestones.Laptop},
		{&a.peripherals, cfg.Milestones.Peripherals},
	}
	for _, p := range patterns {
		re, err := CompilePattern(p.pattern)
		if err != nil {
			return nil, err
		}
		*p.dst = re
	}

	return a, nil
}

// Generate builds one record per incomplete "Onboard <name>" task in the
// section. The first failed API call aborts the whole run.
func (a *Aggregator) Generate(ctx context.Context) ([]Record, error) {
	a.Logger.Info("fetching onboarding tasks", "section_gid", a.SectionGID)

	tasks, err := a.Source.SectionTasks(ctx, a.SectionGID)
	if err != nil {
		return nil, fmt.Errorf("failed to list section tasks: %w", err)
	}

	records := []Record{}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		name, ok := ParseName(t.Name)
		if !ok {
			continue
		}

		rec, err := a.buildRecord(ctx, t, name)
		if err != nil {
			return nil, fmt.Errorf("onboarding task %s: %w", t.GID, err)
		}
		records = append(records, rec)
	}

	a.Logger.Info("onboarding records built", "tasks", len(tasks), "records", len(records))
	return records, nil
}

func (a *Aggregator) buildRecord(ctx context.Context, t asana.Task, name string) (Record, error) {
	fields, err := a.Source.TaskCustomFields(ctx, t.GID)
	if err != nil {
		return Record{}, fmt.Errorf("failed to fetch custom fields: %w", err)
	}

	subtasks, err := a.Resolver.Resolve(ctx, t.GID)
	if err != nil {
		return Record{}, err
	}

	subtasks, err = a.expand(ctx, name, subtasks)
	if err != nil {
		return Record{}, err
	}

	microsoft := a.find(subtasks, a.microsoft)
	software := a.find(subtasks, a.software)
	laptop := a.find(subtasks, a.laptop)
	peripherals := a.find(subtasks, a.peripherals)

	startDate := DateFieldValue(fields, a.Fields.StartDate)
	state := FieldValue(fields, a.Fields.State)

	return Record{
		Name:            name,
		TaskGID:         t.GID,
		State:           state,
		Position:        FieldValue(fields, a.Fields.Position),
		StartDate:       startDate,
		Email:           FieldValue(fields, a.Fields.Email),
		Phone:           FieldValue(fields, a.Fields.Phone),
		ShippingAddress: FieldValue(fields, a.Fields.ShippingAddress),
		Timeline: Timeline{
			OfferAccepted:    Milestone{Completed: true, TaskGID: strPtr(t.GID)},
			MicrosoftAccount: microsoft,
			SoftwareAccounts: software,
			EquipmentReady:   EquipmentReady(laptop, peripherals),
			StartDate:        StartDateMilestone(startDate, t.GID, a.Now()),
		},
		IsRemote: IsRemote(state, a.onsiteState),
	}, nil
}

// expand appends the subtree of the first grouping subtask named in
// expandGroups, skipping entries already present.
func (a *Aggregator) expand(ctx context.Context, name string, subtasks []asana.Task) ([]asana.Task, error) {
	for _, st := range subtasks {
		if !slices.Contains(a.expandGroups, st.Name) {
			continue
		}

		children, err := a.Resolver.Resolve(ctx, st.GID)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool, len(subtasks))
		for _, s := range subtasks {
			seen[s.GID] = true
		}
		for _, c := range children {
			a.Logger.Debug("group subtask", "person", name, "group", st.Name, "subtask", c.Name, "completed", c.Completed)
			if c.GID != "" && seen[c.GID] {
				continue
			}
			subtasks = append(subtasks, c)
		}
		return subtasks, nil
	}
	return subtasks, nil
}

func (a *Aggregator) find(subtasks []asana.Task, re *regexp.Regexp) Milestone {
	m := FindMilestone(subtasks, re)
	if m.TaskGID != nil {
		a.Logger.Debug("found matching task", "pattern", re.String(), "task_gid", *m.TaskGID, "completed", m.Completed)
	}
	return m
}

// Statistics summarises milestone completion across records.
func Statistics(records []Record) map[string]any {
	stats := make(map[string]any)

	byMilestone := make(map[string]int)
	remote := 0
	ready := 0
	for _, r := range records {
		all := true
		for _, m := range r.Milestones() {
			if m.Completed {
				byMilestone[m.Key]++
			} else {
				all = false
			}
		}
		if all {
			ready++
		}
		if r.IsRemote {
			remote++
		}
	}

	stats["total"] = len(records)
	stats["remote"] = remote
	stats["completed"] = ready
	stats["by_milestone"] = byMilestone
	return stats
}
