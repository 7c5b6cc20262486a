// Package diagnostics checks Asana connectivity and lists the GIDs needed to
// fill in the configuration.
package diagnostics

import (
	"context"
	"errors"
	"fmt"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/config"
)

const sampleSize = 5

type Client interface {
	Me(ctx context.Context) (*asana.User, error)
	Project(ctx context.Context, projectGID string) (*asana.Project, error)
	ProjectSections(ctx context.Context, projectGID string) ([]asana.Section, error)
	SampleTasks(ctx context.Context, projectGID, sectionGID string, limit int) ([]asana.Task, error)
	TaskCustomFields(ctx context.Context, taskGID string) ([]asana.CustomField, error)
}

var _ Client = (*asana.Client)(nil)

type SectionInfo struct {
	asana.Section
	Configured bool
}

// Report holds whatever was gathered before the first failing check.
type Report struct {
	User         *asana.User
	Project      *asana.Project
	CustomFields []asana.CustomField
	Sections     []SectionInfo
	SampleTasks  []asana.Task
	Warnings     []string
}

// Step names one check, used to label progress output and failures.
type Step string

const (
	StepUser         Step = "current user"
	StepProject      Step = "project access"
	StepCustomFields Step = "custom fields"
	StepSections     Step = "sections"
	StepSampleTasks  Step = "sample tasks"
)

type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s check failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var ErrNoProject = errors.New("asana.project_gid is required for diagnostics")

// Run performs the checks in order and stops at the first failure. The
// partial report is returned alongside the error. progress, when non-nil,
// is called before each check.
func Run(ctx context.Context, client Client, cfg config.AsanaConfig, progress func(Step)) (*Report, error) {
	report := &Report{}
	step := func(s Step) {
		if progress != nil {
			progress(s)
		}
	}

	step(StepUser)
	user, err := client.Me(ctx)
	if err != nil {
		return report, &StepError{Step: StepUser, Err: err}
	}
	report.User = user

	if cfg.ProjectGID == "" {
		return report, &StepError{Step: StepProject, Err: ErrNoProject}
	}

	step(StepProject)
	project, err := client.Project(ctx, cfg.ProjectGID)
	if err != nil {
		return report, &StepError{Step: StepProject, Err: err}
	}
	report.Project = project

	step(StepCustomFields)
	tasks, err := client.SampleTasks(ctx, cfg.ProjectGID, "", 1)
	if err != nil {
		return report, &StepError{Step: StepCustomFields, Err: err}
	}
	if len(tasks) == 0 {
		report.Warnings = append(report.Warnings, "project has no tasks; custom fields cannot be listed")
	} else {
		fields, err := client.TaskCustomFields(ctx, tasks[0].GID)
		if err != nil {
			return report, &StepError{Step: StepCustomFields, Err: err}
		}
		report.CustomFields = fields
	}

	step(StepSections)
	sections, err := client.ProjectSections(ctx, cfg.ProjectGID)
	if err != nil {
		return report, &StepError{Step: StepSections, Err: err}
	}
	found := false
	for _, s := range sections {
		configured := s.GID == cfg.SectionGID
		found = found || configured
		report.Sections = append(report.Sections, SectionInfo{Section: s, Configured: configured})
	}
	if !found {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("configured section %q not found in project", cfg.SectionGID))
	}

	step(StepSampleTasks)
	sample, err := client.SampleTasks(ctx, cfg.ProjectGID, cfg.SectionGID, sampleSize)
	if err != nil {
		return report, &StepError{Step: StepSampleTasks, Err: err}
	}
	report.SampleTasks = sample

	return report, nil
}
