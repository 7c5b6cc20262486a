package onboarding

import (
	"context"

	"github.com/Afrawles/onboardtracker/internal/asana"
)

// TaskSource is the subset of the Asana API the aggregator reads from.
type TaskSource interface {
	SectionTasks(ctx context.Context, sectionGID string) ([]asana.Task, error)
	TaskCustomFields(ctx context.Context, taskGID string) ([]asana.CustomField, error)
	Subtasks(ctx context.Context, taskGID string) ([]asana.Task, error)
}

var _ TaskSource = (*asana.Client)(nil)
