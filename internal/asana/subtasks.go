package asana

import (
	"context"
	"fmt"
	"log/slog"
)

type SubtaskLister interface {
	Subtasks(ctx context.Context, taskGID string) ([]Task, error)
}

var _ SubtaskLister = (*Client)(nil)

// Resolver flattens a subtask tree, splicing the children of sub-section
// subtasks in directly after them.
type Resolver struct {
	Lister   SubtaskLister
	MaxDepth int
	Logger   *slog.Logger
}

func NewResolver(lister SubtaskLister, maxDepth int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Lister: lister, MaxDepth: maxDepth, Logger: logger}
}

type pending struct {
	task  Task
	depth int
}

// Resolve returns every subtask below taskGID in pre-order. Each GID is
// emitted at most once, so cyclic data terminates. Sections deeper than
// MaxDepth are returned but not expanded.
func (r *Resolver) Resolve(ctx context.Context, taskGID string) ([]Task, error) {
	visited := map[string]bool{taskGID: true}

	children, err := r.Lister.Subtasks(ctx, taskGID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks of %s: %w", taskGID, err)
	}

	var stack []pending
	stack = pushReversed(stack, children, 1)

	var out []Task
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		gid := next.task.GID
		if gid != "" {
			if visited[gid] {
				continue
			}
			visited[gid] = true
		}
		out = append(out, next.task)

		if !next.task.IsSection() || gid == "" {
			continue
		}
		if r.MaxDepth > 0 && next.depth >= r.MaxDepth {
			r.Logger.Warn("subtask depth limit reached, section not expanded",
				"task_gid", taskGID,
				"section_gid", gid,
				"max_depth", r.MaxDepth,
			)
			continue
		}

		children, err := r.Lister.Subtasks(ctx, gid)
		if err != nil {
			return nil, fmt.Errorf("failed to list subtasks of section %s: %w", gid, err)
		}
		stack = pushReversed(stack, children, next.depth+1)
	}

	return out, nil
}

func pushReversed(stack []pending, tasks []Task, depth int) []pending {
	for i := len(tasks) - 1; i >= 0; i-- {
		stack = append(stack, pending{task: tasks[i], depth: depth})
	}
	return stack
}
