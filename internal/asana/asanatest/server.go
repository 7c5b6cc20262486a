// Package asanatest provides an in-memory Asana API for tests.
package asanatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/Afrawles/onboardtracker/internal/asana"
)

const Token = "test-token"

type Server struct {
	*httptest.Server

	mu sync.Mutex

	User     asana.User
	Projects map[string]asana.Project
	// Sections per project GID.
	Sections map[string][]asana.Section
	// SectionTasks lists task GIDs per section GID.
	SectionTasks map[string][]string
	// ProjectTasks lists task GIDs per project GID.
	ProjectTasks map[string][]string
	Tasks        map[string]asana.Task
	// Children lists subtask GIDs per parent task GID.
	Children map[string][]string
	// Failures forces a status code for an exact request path.
	Failures map[string]int

	requests []string
}

func NewServer() *Server {
	s := &Server{
		User:         asana.User{GID: "u1", Name: "Test User", Email: "test@example.com"},
		Projects:     map[string]asana.Project{},
		Sections:     map[string][]asana.Section{},
		SectionTasks: map[string][]string{},
		ProjectTasks: map[string][]string{},
		Tasks:        map[string]asana.Task{},
		Children:     map[string][]string{},
		Failures:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddTask registers t under parent (a task GID) or, with an empty parent,
// as a top-level task.
func (s *Server) AddTask(parent string, t asana.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tasks[t.GID] = t
	if parent != "" {
		s.Children[parent] = append(s.Children[parent], t.GID)
	}
}

// AddSectionTask registers t as a task of section.
func (s *Server) AddSectionTask(section string, t asana.Task) {
	s.AddTask("", t)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SectionTasks[section] = append(s.SectionTasks[section], t.GID)
}

// Requests returns the request paths served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.URL.Path)

	if r.Header.Get("Authorization") != "Bearer "+Token {
		writeError(w, http.StatusUnauthorized, "Not Authorized")
		return
	}
	if code, ok := s.Failures[r.URL.Path]; ok {
		writeError(w, code, "forced failure")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "users" && parts[1] == "me":
		writeData(w, s.User)
	case len(parts) == 2 && parts[0] == "projects":
		p, ok := s.Projects[parts[1]]
		if !ok {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeData(w, p)
	case len(parts) == 3 && parts[0] == "projects" && parts[2] == "sections":
		writeData(w, s.Sections[parts[1]])
	case len(parts) == 1 && parts[0] == "tasks":
		s.listTasks(w, r)
	case len(parts) == 2 && parts[0] == "tasks":
		t, ok := s.Tasks[parts[1]]
		if !ok {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeData(w, t)
	case len(parts) == 3 && parts[0] == "tasks" && parts[2] == "subtasks":
		writeData(w, s.tasks(s.Children[parts[1]], false))
	default:
		writeError(w, http.StatusNotFound, "unknown route")
	}
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	incompleteOnly := q.Get("completed_since") == "now"

	var gids []string
	if section := q.Get("section"); section != "" {
		gids = s.SectionTasks[section]
	} else if project := q.Get("project"); project != "" {
		gids = s.ProjectTasks[project]
	} else {
		writeError(w, http.StatusBadRequest, "project or section required")
		return
	}
	writeData(w, s.tasks(gids, incompleteOnly))
}

func (s *Server) tasks(gids []string, incompleteOnly bool) []asana.Task {
	out := []asana.Task{}
	for _, gid := range gids {
		t := s.Tasks[gid]
		if incompleteOnly && t.Completed {
			continue
		}
		out = append(out, t)
	}
	return out
}

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]string{{"message": msg}},
	})
}
