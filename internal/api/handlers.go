package api

import (
	"net/http"
	"time"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
)

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime_s": time.Since(s.startTime).Seconds(),
	})
}

// POST /link
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req contract.LinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := s.svc.Relationships.Link(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// POST /unlink
func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	var req contract.UnlinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := s.svc.Relationships.Unlink(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// POST /reparent
func (s *Server) handleReparent(w http.ResponseWriter, r *http.Request) {
	var req contract.ReparentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h, err := s.svc.Relationships.Reparent(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// GET /hierarchy/{issueID}
func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.Relationships.Hierarchy(r.Context(), r.PathValue("issueID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// POST /subtask
func (s *Server) handleSubtask(w http.ResponseWriter, r *http.Request) {
	var req contract.SubtaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	issue, err := s.svc.Relationships.CreateSubtask(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// POST /issue
func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req contract.CreateIssueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	issue, err := s.svc.Issues.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// GET /issue/{issueID}
func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.svc.Issues.Resolve(r.Context(), r.PathValue("issueID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// PATCH /issue/{issueID}
func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	var req contract.UpdateIssueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IssueID = r.PathValue("issueID")
	issue, err := s.svc.Issues.Update(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// DELETE /issue/{issueID}
func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Relationships.DeleteIssue(r.Context(), r.PathValue("issueID")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /issue/{issueID}/transitions
func (s *Server) handleDropTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.svc.Boards.DropTargets(r.Context(), r.PathValue("issueID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

type createProjectRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// GET /project
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// POST /project
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := &domain.Project{Key: req.Key, Name: req.Name}
	if err := s.svc.Projects.Create(r.Context(), p); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GET /project/{projectID}/issues
func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.svc.Issues.ListByProject(r.Context(), r.PathValue("projectID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if issues == nil {
		issues = []*domain.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// GET /projectConfig/{projectID}
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.Projects.Config(r.Context(), r.PathValue("projectID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PUT /projectConfig/{projectID}
func (s *Server) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.ProjectConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	ref := r.PathValue("projectID")
	if err := s.svc.Projects.ReplaceConfig(r.Context(), ref, &cfg); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	stored, err := s.svc.Projects.Config(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// GET /board/{projectID}
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.svc.Boards.Board(r.Context(), r.PathValue("projectID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
