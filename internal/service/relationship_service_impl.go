package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/workflow"
	"github.com/google/uuid"
)

type relationshipService struct {
	registry *workflow.Registry
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewRelationshipService builds the relationship graph manager. Every
// operation, reads included, runs in one transaction so the hierarchy it
// returns is consistent with the write.
func NewRelationshipService(registry *workflow.Registry, uow db.UnitOfWork, observers ...UseCaseObserver) RelationshipService {
	return &relationshipService{
		registry: registry,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *relationshipService) Link(ctx context.Context, req contract.LinkRequest) (result *contract.Hierarchy, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"issue_id":     req.IssueID.ID,
		"target_id":    req.TargetID.ID,
		"link_type":    string(req.LinkType),
		"parent_child": string(req.ParentChild),
	}
	defer func() { observeUseCase(ctx, s.observer, "link-issues", startedAt, fields, err) }()

	if req.IssueID.ID == "" || req.TargetID.ID == "" {
		return nil, domain.InputError("issue_id and target_issue_id are required")
	}
	if req.IssueID.ID == req.TargetID.ID {
		return nil, domain.RelationshipError("issue %s cannot be linked to itself", req.IssueID.ID)
	}
	if !req.ParentChild.IsValid() {
		return nil, domain.InputError("parent_child must be %q or %q, got %q", domain.RelationParent, domain.RelationChild, req.ParentChild)
	}
	if req.ParentChild == domain.RelationNone && !req.LinkType.IsValid() {
		return nil, domain.InputError("unknown link type %q", req.LinkType)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)

		issue, err := resolveIssue(ctx, repos.issues, req.IssueID.ID)
		if err != nil {
			return err
		}
		target, err := resolveIssue(ctx, repos.issues, req.TargetID.ID)
		if err != nil {
			return err
		}
		if issue.ID == target.ID {
			return domain.RelationshipError("issue %s cannot be linked to itself", issue.DisplayKey())
		}

		switch req.ParentChild {
		case domain.RelationParent:
			err = attachParent(ctx, repos, issue, target, false)
		case domain.RelationChild:
			err = attachParent(ctx, repos, target, issue, false)
		default:
			err = createLink(ctx, repos, issue, target, req.LinkType)
		}
		if err != nil {
			return err
		}

		result, err = buildHierarchy(ctx, repos, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *relationshipService) Reparent(ctx context.Context, req contract.ReparentRequest) (result *contract.Hierarchy, err error) {
	startedAt := time.Now()
	fields := map[string]any{"issue_id": req.IssueID.ID, "parent_id": req.ParentID.ID}
	defer func() { observeUseCase(ctx, s.observer, "reparent-issue", startedAt, fields, err) }()

	if req.IssueID.ID == "" {
		return nil, domain.InputError("issue_id is required")
	}
	if req.IssueID.ID == req.ParentID.ID {
		return nil, domain.RelationshipError("issue %s cannot be its own parent", req.IssueID.ID)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)

		issue, err := resolveIssue(ctx, repos.issues, req.IssueID.ID)
		if err != nil {
			return err
		}

		if req.ParentID.ID == "" {
			if issue.HasParent() {
				issue.ClearParent(time.Now().UTC())
				if err := repos.issues.SetParent(ctx, issue.ID, "", issue.UpdatedAt); err != nil {
					return err
				}
			}
		} else {
			parent, err := resolveIssue(ctx, repos.issues, req.ParentID.ID)
			if err != nil {
				return err
			}
			if err := attachParent(ctx, repos, issue, parent, true); err != nil {
				return err
			}
		}

		result, err = buildHierarchy(ctx, repos, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *relationshipService) Unlink(ctx context.Context, req contract.UnlinkRequest) (result *contract.Hierarchy, err error) {
	startedAt := time.Now()
	fields := map[string]any{"issue_id": req.IssueID.ID, "target_id": req.TargetID.ID}
	defer func() { observeUseCase(ctx, s.observer, "unlink-issues", startedAt, fields, err) }()

	if req.IssueID.ID == "" || req.TargetID.ID == "" {
		return nil, domain.InputError("issue_id and target_issue_id are required")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)

		issue, err := resolveIssue(ctx, repos.issues, req.IssueID.ID)
		if err != nil {
			return err
		}

		targetID := req.TargetID.ID
		target, err := resolveIssue(ctx, repos.issues, req.TargetID.ID)
		switch {
		case err == nil:
			targetID = target.ID
		case errors.Is(err, domain.ErrNotFound):
			target = nil
		default:
			return err
		}

		if targetID != issue.ID {
			now := time.Now().UTC()
			if issue.ParentID() == targetID {
				if err := repos.issues.SetParent(ctx, issue.ID, "", now); err != nil {
					return err
				}
			}
			if target != nil && target.ParentID() == issue.ID {
				if err := repos.issues.SetParent(ctx, target.ID, "", now); err != nil {
					return err
				}
			}
			removed, err := repos.links.DeleteBetween(ctx, issue.ID, targetID)
			if err != nil {
				return err
			}
			fields["links_removed"] = removed
		}

		result, err = buildHierarchy(ctx, repos, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *relationshipService) Hierarchy(ctx context.Context, ref string) (*contract.Hierarchy, error) {
	var result *contract.Hierarchy
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		issue, err := resolveIssue(ctx, repos.issues, ref)
		if err != nil {
			return err
		}
		result, err = buildHierarchy(ctx, repos, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *relationshipService) CreateSubtask(ctx context.Context, req contract.SubtaskRequest) (created *domain.Issue, err error) {
	startedAt := time.Now()
	fields := map[string]any{"parent_id": req.ParentID.ID}
	defer func() { observeUseCase(ctx, s.observer, "create-subtask", startedAt, fields, err) }()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.InputError("title is required")
	}
	if req.ParentID.ID == "" {
		return nil, domain.InputError("parent_issue_id is required")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		reg := repos.registry(s.registry)

		parent, err := resolveIssue(ctx, repos.issues, req.ParentID.ID)
		if err != nil {
			return err
		}
		if !parent.CanHaveChildren() {
			return domain.RelationshipError("%s is a subtask and cannot hold subtasks", parent.DisplayKey())
		}
		project, err := repos.projects.GetByID(ctx, parent.ProjectID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		issue := &domain.Issue{
			ID:          uuid.New().String(),
			ProjectID:   parent.ProjectID,
			Title:       title,
			Description: req.Description,
			Type:        domain.TypeSubtask,
			Parent:      domain.Ref(parent.ID),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Status != "" {
			if err := checkStatusMember(ctx, reg, issue, req.Status); err != nil {
				return err
			}
			issue.Status = req.Status
		} else {
			issue.Status, err = reg.DefaultStatusFor(ctx, issue.ProjectID, issue.Type)
			if err != nil {
				return err
			}
		}

		if err := allocateIssueKey(ctx, repos, project, issue); err != nil {
			return err
		}
		if err := repos.issues.Create(ctx, issue); err != nil {
			return err
		}
		created = issue
		fields["issue_key"] = issue.Key
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *relationshipService) DeleteIssue(ctx context.Context, ref string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"issue_ref": ref}
	defer func() { observeUseCase(ctx, s.observer, "delete-issue", startedAt, fields, err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)

		issue, err := resolveIssue(ctx, repos.issues, ref)
		if err != nil {
			return err
		}
		orphaned, err := repos.issues.OrphanChildren(ctx, issue.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		removed, err := repos.links.DeleteForIssue(ctx, issue.ID)
		if err != nil {
			return err
		}
		fields["children_orphaned"] = orphaned
		fields["links_removed"] = removed
		return repos.issues.Delete(ctx, issue.ID)
	})
}

// attachParent makes parent the parent of child after checking type,
// project and cycle rules. A child that already has a different parent is
// only moved when replace is set. Attaching the current parent again is a
// no-op.
func attachParent(ctx context.Context, repos txRepos, child, parent *domain.Issue, replace bool) error {
	if child.ID == parent.ID {
		return domain.RelationshipError("issue %s cannot be its own parent", child.DisplayKey())
	}
	if !parent.CanHaveChildren() {
		return domain.RelationshipError("%s is a subtask and cannot hold children", parent.DisplayKey())
	}
	if child.ProjectID != parent.ProjectID {
		return domain.RelationshipError("%s and %s belong to different projects", child.DisplayKey(), parent.DisplayKey())
	}
	if child.ParentID() == parent.ID {
		return nil
	}
	if child.HasParent() && !replace {
		return domain.RelationshipError("%s already has a parent; reparent it explicitly", child.DisplayKey())
	}
	if err := checkNoCycle(ctx, repos.issues, child, parent); err != nil {
		return err
	}

	if err := child.SetParent(parent.ID, time.Now().UTC()); err != nil {
		return err
	}
	return repos.issues.SetParent(ctx, child.ID, parent.ID, child.UpdatedAt)
}

// checkNoCycle walks the proposed parent's ancestor chain and fails when it
// reaches child.
func checkNoCycle(ctx context.Context, issues repository.IssueRepo, child, parent *domain.Issue) error {
	visited := map[string]bool{}
	cur := parent
	for cur != nil {
		if cur.ID == child.ID {
			return domain.RelationshipError("%s is a descendant of %s; linking would create a cycle", parent.DisplayKey(), child.DisplayKey())
		}
		if visited[cur.ID] {
			return fmt.Errorf("ancestor chain of %s loops at %s", parent.DisplayKey(), cur.DisplayKey())
		}
		visited[cur.ID] = true

		next := cur.ParentID()
		if next == "" {
			return nil
		}
		var err error
		cur, err = issues.GetByID(ctx, next)
		if err != nil {
			return fmt.Errorf("walking ancestors of %s: %w", parent.DisplayKey(), err)
		}
	}
	return nil
}

func createLink(ctx context.Context, repos txRepos, issue, target *domain.Issue, linkType domain.LinkType) error {
	existing, err := repos.links.GetBetween(ctx, issue.ID, target.ID)
	if err == nil {
		_, seen, _ := existing.ViewFrom(issue.ID)
		return domain.RelationshipError("%s and %s are already linked (%s)", issue.DisplayKey(), target.DisplayKey(), seen)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return repos.links.Create(ctx, &domain.Link{
		SourceID:  issue.ID,
		TargetID:  target.ID,
		Type:      linkType,
		CreatedAt: time.Now().UTC(),
	})
}

// buildHierarchy reads the relationship neighbourhood of issueID. Every
// referenced issue must exist; a missing one surfaces as ErrNotFound.
func buildHierarchy(ctx context.Context, repos txRepos, issueID string) (*contract.Hierarchy, error) {
	issue, err := repos.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	h := contract.NewHierarchy(issue)

	if pid := issue.ParentID(); pid != "" {
		h.Parent, err = repos.issues.GetByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", issue.DisplayKey(), err)
		}
	}

	children, err := repos.issues.ListChildren(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	h.Children = append(h.Children, children...)

	links, err := repos.links.ListForIssue(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		otherID, linkType, dir := l.ViewFrom(issue.ID)
		other, err := repos.issues.GetByID(ctx, otherID)
		if err != nil {
			return nil, fmt.Errorf("loading linked issue of %s: %w", issue.DisplayKey(), err)
		}
		h.Linked = append(h.Linked, contract.LinkedIssue{Issue: other, LinkType: linkType, Direction: dir})
	}
	return h, nil
}
