package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/workflow"
)

var (
	issueKeyPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{1,9}-[0-9]+$`)
	projectKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{1,9}$`)
)

// txRepos are repositories bound to one transaction.
type txRepos struct {
	projects *repository.SQLiteProjectRepo
	seqs     *repository.SQLiteProjectSequenceRepo
	issues   *repository.SQLiteIssueRepo
	links    *repository.SQLiteLinkRepo
	configs  *repository.SQLiteProjectConfigRepo
}

func newTxRepos(tx db.DBTX) txRepos {
	return txRepos{
		projects: repository.NewSQLiteProjectRepo(tx),
		seqs:     repository.NewSQLiteProjectSequenceRepo(tx),
		issues:   repository.NewSQLiteIssueRepo(tx),
		links:    repository.NewSQLiteLinkRepo(tx),
		configs:  repository.NewSQLiteProjectConfigRepo(tx),
	}
}

// registry returns base scoped to the transaction's configuration reads.
func (r txRepos) registry(base *workflow.Registry) *workflow.Registry {
	return base.WithProvider(r.configs)
}

// resolveIssue looks an issue up by key when ref has key shape, else by id.
func resolveIssue(ctx context.Context, issues repository.IssueRepo, ref string) (*domain.Issue, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.InputError("issue reference is required")
	}
	if issueKeyPattern.MatchString(ref) {
		i, err := issues.GetByKey(ctx, strings.ToUpper(ref))
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return i, err
		}
	}
	return issues.GetByID(ctx, ref)
}

// resolveProject looks a project up by key when ref has key shape, else by id.
func resolveProject(ctx context.Context, projects repository.ProjectRepo, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.InputError("project reference is required")
	}
	if projectKeyPattern.MatchString(ref) {
		p, err := projects.GetByKey(ctx, ref)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return p, err
		}
	}
	return projects.GetByID(ctx, ref)
}

// allocateIssueKey assigns the next per-project sequence number and key.
func allocateIssueKey(ctx context.Context, repos txRepos, project *domain.Project, issue *domain.Issue) error {
	seq, err := repos.seqs.NextProjectSeq(ctx, project.ID)
	if err != nil {
		return err
	}
	issue.Seq = seq
	issue.Key = project.IssueKey(seq)
	return nil
}

// checkStatusMember rejects a status outside the issue's workflow.
func checkStatusMember(ctx context.Context, reg *workflow.Registry, issue *domain.Issue, status string) error {
	statuses, err := reg.StatusesFor(ctx, issue.ProjectID, issue.Type)
	if err != nil {
		return err
	}
	return workflow.Evaluate(issue, status, statuses).Err()
}
