package domain

import (
	"fmt"
	"regexp"
	"time"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

type Project struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateKey checks that Key is non-empty and matches the required format:
// an uppercase letter followed by 1-9 uppercase letters or digits (e.g. PROJ).
func (p *Project) ValidateKey() error {
	if p.Key == "" {
		return fmt.Errorf("project key is required (use --key flag)")
	}
	if !projectKeyPattern.MatchString(p.Key) {
		return fmt.Errorf("project key %q must be 2-10 uppercase letters or digits starting with a letter (e.g. PROJ)", p.Key)
	}
	return nil
}

// IssueKey formats the human key for the issue with the given sequence number.
func (p *Project) IssueKey(seq int) string {
	return fmt.Sprintf("%s-%d", p.Key, seq)
}

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
