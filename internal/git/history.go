package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitPatch is the unified diff a single commit introduced.
type CommitPatch struct {
	Hash  string
	Patch string
}

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

func open(root string) (*gogit.Repository, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpenWithOptions(validRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", root, err)
	}
	return repo, nil
}

func commitAt(repo *gogit.Repository, rev string) (*object.Commit, error) {
	h, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", rev, err)
	}
	c, err := repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", h, err)
	}
	return c, nil
}

// DiffAgainst returns the unified diff of HEAD against its merge base with
// base, the changes a pull request from HEAD into base would introduce.
// When no merge base exists the diff is taken against base directly.
func DiffAgainst(ctx context.Context, root, base string) (string, error) {
	repo, err := open(root)
	if err != nil {
		return "", err
	}
	baseCommit, err := commitAt(repo, base)
	if err != nil {
		return "", err
	}
	head, err := commitAt(repo, "HEAD")
	if err != nil {
		return "", err
	}
	from := baseCommit
	if bases, err := baseCommit.MergeBase(head); err == nil && len(bases) > 0 {
		from = bases[0]
	}
	patch, err := from.PatchContext(ctx, head)
	if err != nil {
		return "", fmt.Errorf("diff %s..HEAD: %w", base, err)
	}
	return patch.String(), nil
}

// HistoryPatches returns the patches of the last n commits reachable from
// HEAD, newest first. A root commit is diffed against the empty tree.
func HistoryPatches(ctx context.Context, root string, n int) ([]CommitPatch, error) {
	if n <= 0 {
		return nil, nil
	}
	repo, err := open(root)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	iter, err := repo.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	defer iter.Close()

	var out []CommitPatch
	for len(out) < n {
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		text, err := commitPatch(ctx, c)
		if err != nil {
			return out, fmt.Errorf("patch %s: %w", c.Hash, err)
		}
		out = append(out, CommitPatch{Hash: c.Hash.String(), Patch: text})
	}
	return out, nil
}

func commitPatch(ctx context.Context, c *object.Commit) (string, error) {
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return "", err
		}
		p, err := parent.PatchContext(ctx, c)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	}
	tree, err := c.Tree()
	if err != nil {
		return "", err
	}
	changes, err := object.DiffTreeWithOptions(ctx, nil, tree, nil)
	if err != nil {
		return "", err
	}
	p, err := changes.PatchContext(ctx)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

// StagedDiff returns the unified diff of the index against HEAD.
func StagedDiff(ctx context.Context, root string) (string, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, "git", "-C", validRoot, "diff", "--cached", "--no-color", "--no-ext-diff", "--unified=3")
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git diff --cached: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return string(out), nil
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned on failure. It avoids heavy git calls and uses
// simple plumbing to remain fast in CI.
func RepoMetadata(root string) (string, string, string) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return "", "", ""
	}
	repo := ""
	if out, err := exec.Command("git", "-C", validRoot, "config", "--get", "remote.origin.url").Output(); err == nil {
		repo = shortRepo(strings.TrimSpace(string(out)))
	}
	commit := ""
	if out, err := exec.Command("git", "-C", validRoot, "rev-parse", "HEAD").Output(); err == nil {
		commit = strings.TrimSpace(string(out))
	}
	branch := ""
	if out, err := exec.Command("git", "-C", validRoot, "rev-parse", "--abbrev-ref", "HEAD").Output(); err == nil {
		branch = strings.TrimSpace(string(out))
	}
	return repo, commit, branch
}

// shortRepo reduces a remote URL to owner/name where it can.
func shortRepo(s string) string {
	s = strings.TrimSuffix(s, ".git")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "/"); j >= 0 {
			s = s[j+1:]
		}
		return s
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
