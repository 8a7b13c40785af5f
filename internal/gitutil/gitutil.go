// Package gitutil is the thin git boundary: staged paths, staged diffs and
// repo discovery, all via the git CLI.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

func run(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (string, error) {
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx2, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	outStr := stdout.String()
	if err != nil {
		if outStr == "" {
			outStr = stderr.String()
		} else {
			outStr = outStr + "\n" + stderr.String()
		}
		return outStr, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return outStr, nil
}

// RepoRoot returns the working tree root for dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, defaultTimeout, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StagedFiles lists repo-relative paths staged for commit. Deleted files are
// excluded; there is nothing to analyze for them.
func StagedFiles(ctx context.Context, root string) ([]string, error) {
	out, err := run(ctx, root, defaultTimeout, "git", "diff", "--cached", "--name-only", "--diff-filter=ACMR")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// StagedDiff returns the unified diff between the index and HEAD for one
// file. Empty output means the file is new in this repository.
func StagedDiff(ctx context.Context, root, path string) (string, error) {
	out, err := run(ctx, root, defaultTimeout, "git", "diff", "--cached", "--unified=0", "--", path)
	if err != nil {
		return "", err
	}
	return out, nil
}

// WorkingTreeFile reads a staged file's working-tree contents.
func WorkingTreeFile(root, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(root, path))
}
