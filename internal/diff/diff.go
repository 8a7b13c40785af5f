// Package diff parses the staged unified diff for a single file, exposing the
// lines this commit adds so evaluators can bound their work to changed code.
package diff

import (
	"fmt"
	"strings"
)

type Line struct {
	Number  int
	Content string
}

// FileDiff is the staged diff for one file.
type FileDiff struct {
	Path       string
	AddedLines []Line
	Raw        string
	NewFile    bool
}

// Parse reads a single-file unified diff. An empty diff is treated as a
// brand-new file, per the convention that files absent from the index diff
// have every line newly added.
func Parse(path, diffText string) (*FileDiff, error) {
	d := &FileDiff{Path: path, Raw: diffText}
	if strings.TrimSpace(diffText) == "" {
		d.NewFile = true
		return d, nil
	}

	newLine := 0
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "new file mode") {
			d.NewFile = true
			continue
		}
		if strings.HasPrefix(line, "@@") {
			start, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			newLine = start
			continue
		}
		if newLine == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			d.AddedLines = append(d.AddedLines, Line{Number: newLine, Content: strings.TrimPrefix(line, "+")})
			newLine++
		case strings.HasPrefix(line, "-"):
		case strings.HasPrefix(line, "\\"):
		default:
			newLine++
		}
	}
	return d, nil
}

// AddedText joins the added lines into one searchable block.
func (d *FileDiff) AddedText() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	for _, l := range d.AddedLines {
		sb.WriteString(l.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LineAdded reports whether the given working-tree line number was added by
// this commit. Every line of a new file counts as added.
func (d *FileDiff) LineAdded(n int) bool {
	if d == nil || d.NewFile {
		return true
	}
	for _, l := range d.AddedLines {
		if l.Number == n {
			return true
		}
	}
	return false
}

// ContainsAdded reports whether any added line contains substr. New files
// match against nothing here; callers check NewFile first.
func (d *FileDiff) ContainsAdded(substr string) bool {
	if d == nil {
		return false
	}
	for _, l := range d.AddedLines {
		if strings.Contains(l.Content, substr) {
			return true
		}
	}
	return false
}

func parseHunkHeader(line string) (int, error) {
	for _, part := range strings.Split(line, " ") {
		if !strings.HasPrefix(part, "+") {
			continue
		}
		rangePart := strings.TrimPrefix(part, "+")
		values := strings.Split(rangePart, ",")
		if len(values) == 0 || values[0] == "" {
			break
		}
		start := 0
		for _, r := range values[0] {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("invalid hunk header: %s", line)
			}
			start = start*10 + int(r-'0')
		}
		return start, nil
	}
	return 0, fmt.Errorf("invalid hunk header: %s", line)
}
