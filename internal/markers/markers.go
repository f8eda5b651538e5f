// Package markers replaces generated regions of text files. A region is the
// text between a begin and an end marker line; the marker lines themselves
// are preserved so the region can be regenerated.
package markers

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Region names a pair of marker lines. A line is a marker when its trimmed
// content equals Begin or End.
type Region struct {
	Begin string
	End   string
}

// GoRegion returns the region delimited by "// BEGIN <name>" and "// END <name>".
func GoRegion(name string) Region {
	return Region{Begin: "// BEGIN " + name, End: "// END " + name}
}

// MarkdownRegion returns the region delimited by "<!-- BEGIN <name> -->" and
// "<!-- END <name> -->".
func MarkdownRegion(name string) Region {
	return Region{Begin: "<!-- BEGIN " + name + " -->", End: "<!-- END " + name + " -->"}
}

// Inject replaces the lines between the markers of region with content.
// Content gets a trailing newline when it has none, so injecting the same
// content twice yields identical output.
func Inject(doc string, region Region, content string) (string, error) {
	lines := strings.SplitAfter(doc, "\n")

	begin, err := markerLine(lines, region.Begin)
	if err != nil {
		return "", err
	}
	end, err := markerLine(lines, region.End)
	if err != nil {
		return "", err
	}
	if end < begin {
		return "", errors.Newf("marker %q appears before %q", region.End, region.Begin)
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	var b strings.Builder
	b.Grow(len(doc) + len(content))
	for _, line := range lines[:begin+1] {
		b.WriteString(line)
	}
	if !strings.HasSuffix(lines[begin], "\n") {
		b.WriteString("\n")
	}
	b.WriteString(content)
	for _, line := range lines[end:] {
		b.WriteString(line)
	}
	return b.String(), nil
}

// Extract returns the current content between the markers of region.
func Extract(doc string, region Region) (string, error) {
	lines := strings.SplitAfter(doc, "\n")

	begin, err := markerLine(lines, region.Begin)
	if err != nil {
		return "", err
	}
	end, err := markerLine(lines, region.End)
	if err != nil {
		return "", err
	}
	if end < begin {
		return "", errors.Newf("marker %q appears before %q", region.End, region.Begin)
	}
	return strings.Join(lines[begin+1:end], ""), nil
}

func markerLine(lines []string, marker string) (int, error) {
	found := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != marker {
			continue
		}
		if found >= 0 {
			return 0, errors.Newf("marker %q appears more than once (lines %d and %d)", marker, found+1, i+1)
		}
		found = i
	}
	if found < 0 {
		return 0, errors.Newf("marker %q not found", marker)
	}
	return found, nil
}

// InjectFile injects content into the file at path and reports whether the
// file changed. An unchanged file is not rewritten.
func InjectFile(path string, region Region, content string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}

	out, err := Inject(string(data), region, content)
	if err != nil {
		return false, errors.Wrapf(err, "in %s", path)
	}
	if bytes.Equal(data, []byte(out)) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", path)
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, errors.Wrapf(err, "writing %s", path)
	}
	return true, nil
}
