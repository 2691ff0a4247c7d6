// Package diff turns unified diff text into (file, line, text) coordinates
// for every added line.
package diff

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags a raw diff line.
type Kind int

const (
	Other Kind = iota
	FileMarker
	HunkHeader
	Added
	Removed
	Context
)

func (k Kind) String() string {
	switch k {
	case FileMarker:
		return "file"
	case HunkHeader:
		return "hunk"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Context:
		return "context"
	}
	return "other"
}

var hunkRe = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Classify reports the kind of a single diff line (without its newline),
// read outside a hunk body. A "@@" line that does not parse as a hunk
// header is Other. Inside a hunk AddedLines classifies by the first byte
// alone, so "+++ x" there is an added line.
func Classify(line string) Kind {
	switch {
	case strings.HasPrefix(line, "+++ "), line == "+++":
		return FileMarker
	case strings.HasPrefix(line, "@@"):
		if _, ok := ParseHunkStart(line); ok {
			return HunkHeader
		}
		return Other
	case strings.HasPrefix(line, "--- "), line == "---":
		return Other
	case strings.HasPrefix(line, "+"):
		return Added
	case strings.HasPrefix(line, "-"):
		return Removed
	case strings.HasPrefix(line, " "):
		return Context
	}
	return Other
}

// ParseHunkStart returns the new-file start line "a" of "@@ -x,y +a,b @@".
func ParseHunkStart(line string) (int, bool) {
	h, ok := parseHunk(line)
	return h.start, ok
}

// hunk is a parsed header. Omitted counts are 1.
type hunk struct {
	start, oldCount, newCount int
}

func parseHunk(line string) (hunk, bool) {
	m := hunkRe.FindStringSubmatch(line)
	if m == nil {
		return hunk{}, false
	}
	h := hunk{oldCount: 1, newCount: 1}
	var err error
	if h.start, err = strconv.Atoi(m[2]); err != nil {
		return hunk{}, false
	}
	if m[1] != "" {
		if h.oldCount, err = strconv.Atoi(m[1]); err != nil {
			return hunk{}, false
		}
	}
	if m[3] != "" {
		if h.newCount, err = strconv.Atoi(m[3]); err != nil {
			return hunk{}, false
		}
	}
	return h, true
}

// bodyKind classifies a line while the current hunk still owes old or new
// lines. A prefix is read as body only while its side has lines left, so a
// "+++ " line after the last owed new line is a file marker again. Any other
// line ends the hunk (ok is false), keeping overstated counts harmless.
func bodyKind(line string, oldLeft, newLeft int) (kind Kind, ok bool) {
	if line == "" {
		return Other, false
	}
	switch {
	case line[0] == '+' && newLeft > 0:
		return Added, true
	case line[0] == '-' && oldLeft > 0:
		return Removed, true
	case line[0] == ' ':
		return Context, true
	case line[0] == '\\':
		return Other, true
	}
	return Classify(line), false
}

// Line is one added line: the new-file path, its 1-based number in the new
// file and its text without the leading '+'.
type Line struct {
	File   string
	Number int
	Text   string
}

// markerPath extracts the path of a "+++ " line. "b/" is stripped and
// /dev/null (a deleted file) yields "".
func markerPath(line string) string {
	p := strings.TrimSpace(strings.TrimPrefix(line, "+++"))
	// git appends a tab and timestamp in some modes
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	if p == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(p, "b/")
}

// AddedLines yields every added line of a unified diff in input order.
// The sequence is computed lazily on each iteration and holds no state
// between iterations.
//
// Added lines before the first hunk header of a file keep the last known
// line number (0 for a fresh file). Text without any "+++" marker yields
// lines with an empty File.
func AddedLines(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		file := ""
		n := 0
		// lines still owed by the current hunk, per side
		oldLeft, newLeft := 0, 0
		for raw := range strings.Lines(text) {
			line := trimEOL(raw)
			kind := Classify(line)
			if oldLeft > 0 || newLeft > 0 {
				var inBody bool
				if kind, inBody = bodyKind(line, oldLeft, newLeft); !inBody {
					oldLeft, newLeft = 0, 0
				}
			}
			switch kind {
			case FileMarker:
				file = markerPath(line)
				n = 0
			case HunkHeader:
				h, _ := parseHunk(line)
				n = h.start - 1
				oldLeft, newLeft = h.oldCount, h.newCount
			case Removed:
				oldLeft = max(oldLeft-1, 0)
			case Context:
				n++
				oldLeft, newLeft = max(oldLeft-1, 0), max(newLeft-1, 0)
			case Added:
				n++
				newLeft = max(newLeft-1, 0)
				if !yield(Line{File: file, Number: n, Text: line[1:]}) {
					return
				}
			}
		}
	}
}

// ContentLines yields every line of plain text as if it were added,
// numbered from 1, all attributed to file.
func ContentLines(text, file string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		n := 0
		for raw := range strings.Lines(text) {
			n++
			if !yield(Line{File: file, Number: n, Text: trimEOL(raw)}) {
				return
			}
		}
	}
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
