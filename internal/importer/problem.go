package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/piwi3910/BlockPack/internal/model"
)

// ProblemFile is a parsed plain text problem together with non-fatal notes.
type ProblemFile struct {
	Problem  model.Problem
	Warnings []string
}

// ReadProblem reads a problem in the plain text format:
//
//	<block count>
//	<space width> <space height>
//	<block width> <block height>
//	...
//
// The problem is named after the file's base name.
func ReadProblem(path string) (ProblemFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return ProblemFile{}, model.WrapError(model.ErrCodeInvalidInput, err, "failed to open %s", path)
	}
	defer f.Close()
	return ParseProblem(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// ParseProblem parses the plain text problem format from r. Blank lines are
// ignored. A declared count that disagrees with the number of block lines is
// reported as a warning; the block lines win.
func ParseProblem(r io.Reader, name string) (ProblemFile, error) {
	var lines []numberedLine
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, numberedLine{num: lineNum, text: text})
	}
	if err := scanner.Err(); err != nil {
		return ProblemFile{}, model.WrapError(model.ErrCodeInvalidInput, err, "failed to read %s", name)
	}
	if len(lines) < 2 {
		return ProblemFile{}, model.NewError(model.ErrCodeInvalidInput, "%s: expected a block count and a space size", name)
	}

	declared, err := strconv.Atoi(lines[0].text)
	if err != nil || declared < 0 {
		return ProblemFile{}, model.NewError(model.ErrCodeInvalidInput, "%s line %d: invalid block count %q", name, lines[0].num, lines[0].text)
	}

	w, h, err := lines[1].pair()
	if err != nil {
		return ProblemFile{}, model.WrapError(model.ErrCodeInvalidInput, err, "%s line %d: invalid space size", name, lines[1].num)
	}

	out := ProblemFile{Problem: model.Problem{Name: name, Space: model.Space{Width: w, Height: h}}}
	for i, l := range lines[2:] {
		bw, bh, err := l.pair()
		if err != nil {
			return ProblemFile{}, model.WrapError(model.ErrCodeInvalidInput, err, "%s line %d: invalid block size", name, l.num)
		}
		out.Problem.Blocks = append(out.Problem.Blocks, model.Block{ID: i, Width: bw, Height: bh})
	}

	if declared != len(out.Problem.Blocks) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: header declares %d blocks, found %d", name, declared, len(out.Problem.Blocks)))
	}
	if err := out.Problem.Validate(); err != nil {
		return ProblemFile{}, err
	}
	return out, nil
}

// WriteProblem writes p in the plain text format.
func WriteProblem(w io.Writer, p model.Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d %d\n", len(p.Blocks), p.Space.Width, p.Space.Height)
	for _, b := range p.Blocks {
		fmt.Fprintf(bw, "%d %d\n", b.Width, b.Height)
	}
	return bw.Flush()
}

type numberedLine struct {
	num  int
	text string
}

func (l numberedLine) pair() (int, int, error) {
	fields := strings.Fields(l.text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two integers, got %q", l.text)
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad width %q: %w", fields[0], err)
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad height %q: %w", fields[1], err)
	}
	return a, b, nil
}

// FindProblems returns the files in dir matching pattern, sorted by name.
// The default batch naming is C<group>_<variant>, e.g. C1_1 … C7_3.
func FindProblems(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "C*_*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, model.WrapError(model.ErrCodeInvalidInput, err, "bad pattern %q", pattern)
	}
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// BatchNames returns the C<group>_<variant> names for groups 1..groups and
// variants 1..variants, in group-major order.
func BatchNames(groups, variants int) []string {
	var names []string
	for g := 1; g <= groups; g++ {
		for v := 1; v <= variants; v++ {
			names = append(names, fmt.Sprintf("C%d_%d", g, v))
		}
	}
	return names
}
