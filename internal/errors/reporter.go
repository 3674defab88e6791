package errors

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity attached to a reported diagnostic.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Reporter formats translator diagnostics for the terminal.
type Reporter struct {
	out  io.Writer
	file string
}

func NewReporter(out io.Writer, file string) *Reporter {
	return &Reporter{out: out, file: file}
}

// Report writes one diagnostic with its level color and source lines.
func (r *Reporter) Report(level Level, message string, lines []int) {
	levelColor := r.levelColor(level)
	dim := color.New(color.Faint).SprintFunc()

	location := ""
	if loc := formatLines(lines); loc != "" {
		location = fmt.Sprintf(" %s %s:%s", dim("-->"), r.file, loc)
	}
	fmt.Fprintf(r.out, "%s: %s%s\n", levelColor(string(level)), message, location)
}

// ReportError writes a structured translation error, including its code.
func (r *Reporter) ReportError(err *TranslationError) {
	levelColor := r.levelColor(LevelError)
	dim := color.New(color.Faint).SprintFunc()

	location := ""
	if err.Line > 0 {
		location = fmt.Sprintf(" %s %s:%d", dim("-->"), r.file, err.Line)
	}
	if err.Code != "" {
		fmt.Fprintf(r.out, "%s[%s]: %s%s\n",
			levelColor(string(LevelError)), err.Code, err.Message, location)
		return
	}
	fmt.Fprintf(r.out, "%s: %s%s\n", levelColor(string(LevelError)), err.Message, location)
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case LevelWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func formatLines(lines []int) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l > 0 {
			parts = append(parts, strconv.Itoa(l))
		}
	}
	return strings.Join(parts, ",")
}
