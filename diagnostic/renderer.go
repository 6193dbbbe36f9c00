// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, w)
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	sevColor := p.boldRed
	switch d.Severity {
	case SeverityWarning:
		sevColor = p.yellow
	case SeverityNote:
		sevColor = p.boldCyan
	}
	ew.printf("%s%s%s%s: %s%s%s\n", sevColor, p.bold, d.Severity, p.reset, p.bold, d.Message, p.reset)

	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}
	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderError converts err with FromError and writes it to w.  Additional
// notes are appended to the diagnostic.
func (r *Renderer) RenderError(w io.Writer, err error, notes ...string) error {
	d := FromError(err)
	d.Notes = append(d.Notes, notes...)
	return r.Render(w, d)
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter captures the first write error and skips subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	loc := span.File
	switch {
	case span.Line > 0 && span.Col > 0:
		loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	case span.Line > 0:
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
	}
	ew.printf("  %s-->%s %s\n", p.boldBlue, p.reset, loc)

	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}

	lineNum := strconv.Itoa(span.Line)
	gutter := strings.Repeat(" ", len(lineNum))
	ew.printf(" %s%s |%s\n", p.boldBlue, gutter, p.reset)
	ew.printf(" %s%s |%s  %s\n", p.boldBlue, lineNum, p.reset, expandTabs(source))

	col := span.Col
	if col <= 0 {
		col = 1
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = tokenEnd(source, col)
	}
	if endCol < col {
		endCol = col
	}
	indent := 0
	if col-1 <= len(source) {
		indent = len(expandTabs(source[:col-1]))
	}
	ew.printf(" %s%s |%s  %s%s%s%s", p.boldBlue, gutter, p.reset,
		strings.Repeat(" ", indent), p.boldRed, strings.Repeat("^", endCol-col+1), p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", p.boldRed, span.Label, p.reset)
	}
	ew.printf("\n %s%s |%s\n", p.boldBlue, gutter, p.reset)
}

func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	read := r.SourceReader
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(file)
	if err != nil {
		return "", false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for i := 1; scanner.Scan(); i++ {
		if i == line {
			return scanner.Text(), true
		}
	}
	return "", false
}

// tokenEnd returns the 1-based column of the last character of the token
// starting at col.
func tokenEnd(source string, col int) int {
	if col > len(source) {
		return col
	}
	end := col - 1
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if strings.ContainsRune(" \t,()[]{}", ch) {
			break
		}
		end += size
	}
	if end == col-1 {
		return col
	}
	return end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
