// Package parser scans AsciiDoc source and drives a builder.Builder with the
// structural events it finds. It covers the commonly used block and inline
// grammar; constructs it does not know are kept as paragraph text.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgallion1/adocgest/internal/builder"
	"github.com/dgallion1/adocgest/internal/doctree"
	"github.com/dgallion1/adocgest/internal/variables"
)

// Options controls one parse.
type Options struct {
	// Legacy runs NormalizeLegacy over the source before scanning.
	Legacy bool

	// Protected names attributes supplied by the caller. Attribute entries
	// in the document do not override them.
	Protected map[string]bool

	// Nested converts the content of an "a" style table cell as an
	// independent, fully rendered document. When nil such cells are parsed
	// as plain paragraphs.
	Nested func(src string) (*doctree.Tree, error)
}

// Parser holds configuration only and may be shared between goroutines.
type Parser struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Parser{opts: opts, log: log}
}

// Parse reads the whole document from r and builds it into b.
func (p *Parser) Parse(r io.Reader, b *builder.Builder) error {
	lines, err := readLines(r)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if p.opts.Legacy {
		lines = strings.Split(NormalizeLegacy(strings.Join(lines, "\n")), "\n")
	}

	s := &state{
		p:    p,
		b:    b,
		t:    b.Tree(),
		vars: b.Vars(),
	}
	s.inl = &inlineScanner{s: s}

	rd := &lineReader{lines: lines}
	if err := s.header(rd); err != nil {
		return err
	}
	if err := s.blocks(rd); err != nil {
		return err
	}
	b.FlushText()
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// lineReader walks a slice of lines. Delimited blocks get a reader over
// their own content.
type lineReader struct {
	lines []string
	pos   int
}

func (r *lineReader) done() bool { return r.pos >= len(r.lines) }

func (r *lineReader) peek() string {
	if r.done() {
		return ""
	}
	return r.lines[r.pos]
}

func (r *lineReader) next() string {
	l := r.peek()
	r.pos++
	return l
}

// lineNo is the 1-based position of the next line, for error messages.
func (r *lineReader) lineNo() int { return r.pos + 1 }

func (r *lineReader) skipBlank() {
	for !r.done() && strings.TrimSpace(r.peek()) == "" {
		r.pos++
	}
}

// state is the per-document scanning state.
type state struct {
	p    *Parser
	b    *builder.Builder
	t    *doctree.Tree
	vars *variables.Store
	inl  *inlineScanner

	// pending block title from a ".Title" line
	title    string
	hasTitle bool

	listDepth int
}
