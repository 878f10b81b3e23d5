package model

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/tool"
)

// SearchOptions configure a SearchAugmented generator.
type SearchOptions struct {
	// Query derives the search query from a request. Defaults to the content
	// of the first user message, so retry nudges never become queries.
	Query func(Request) string
	// MaxResultChars bounds how much search text is folded into the
	// instruction. Zero keeps everything.
	MaxResultChars int
	// Heading introduces the search results inside the instruction.
	Heading string
	Logger  logging.Logger
}

// SearchAugmented wraps a Generator with a search tool. Every call first runs
// the search and folds the opaque result text into the instruction; the
// results are never parsed.
type SearchAugmented struct {
	base     Generator
	search   tool.Tool
	opts     SearchOptions
	splitter textsplitter.TextSplitter
	logger   logging.Logger
}

// NewSearchAugmented creates a search-augmented generator.
func NewSearchAugmented(base Generator, search tool.Tool, optFns ...func(o *SearchOptions)) *SearchAugmented {
	opts := SearchOptions{
		Query:          Request.FirstUserContent,
		MaxResultChars: 6000,
		Heading:        "Web search results",
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &SearchAugmented{base: base, search: search, opts: opts, logger: logging.OrNoOp(opts.Logger)}
	if opts.MaxResultChars > 0 {
		s.splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(opts.MaxResultChars),
			textsplitter.WithChunkOverlap(0),
		)
	}
	return s
}

// Generate implements Generator. A search failure is reported as a provider
// fault so the calling worker can retry.
func (s *SearchAugmented) Generate(ctx context.Context, req Request) (string, error) {
	query := strings.TrimSpace(s.opts.Query(req))
	if query == "" {
		s.logger.Warn("No search query derived from request, generating without search")
		return s.base.Generate(ctx, req)
	}

	results, err := s.search.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %q with %s: %w", query, s.search.Name(), err)
	}

	augmented := req
	augmented.Instruction = s.fold(req.Instruction, query, s.truncate(results))

	return s.base.Generate(ctx, augmented)
}

// Info implements Model by describing the wrapped generator.
func (s *SearchAugmented) Info() Info {
	info := Describe(s.base)
	info.Name = info.Name + "+" + s.search.Name()
	return info
}

func (s *SearchAugmented) fold(instruction, query, results string) string {
	var b strings.Builder
	b.WriteString(instruction)
	if instruction != "" {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s for %q:\n", s.opts.Heading, query)
	if strings.TrimSpace(results) == "" {
		b.WriteString("(no results)")
	} else {
		b.WriteString(results)
	}
	return b.String()
}

func (s *SearchAugmented) truncate(results string) string {
	if s.splitter == nil || utf8.RuneCountInString(results) <= s.opts.MaxResultChars {
		return results
	}
	chunks, err := s.splitter.SplitText(results)
	if err != nil || len(chunks) == 0 {
		s.logger.Debug("Falling back to rune truncation of search results", "error", err)
		return truncateRunes(results, s.opts.MaxResultChars)
	}
	return truncateRunes(chunks[0], s.opts.MaxResultChars)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
