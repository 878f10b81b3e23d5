// Package display prints newsroom runs to a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/graph"
)

// Banner is the opening line of every session.
const Banner = "The AI Newsroom is Open..."

// Completed is printed when a run is over, whatever its outcome.
const Completed = "Process Completed."

// Options configure a Printer.
type Options struct {
	// Plain disables colours and Markdown rendering.
	Plain bool
	// WordWrap is the Markdown wrap width. Zero keeps glamour's default.
	WordWrap int
	// Render replaces the glamour renderer, mainly for tests.
	Render func(markdown string) (string, error)
}

// Printer writes run steps in a human readable form.
type Printer struct {
	w       io.Writer
	plain   bool
	profile termenv.Profile
	render  func(string) (string, error)
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, optFns ...func(o *Options)) *Printer {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	p := &Printer{w: w, plain: opts.Plain, profile: termenv.Ascii, render: opts.Render}
	if p.plain {
		p.render = nil
		return p
	}

	p.profile = termenv.ColorProfile()
	if p.render == nil {
		p.render = newRenderer(opts.WordWrap)
	}
	return p
}

func newRenderer(wrap int) func(string) (string, error) {
	ropts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if wrap > 0 {
		ropts = append(ropts, glamour.WithWordWrap(wrap))
	}
	r, err := glamour.NewTermRenderer(ropts...)
	if err != nil {
		return nil
	}
	return r.Render
}

func (p *Printer) color(s, hex string) string {
	if p.plain {
		return s
	}
	return termenv.String(s).Foreground(p.profile.Color(hex)).Bold().String()
}

// PrintBanner writes the opening banner.
func (p *Printer) PrintBanner() {
	fmt.Fprintln(p.w, p.color(Banner, "#818cf8"))
}

// Prompt writes a question without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprint(p.w, p.color(text, "#a78bfa"))
}

// PrintStep writes one merged step: the appended message, if any, and the
// routing decision, if the step set one. Writer messages are rendered as
// Markdown.
func (p *Printer) PrintStep(s graph.Step) {
	fmt.Fprintln(p.w)
	if n := len(s.Update.Messages); n > 0 {
		m := s.Update.Messages[n-1]
		fmt.Fprintln(p.w, p.color("Message:", senderColor(m.Sender)))
		if m.Sender == core.SenderWriter {
			fmt.Fprintln(p.w, p.Markdown(m.Content))
		} else {
			fmt.Fprintln(p.w, m.Content)
		}
	}
	if s.Update.Directive != nil {
		fmt.Fprintf(p.w, "%s %s\n", p.color("Decision:", "#fb7185"), s.Update.Directive.String())
	}
}

// Markdown renders text, falling back to the raw text when rendering is
// disabled or fails.
func (p *Printer) Markdown(text string) string {
	if p.render == nil {
		return text
	}
	out, err := p.render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Notice writes a highlighted one-line notice.
func (p *Printer) Notice(format string, args ...any) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.color(fmt.Sprintf(format, args...), "#f472b6"))
}

// PrintCompleted writes the completion marker.
func (p *Printer) PrintCompleted() {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.color(Completed, "#818cf8"))
}

func senderColor(s core.Sender) string {
	switch s {
	case core.SenderResearcher:
		return "#c084fc"
	case core.SenderWriter:
		return "#e879f9"
	default:
		return "#a78bfa"
	}
}
