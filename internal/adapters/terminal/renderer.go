// Package terminal renders session views and the document catalog for a
// color terminal.
package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

const barWidth = 20

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.Bold)
	mutedColor   = color.New(color.Faint)
	errorColor   = color.New(color.FgRed)
	barColor     = color.New(color.FgGreen)
	promptColor  = color.New(color.FgYellow)
)

// Renderer writes human readable output. Colors follow color.NoColor.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// View prints the answer, its sources and the evaluation bars.
func (r *Renderer) View(view entities.View) {
	st := view.State
	switch st.Status {
	case entities.StatusIdle:
		mutedColor.Fprintln(r.out, "No question asked yet.")
		return
	case entities.StatusSubmitting:
		mutedColor.Fprintf(r.out, "%s is thinking...\n", view.PersonaLabel)
		return
	}

	headingColor.Fprintf(r.out, "\n%s\n", view.PersonaLabel)
	if st.Status == entities.StatusFailed {
		errorColor.Fprintln(r.out, st.Answer)
	} else {
		fmt.Fprintln(r.out, st.Answer)
	}

	r.Sources(view.Resolved)
	r.Evaluation(view.Evaluation)
}

// Sources prints resolved sources. An empty list prints nothing.
func (r *Renderer) Sources(resolved []entities.ResolvedSource) {
	if len(resolved) == 0 {
		return
	}
	headingColor.Fprintln(r.out, "\nSources")
	for _, src := range resolved {
		if !src.Matched() {
			fmt.Fprintf(r.out, "  - %s ", src.Identifier)
			mutedColor.Fprintln(r.out, "(not in catalog)")
			continue
		}
		r.documentLine(*src.Document)
	}
}

// Evaluation prints one bar per indicator. Values the backend did not
// provide are labelled as such instead of drawing an empty bar.
func (r *Renderer) Evaluation(indicators []entities.Indicator) {
	if len(indicators) == 0 {
		return
	}
	headingColor.Fprintln(r.out, "\nResponse Evaluation")
	width := 0
	for _, ind := range indicators {
		if len(ind.Label) > width {
			width = len(ind.Label)
		}
	}
	for _, ind := range indicators {
		fmt.Fprintf(r.out, "  %-*s ", width, ind.Label)
		if !ind.Provided {
			mutedColor.Fprintln(r.out, "not provided")
			continue
		}
		filled := int(math.Round(ind.Value * barWidth))
		barColor.Fprint(r.out, strings.Repeat("#", filled))
		mutedColor.Fprint(r.out, strings.Repeat(".", barWidth-filled))
		fmt.Fprintf(r.out, " %3.0f%%\n", ind.Value*100)
	}
}

// Documents prints the catalog grouped by category.
func (r *Renderer) Documents(groups []entities.DocumentGroup) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		headingColor.Fprintln(r.out, g.Name)
		for _, d := range g.Documents {
			r.documentLine(d)
			if d.Excerpt != "" {
				mutedColor.Fprintf(r.out, "      %s\n", d.Excerpt)
			}
		}
	}
}

// SearchHits prints catalog search results, best first.
func (r *Renderer) SearchHits(query string, hits []ports.SearchHit) {
	if len(hits) == 0 {
		mutedColor.Fprintf(r.out, "No documents match %q.\n", query)
		return
	}
	headingColor.Fprintf(r.out, "Documents matching %q\n", query)
	for _, h := range hits {
		r.documentLine(h.Document)
	}
}

// Personas prints the selectable personas, marking the active one.
func (r *Renderer) Personas(active entities.Persona) {
	for _, p := range entities.Personas() {
		marker := " "
		if p == active {
			marker = "*"
		}
		fmt.Fprintf(r.out, "  %s %-16s %s\n", marker, p, p.Label())
	}
}

// Examples prints the numbered example questions.
func (r *Renderer) Examples() {
	for i, q := range entities.ExampleQuestions {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, q)
	}
}

// Prompt prints the chat prompt for the active persona.
func (r *Renderer) Prompt(persona entities.Persona) {
	promptColor.Fprintf(r.out, "[%s] > ", persona)
}

// Notice prints a one-line message.
func (r *Renderer) Notice(format string, args ...interface{}) {
	mutedColor.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) documentLine(d entities.Document) {
	fmt.Fprint(r.out, "  - ")
	titleColor.Fprint(r.out, d.Title)
	if d.Date != "" {
		fmt.Fprintf(r.out, ", %s", d.Date)
	}
	if authors := d.AuthorLine(); authors != "" {
		fmt.Fprintf(r.out, ". %s", authors)
	}
	mutedColor.Fprintf(r.out, " [%s]\n", d.Category.DisplayName())
}
