package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"jobtrack/internal/model"
	"jobtrack/internal/statusutil"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style + wrap width. WithAutoStyle is avoided because its terminal
	// queries can block.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if styleName == "light" {
		cfg = styles.LightStyleConfig
	}
	heading := mdColor(colorSurfaceFg, styleName)
	cfg.Heading.Color = heading
	cfg.H1.Color = heading
	cfg.H2.Color = heading
	cfg.H3.Color = heading
	link := mdColor(colorAccent, styleName)
	cfg.Link.Color = link
	cfg.LinkText.Color = link
	cfg.Text.Color = mdColor(colorSurfaceFg, styleName)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}

func mdColor(c lipgloss.AdaptiveColor, styleName string) *string {
	v := c.Dark
	if styleName == "light" {
		v = c.Light
	}
	return &v
}

// ApplicationMarkdown is the markdown document used by the detail pane and
// `apps show --render`.
func ApplicationMarkdown(a model.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Company)
	fmt.Fprintf(&b, "**%s**\n\n", a.Position)
	fmt.Fprintf(&b, "- Status: %s\n", statusutil.Label(a.Status))
	fmt.Fprintf(&b, "- Salary: %s-%s\n",
		strconv.FormatFloat(a.SalaryMin, 'f', -1, 64),
		strconv.FormatFloat(a.SalaryMax, 'f', -1, 64))
	if !a.CreatedOn.IsZero() {
		fmt.Fprintf(&b, "- Applied: %s\n", a.CreatedOn.Local().Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- ID: `%s`\n", a.ID)
	if notes := strings.TrimSpace(a.Notes); notes != "" {
		b.WriteString("\n## Notes\n\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}
	return b.String()
}

func RenderApplication(a model.Application, width int) string {
	out := renderMarkdown(ApplicationMarkdown(a), width)
	if out == "" {
		return ""
	}
	return out + "\n"
}
