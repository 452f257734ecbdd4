// Package catalog renders the hub's landing page: one card per registered
// game, a text filter and links to each game's source repository.
package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/jask/bdhub/internal/hub"
	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/theme"
)

const copyrightNote = "Games are adapted from their source repositories; copyright stays with each author."

type Option func(*View)

// WithOpener replaces the function used to open attribution links.
func WithOpener(open func(url string) error) Option {
	return func(v *View) {
		if open != nil {
			v.open = open
		}
	}
}

// WithSuggestDistance caps the edit distance for "did you mean" entries.
func WithSuggestDistance(n int) Option {
	return func(v *View) { v.list.maxDist = n }
}

// View is the catalog page. It is created fresh on every visit.
type View struct {
	list      *list
	input     textinput.Model
	filtering bool
	onSelect  func(id string)
	open      func(url string) error
	notice    string
	// offset is the first card on screen.
	offset int
}

var _ lifecycle.View = (*View)(nil)

// Render builds a catalog over descs. onSelect receives the chosen
// descriptor's id.
func Render(descs []hub.Descriptor, onSelect func(id string), opts ...Option) lifecycle.View {
	in := textinput.New()
	in.Placeholder = "filter games"
	in.Prompt = "/ "
	v := &View{
		list:     newList(descs, 0),
		input:    in,
		onSelect: onSelect,
		open:     browser.OpenURL,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.list.rebuild()
	return v
}

func (v *View) CapturingInput() bool { return v.filtering }

// Selected returns the id under the cursor.
func (v *View) Selected() (string, bool) {
	d, ok := v.list.current()
	return d.ID, ok
}

// Visible returns the ids currently shown, in order.
func (v *View) Visible() []string {
	var ids []string
	for _, d := range v.list.visible() {
		ids = append(ids, d.ID)
	}
	return ids
}

func (v *View) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.filtering {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		return nil
	}
	if v.filtering {
		return v.updateFilter(km)
	}
	switch km.String() {
	case "k", "up":
		v.list.up()
	case "j", "down":
		v.list.down()
	case "enter":
		v.choose()
	case "/":
		v.filtering = true
		v.notice = ""
		return v.input.Focus()
	case "esc":
		v.resetFilter()
	case "o":
		v.openSource()
	}
	return nil
}

func (v *View) updateFilter(km tea.KeyMsg) tea.Cmd {
	switch km.String() {
	case "esc":
		v.resetFilter()
		return nil
	case "enter":
		v.filtering = false
		v.input.Blur()
		return nil
	case "up":
		v.list.up()
		return nil
	case "down":
		v.list.down()
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(km)
	v.list.setQuery(v.input.Value())
	return cmd
}

func (v *View) resetFilter() {
	v.filtering = false
	v.input.Blur()
	v.input.SetValue("")
	v.list.setQuery("")
}

func (v *View) choose() {
	d, ok := v.list.current()
	if !ok || v.onSelect == nil {
		return
	}
	v.onSelect(d.ID)
}

func (v *View) openSource() {
	d, ok := v.list.current()
	if !ok || d.Source == nil || d.Source.URL == "" {
		v.notice = "no source link for this game"
		return
	}
	if err := v.open(d.Source.URL); err != nil {
		v.notice = fmt.Sprintf("could not open %s: %v", d.Source.URL, err)
		return
	}
	v.notice = "opened " + d.Source.URL
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	descStyle    = lipgloss.NewStyle().Foreground(theme.Text)
	tagStyle     = lipgloss.NewStyle().Foreground(theme.Teal)
	sourceStyle  = lipgloss.NewStyle().Foreground(theme.Muted).Italic(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(theme.Warning)
	mutedStyle   = lipgloss.NewStyle().Foreground(theme.Muted)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1)
	cardSelStyle = cardStyle.BorderForeground(theme.Focus)
)

func (v *View) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	var head, foot []string
	if v.filtering || v.input.Value() != "" {
		head = append(head, v.input.View())
	}
	if v.list.suggesting {
		head = append(head, noticeStyle.Render(fmt.Sprintf("No games match %q. Did you mean:", v.input.Value())))
	}

	visible := v.list.visible()
	if len(visible) == 0 {
		head = append(head, mutedStyle.Render("No games match this filter."))
	}
	cardW := max(10, width-2)
	cards := make([]string, len(visible))
	for i, d := range visible {
		style := cardStyle
		if i == v.list.cursor {
			style = cardSelStyle
		}
		cards[i] = style.Width(cardW).Render(renderCard(d))
	}
	if v.notice != "" {
		foot = append(foot, noticeStyle.Render(v.notice))
	}
	foot = append(foot, mutedStyle.Render(copyrightNote))

	lines := append(head, v.window(cards, height-len(head)-len(foot))...)
	lines = append(lines, foot...)
	for i, line := range lines {
		lines[i] = theme.TrimToWidth(line, width)
	}
	return theme.ClipHeight(strings.Join(lines, "\n"), height)
}

// window returns the card lines that fit in avail rows, scrolling by whole
// cards so the cursor card stays on screen.
func (v *View) window(cards []string, avail int) []string {
	if len(cards) == 0 {
		v.offset = 0
		return nil
	}
	heights := make([]int, len(cards))
	total := 0
	for i, c := range cards {
		heights[i] = lipgloss.Height(c)
		total += heights[i]
	}
	if total <= avail {
		v.offset = 0
		return strings.Split(strings.Join(cards, "\n"), "\n")
	}

	avail-- // scroll hint
	cur := v.list.cursor
	v.offset = min(v.offset, cur)
	span := 0
	for i := v.offset; i <= cur; i++ {
		span += heights[i]
	}
	for v.offset < cur && span > avail {
		span -= heights[v.offset]
		v.offset++
	}
	end, used := v.offset, 0
	for end < len(cards) {
		if end > cur && used+heights[end] > avail {
			break
		}
		used += heights[end]
		end++
	}

	out := strings.Split(strings.Join(cards[v.offset:end], "\n"), "\n")
	return append(out, mutedStyle.Render(fmt.Sprintf("↑ %d more · ↓ %d more", v.offset, len(cards)-end)))
}

func renderCard(d hub.Descriptor) string {
	title := d.Title
	if title == "" {
		title = d.ID
	}
	if d.Cover != "" {
		title = d.Cover + "  " + title
	}
	rows := []string{titleStyle.Render(title)}
	if d.Description != "" {
		rows = append(rows, descStyle.Render(d.Description))
	}
	if len(d.Tags) > 0 {
		rows = append(rows, tagStyle.Render(strings.Join(d.Tags, " · ")))
	}
	if d.Source != nil {
		rows = append(rows, sourceStyle.Render("from "+d.Source.Name))
	}
	return strings.Join(rows, "\n")
}
