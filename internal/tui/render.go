package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"tiger-client/internal/model"
	"tiger-client/internal/selector"
)

const defaultWidth = 100

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	return xansi.Truncate(s, w, "…")
}

func (m inspector) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	st := m.r.Gateway.Store().Snapshot()

	var b strings.Builder
	b.WriteString(m.renderTabs(st, width))
	b.WriteString("\n")

	if st.Error != nil {
		b.WriteString(renderErrorPanel(st.Error, width))
		b.WriteString("\n")
	}

	if m.view.CurrentDocument == nil {
		b.WriteString(styleMuted().Render("no open document (ctrl+n new, ctrl+o open)"))
		b.WriteString("\n")
	} else {
		colW := width/2 - 4
		left := lipgloss.JoinVertical(lipgloss.Left,
			stylePanel(colW).Render(renderAnimations(m.view, colW)),
			stylePanel(colW).Render(renderFrames(m.view, colW)),
		)
		right := lipgloss.JoinVertical(lipgloss.Left,
			stylePanel(colW).Render(renderTimeline(m.view, colW)),
			stylePanel(colW).Render(renderHitboxes(m.view, colW)),
		)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
	}

	b.WriteString(truncate(m.renderStatus(), width))
	b.WriteString("\n")

	if m.prompt != nil {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.shortcuts {
		b.WriteString(m.renderShortcuts(width))
	}
	b.WriteString(m.help.View(m.local))
	return b.String()
}

func (m inspector) renderTabs(st *model.AppState, width int) string {
	parts := []string{styleAccent().Bold(true).Render("tiger")}
	for _, d := range st.Documents {
		name := d.Name
		if d.HasUnsavedChanges {
			name += "*"
		}
		if st.CurrentDocumentPath != nil && *st.CurrentDocumentPath == d.Path {
			parts = append(parts, styleSelected().Render(" "+name+" "))
		} else {
			parts = append(parts, styleMuted().Render(" "+name+" "))
		}
	}
	return truncate(strings.Join(parts, " "), width)
}

func renderErrorPanel(e *model.UserFacingError, width int) string {
	body := styleError().Render(e.Title) + "\n" + e.Summary
	if e.Details != "" {
		body += "\n" + styleMuted().Render(e.Details)
	}
	body += "\n" + styleMuted().Render(":acknowledge_error to dismiss")
	return stylePanel(width - 2).Render(body)
}

func renderAnimations(v *selector.View, w int) string {
	lines := []string{styleHeading().Render("Animations")}
	current := ""
	if v.CurrentAnimation != nil {
		current = v.CurrentAnimation.Name
	}
	for _, a := range v.SortedAnimations {
		if a.FilteredOut {
			continue
		}
		lines = append(lines, row(a.Name, a.Name == current, a.Selected, w))
	}
	if len(lines) == 1 {
		lines = append(lines, styleMuted().Render("none"))
	}
	return strings.Join(lines, "\n")
}

func renderFrames(v *selector.View, w int) string {
	title := "Frames"
	if v.AnyFramesMissing {
		title += styleError().Render(" (missing files)")
	}
	lines := []string{styleHeading().Render(title)}
	for _, f := range v.VisibleFrames {
		label := f.Name
		if f.MissingOnDisk {
			label = "! " + label
		}
		lines = append(lines, row(label, false, f.Selected, w))
	}
	if len(lines) == 1 {
		lines = append(lines, styleMuted().Render("none"))
	}
	return strings.Join(lines, "\n")
}

func renderTimeline(v *selector.View, w int) string {
	d := v.CurrentDocument
	state := "paused"
	if d.TimelineIsPlaying {
		state = "playing"
	}
	head := fmt.Sprintf("Timeline  %s  %dms", state, d.TimelineClockMillis)
	lines := []string{styleHeading().Render(head)}
	if v.CurrentAnimation == nil {
		return strings.Join(append(lines, styleMuted().Render("no animation")), "\n")
	}
	dir := "?"
	if d.CurrentSequenceDirection != nil {
		dir = string(*d.CurrentSequenceDirection)
	}
	loop := ""
	if v.CurrentAnimation.IsLooping {
		loop = " (loop)"
	}
	lines = append(lines, truncate(v.CurrentAnimation.Name+" / "+dir+loop, w))
	if v.CurrentSequence == nil {
		return strings.Join(append(lines, styleMuted().Render("no sequence")), "\n")
	}
	for i, k := range v.CurrentSequence.Keyframes {
		cur := d.CurrentKeyframeIndex != nil && *d.CurrentKeyframeIndex == i
		label := fmt.Sprintf("%2d %-12s %5dms @%d", i, k.Name, k.DurationMillis, k.StartTimeMillis)
		lines = append(lines, row(label, cur, k.Selected, w))
	}
	return strings.Join(lines, "\n")
}

func renderHitboxes(v *selector.View, w int) string {
	lines := []string{styleHeading().Render("Hitboxes")}
	if v.CurrentKeyframe == nil || len(v.CurrentKeyframe.Hitboxes) == 0 {
		return strings.Join(append(lines, styleMuted().Render("none")), "\n")
	}
	for _, h := range v.CurrentKeyframe.Hitboxes {
		label := fmt.Sprintf("%-10s %d,%d %dx%d", h.Name, h.TopLeft[0], h.TopLeft[1], h.Size[0], h.Size[1])
		lines = append(lines, row(label, false, h.Selected, w))
	}
	return strings.Join(lines, "\n")
}

// row renders one list entry: ▸ marks the current item, selection is
// highlighted.
func row(label string, current, selected bool, w int) string {
	mark := "  "
	if current {
		mark = "▸ "
	}
	s := truncate(mark+label, w)
	if selected {
		return styleSelected().Render(s)
	}
	return s
}

func (m inspector) renderStatus() string {
	var parts []string
	if m.r.Gateway.Stale() {
		parts = append(parts, styleError().Render("stale (:get_state to resync)"))
	}
	if d := m.view.CurrentDocument; d != nil {
		for _, k := range m.view.CurrentSessions {
			parts = append(parts, styleAccent().Render(string(k)))
		}
		if m.r.Sessions != nil {
			if l, ok := m.r.Sessions.Local(d.Path); ok && !l.Confirmed {
				parts = append(parts, stylePending().Render(string(l.Kind)+" (pending)"))
			}
		}
		if d.UndoEffect != nil {
			parts = append(parts, styleMuted().Render("undo: "+*d.UndoEffect))
		}
	}
	if m.r.Textures != nil {
		if n := len(m.r.Textures.Entries()); n > 0 {
			parts = append(parts, styleMuted().Render(fmt.Sprintf("textures invalidated: %d", n)))
		}
	}
	if m.r.Templates != nil {
		if n := len(m.r.Templates.Entries()); n > 0 {
			parts = append(parts, styleMuted().Render(fmt.Sprintf("templates invalidated: %d", n)))
		}
	}
	if m.pending > 0 {
		parts = append(parts, stylePending().Render(fmt.Sprintf("%d in flight", m.pending)))
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, styleError().Render(m.status))
		} else {
			parts = append(parts, m.status)
		}
	}
	return strings.Join(parts, "  ")
}

func (m inspector) renderShortcuts(width int) string {
	var lines []string
	for _, e := range m.r.Keys.Entries() {
		lines = append(lines, truncate(fmt.Sprintf("%-18s %s", e.Chord.String(), e.Binding.Help), width/2-2))
	}
	half := (len(lines) + 1) / 2
	left := strings.Join(lines[:half], "\n")
	right := strings.Join(lines[half:], "\n")
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(width/2).Render(left),
		right,
	) + "\n"
}
