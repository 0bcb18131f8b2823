package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/tada/internal/model"
)

func withTheme(t *testing.T, name string) {
	t.Helper()
	prev := Current().Name
	SetTheme(name)
	t.Cleanup(func() { SetTheme(prev) })
}

func TestProgressBar(t *testing.T) {
	withTheme(t, "mono")

	assert.Equal(t, "..........   0%", ProgressBar(0, 0, 10))
	assert.Equal(t, "#####.....  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "########## 100%", ProgressBar(3, 3, 10))
	assert.Equal(t, ".....   0%", ProgressBar(0, 4, 1), "width is clamped to 5")
}

func TestSetTheme_UnknownFallsBackToClassic(t *testing.T) {
	withTheme(t, "sparkly")

	assert.Equal(t, "classic", Current().Name)
	assert.Equal(t, "☑", Current().BoxChecked)
}

func TestSummaryLine(t *testing.T) {
	withTheme(t, "mono")

	got := SummaryLine(model.Summary{ItemCount: 3, CompletedCount: 1, LastModified: "bogus"})
	assert.Equal(t, "3 items (1 completed) • bogus", got)

	got = SummaryLine(model.Summary{ItemCount: 1, LastModified: ""})
	assert.Equal(t, "1 item (0 completed) • never", got)
}

func TestChecklistLines_Mono(t *testing.T) {
	withTheme(t, "mono")
	c := model.Checklist{Title: "Trip", Items: []model.Item{{Text: "a", Completed: true}, {Text: "b"}}}

	lines := ChecklistLines(c)
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, " 1. [x] a")
	assert.Contains(t, out, " 2. [ ] b")
	assert.Contains(t, out, "Items: 2  Completed: 1")
}

func TestPanel_FramesWithBorder(t *testing.T) {
	withTheme(t, "mono")

	out := Panel([]string{"hello"})
	assert.True(t, strings.HasPrefix(out, "+"))
	assert.Contains(t, out, "| hello |")
}

func TestOKAndFail(t *testing.T) {
	withTheme(t, "mono")
	var buf bytes.Buffer

	OK(&buf, "saved")
	Fail(&buf, "nope")

	assert.Equal(t, "ok saved\nerror: nope\n", buf.String())
}

func TestMarkdown(t *testing.T) {
	c := model.Checklist{Title: "Ship *it*", Items: []model.Item{{Text: "tests", Completed: true}, {Text: "docs"}}}

	assert.Equal(t, "# Ship \\*it\\*\n\n- [x] tests\n- [ ] docs\n", Markdown(c))
	assert.Equal(t, "# e\n\n_No items._\n", Markdown(model.Checklist{Title: "e"}))
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	withTheme(t, "mono")

	out := RenderMarkdown(Markdown(model.Checklist{Title: "List", Items: []model.Item{{Text: "alpha"}}}), 60)
	assert.Contains(t, out, "alpha")
}
