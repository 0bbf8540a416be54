package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleScript = []string{
	`define e = Character("Eileen")`,
	`define config.name = _("My Game")`,
	`default player_name = "Alex"`,
	``,
	`label start:`,
	`    scene bg room`,
	`    e "Hello"`,
	`    e happy @ angry "I said \"hi\"" with vpunch`,
	`    "Just narration."`,
	`    $ mood = "calm"`,
	`    menu:`,
	`        "What now?"`,
	`        "Go left":`,
	`            e "Left it is."`,
	`        "Go right" if brave:`,
	`            jump right`,
	`    python:`,
	`        x = "not text"`,
	`        e "nope"`,
	`    return`,
	``,
	`screen main_menu():`,
	`    tag menu`,
	`    text "Welcome" size 40`,
	`    text _( "Title" )`,
	`    textbutton _("Start") action Start()`,
	`    label "Options"`,
	`    imagebutton auto "gui/x_%s.png" action Quit() alt "Quit game"`,
	`    add "logo.png" at truecenter`,
	`    e "not dialogue"`,
	``,
	`image eileen happy:`,
	`    "eileen_happy.png"`,
	``,
	`transform slide:`,
	`    xalign 0.0`,
}

type wantItem struct {
	line int
	kind ItemKind
	text string
}

func TestParseDirectItems(t *testing.T) {
	res := Parse(sampleScript, ModeDirect)

	want := []wantItem{
		{1, KindVariable, "My Game"},
		{2, KindVariable, "Alex"},
		{6, KindDialogue, "Hello"},
		{7, KindDialogue, `I said "hi"`},
		{8, KindNarration, "Just narration."},
		{9, KindVariable, "calm"},
		{11, KindNarration, "What now?"},
		{12, KindChoice, "Go left"},
		{13, KindDialogue, "Left it is."},
		{14, KindChoice, "Go right"},
		{23, KindScreenText, "Welcome"},
		{24, KindScreenText, "Title"},
		{25, KindScreenButton, "Start"},
		{26, KindScreenLabel, "Options"},
		{27, KindScreenProperty, "Quit game"},
	}

	require.Len(t, res.Items, len(want))
	for i, w := range want {
		got := res.Items[i]
		assert.Equal(t, w.line, got.Line, "item %d line", i)
		assert.Equal(t, w.kind, got.Kind, "item %d kind", i)
		assert.Equal(t, w.text, got.Text, "item %d text", i)
	}
	assert.Empty(t, res.Pairs)
	assert.Empty(t, res.Language)
}

func TestParseRoundTrip(t *testing.T) {
	res := Parse(sampleScript, ModeDirect)
	require.NotEmpty(t, res.Items)

	for _, it := range res.Items {
		line, err := it.Rebuild()
		require.NoError(t, err)
		assert.Equal(t, sampleScript[it.Line], line, "line %d (%s)", it.Line, it.Meta.Rule())
	}
}

func TestReconstructIsIdempotent(t *testing.T) {
	res := Parse(sampleScript, ModeDirect)

	for _, it := range res.Items {
		first, err := Reconstruct(it.Meta, `new "text"`)
		require.NoError(t, err)
		second, err := Reconstruct(it.Meta, `new "text"`)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestParseDialogueFields(t *testing.T) {
	res := Parse(sampleScript, ModeDirect)

	var it *Item
	for _, cand := range res.Items {
		if cand.Line == 7 {
			it = cand
		}
	}
	require.NotNil(t, it)
	assert.Equal(t, "e", it.Speaker)
	assert.Equal(t, "happy", it.Attributes)
	assert.Equal(t, "angry", it.TagAttribute)
	assert.Equal(t, "label start", it.Scope)
	assert.Equal(t, ContextLabel, it.Context)
}

func TestParseEndToEnd(t *testing.T) {
	lines := []string{"label start:", `    e "Hello"`, `    "Just narration."`}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 2)
	dialogue, narration := res.Items[0], res.Items[1]

	assert.Equal(t, KindDialogue, dialogue.Kind)
	assert.Equal(t, "e", dialogue.Speaker)
	assert.Equal(t, "Hello", dialogue.Text)
	assert.Equal(t, KindNarration, narration.Kind)
	assert.Equal(t, "Just narration.", narration.Text)

	dialogue.Text = "Hi"
	line, err := dialogue.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `    e "Hi"`, line)
}

func TestEditEscapesQuotes(t *testing.T) {
	res := Parse([]string{"label start:", `    e "Hello"`}, ModeDirect)
	require.Len(t, res.Items, 1)

	line, err := Reconstruct(res.Items[0].Meta, `She said "no"`)
	require.NoError(t, err)
	assert.Equal(t, `    e "She said \"no\""`, line)

	reparsed := Parse([]string{"label start:", line}, ModeDirect)
	require.Len(t, reparsed.Items, 1)
	assert.Equal(t, `She said "no"`, reparsed.Items[0].Text)
}

func TestContextScoping(t *testing.T) {
	lines := []string{
		"screen hud():",
		`    e "not dialogue"`,
		`    "not narration"`,
		`    text "Score"`,
		"label start:",
		`    text "not a screen statement"`,
		`    e "dialogue"`,
	}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 2)
	assert.Equal(t, KindScreenText, res.Items[0].Kind)
	assert.Equal(t, ContextScreen, res.Items[0].Context)
	assert.Equal(t, "screen hud", res.Items[0].Scope)
	assert.Equal(t, KindDialogue, res.Items[1].Kind)
	assert.Equal(t, 6, res.Items[1].Line)
}

func TestCommentDoesNotPopContext(t *testing.T) {
	lines := []string{
		"label start:",
		"    menu:",
		`        "Choice A":`,
		"# a comment at column zero",
		`            e "Still in the menu"`,
		`        "Choice B":`,
	}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 3)
	assert.Equal(t, KindDialogue, res.Items[1].Kind)
	assert.Equal(t, ContextMenu, res.Items[1].Context)
	assert.Equal(t, KindChoice, res.Items[2].Kind)
	assert.Equal(t, "Choice B", res.Items[2].Text)
}

func TestLabelNotOpenedInsideScreen(t *testing.T) {
	lines := []string{
		"screen prefs():",
		"    label start:",
		`    label _("Display")`,
	}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 1)
	assert.Equal(t, KindScreenLabel, res.Items[0].Kind)
	assert.Equal(t, ContextScreen, res.Items[0].Context)
}

func TestOpaqueBlocksYieldNothing(t *testing.T) {
	lines := []string{
		"init python:",
		`    e = "x"`,
		"label start:",
		"    python:",
		`        "narration-looking string"`,
		"style big_text:",
		`    font "DejaVuSans.ttf"`,
		"transform wobble:",
		`    "frame.png"`,
		"image side eileen:",
		`    "side.png"`,
	}
	res := Parse(lines, ModeDirect)
	assert.Empty(t, res.Items)
}

func TestQuotingFormPreserved(t *testing.T) {
	lines := []string{"screen s():", `    text _("Hi")`, `    textbutton "Go" action Return()`}
	res := Parse(lines, ModeDirect)
	require.Len(t, res.Items, 2)

	res.Items[0].Text = "Hello"
	line, err := res.Items[0].Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `    text _("Hello")`, line)

	res.Items[1].Text = "Leave"
	line, err = res.Items[1].Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `    textbutton "Leave" action Return()`, line)
}

func TestScreenPropertyRules(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    ItemKind
		text    string
		keyword string
	}{
		{"tooltip alone", `    tooltip "Opens the map"`, KindScreenProperty, "Opens the map", "tooltip"},
		{"input placeholder", `    input value v placeholder _("Your name")`, KindScreenProperty, "Your name", "placeholder"},
		{"button wins over its alt", `    textbutton "Save" action Save() alt "Save game"`, KindScreenButton, "Save", "textbutton"},
		{"bare button literal", `    button "Back" action Return()`, KindScreenButton, "Back", "button"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse([]string{"screen s():", tt.line}, ModeDirect)
			require.Len(t, res.Items, 1)
			it := res.Items[0]
			assert.Equal(t, tt.kind, it.Kind)
			assert.Equal(t, tt.text, it.Text)
			switch m := it.Meta.(type) {
			case PropertyMeta:
				assert.Equal(t, tt.keyword, m.Keyword)
			case ScreenMeta:
				assert.Equal(t, tt.keyword, m.Keyword)
			default:
				t.Fatalf("unexpected meta %T", it.Meta)
			}
			line, err := it.Rebuild()
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestNarrationRejections(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`    "Plain narration"`, true},
		{`    "Shaking" with vpunch`, true},
		{`    "Text" # trailing comment`, true},
		{`    "logo.png" at truecenter`, false},
		{`    "a", "b"`, false},
		{`    "key": value`, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := Parse([]string{"label start:", tt.line}, ModeDirect)
			assert.Equal(t, tt.want, len(res.Items) == 1)
		})
	}
}

func TestReservedSpeakerRejected(t *testing.T) {
	lines := []string{
		"label start:",
		`    play music "theme.ogg"`,
		`    voice "line01.ogg"`,
		`    show eileen happy`,
		`    centered "The End"`,
		`    "Eileen" "Quoted speaker"`,
	}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "centered", res.Items[0].Speaker)
	assert.Equal(t, `"Eileen"`, res.Items[1].Speaker)
	assert.Equal(t, "Quoted speaker", res.Items[1].Text)
}

func TestDefineBlockVariable(t *testing.T) {
	lines := []string{
		"define quest_title = Text(",
		`    quest_title = "The Lost Key"`,
		`    other = "ignored"`,
		"    )",
		`define gui.about = _p("About")`,
	}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 1)
	it := res.Items[0]
	assert.Equal(t, 1, it.Line)
	assert.Equal(t, KindVariable, it.Kind)
	assert.Equal(t, RuleDefineVariable, it.Meta.Rule())
	assert.Equal(t, "define quest_title", it.Scope)

	line, err := it.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, lines[1], line)
}

func TestParseKeepsMarkersOutOfText(t *testing.T) {
	lines := []string{"label start:", `    e "Hello" #@breakpoint`, `    "Plain"`}
	res := Parse(lines, ModeDirect)

	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].Breakpoint)
	assert.False(t, res.Items[1].Breakpoint)
	assert.Equal(t, "Hello", res.Items[0].Text)
	assert.Equal(t, `    e "Hello"`, res.Lines[1])
	assert.Equal(t, []int{1}, res.Breakpoints.Sorted())
}

func TestParseIsReentrant(t *testing.T) {
	p := NewParser()
	done := make(chan int, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- len(p.Parse(sampleScript, ModeDirect).Items)
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, 15, <-done)
	}
}
