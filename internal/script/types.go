package script

// ContextKind identifies the lexical scope that governs a line.
type ContextKind int

const (
	ContextGlobal ContextKind = iota
	ContextScreen
	ContextLabel
	ContextEmbeddedCode
	ContextTranslate
	ContextTranslateStrings
	ContextMenu
	ContextImageDef
	ContextTransformDef
	ContextStyleDef
	ContextDefineDef
)

var contextNames = [...]string{
	ContextGlobal:           "global",
	ContextScreen:           "screen",
	ContextLabel:            "label",
	ContextEmbeddedCode:     "python",
	ContextTranslate:        "translate",
	ContextTranslateStrings: "translate_strings",
	ContextMenu:             "menu",
	ContextImageDef:         "image",
	ContextTransformDef:     "transform",
	ContextStyleDef:         "style",
	ContextDefineDef:        "define",
}

func (k ContextKind) String() string {
	if int(k) < len(contextNames) {
		return contextNames[k]
	}
	return "unknown"
}

// ItemKind tags the shape of the statement an item was extracted from.
type ItemKind int

const (
	KindDialogue ItemKind = iota
	KindNarration
	KindChoice
	KindScreenText
	KindScreenButton
	KindScreenLabel
	KindScreenProperty
	KindVariable
	KindTranslateOld
	KindTranslateNew
	KindTranslateComment
	KindTranslateLine
)

var kindNames = [...]string{
	KindDialogue:         "dialogue",
	KindNarration:        "narration",
	KindChoice:           "menu_choice",
	KindScreenText:       "screen_text",
	KindScreenButton:     "screen_button",
	KindScreenLabel:      "screen_label",
	KindScreenProperty:   "screen_property",
	KindVariable:         "variable",
	KindTranslateOld:     "translate_old",
	KindTranslateNew:     "translate_new",
	KindTranslateComment: "translate_comment",
	KindTranslateLine:    "translate_line",
}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Mode selects which units a parse surfaces as editable.
type Mode int

const (
	// ModeDirect surfaces dialogue, narration, choices, screen text and variables.
	ModeDirect Mode = iota
	// ModeTranslate surfaces only translation pairs.
	ModeTranslate
)

func (m Mode) String() string {
	if m == ModeTranslate {
		return "translate"
	}
	return "direct"
}

// Item is one text-bearing statement extracted from a source line.
type Item struct {
	// Line is the 0-based index of the source line.
	Line int
	Kind ItemKind
	// Text is the string content with quote escapes removed.
	Text string
	// Speaker is the character tag of dialogue lines.
	Speaker string
	// Attributes holds the image attributes written after the speaker.
	Attributes string
	// TagAttribute holds the temporary "@ ..." attributes.
	TagAttribute string
	// Context is the scope kind the line was resolved against.
	Context ContextKind
	// Scope names the nearest enclosing named block, e.g. "label start".
	Scope string
	// Language is the translate block language, empty outside translate blocks.
	Language string
	// Meta holds every fragment of the line that is not the text itself.
	Meta       Meta
	Breakpoint bool

	block int
}

// Rebuild regenerates the source line from the item's current text.
func (it *Item) Rebuild() (string, error) {
	line, err := Reconstruct(it.Meta, it.Text)
	if err != nil {
		return "", wrapLine(err, it.Line)
	}
	return line, nil
}

// TargetLine returns the line Rebuild writes to.
func (it *Item) TargetLine() int { return it.Line }

// Pair merges an original marker and its translation into one editable unit.
type Pair struct {
	OriginalLine      int
	TranslatedLine    int
	OriginalText      string
	TranslatedText    string
	Language          string
	SpeakerOriginal   string
	SpeakerTranslated string
	// Kind is inherited from the original side.
	Kind ItemKind
	// Meta is inherited from the translated side, the only rewritable line.
	Meta       Meta
	Scope      string
	Breakpoint bool
}

// Rebuild regenerates the translated line from the pair's current translation.
func (p *Pair) Rebuild() (string, error) {
	line, err := Reconstruct(p.Meta, p.TranslatedText)
	if err != nil {
		return "", wrapLine(err, p.TranslatedLine)
	}
	return line, nil
}

// TargetLine returns the line Rebuild writes to.
func (p *Pair) TargetLine() int { return p.TranslatedLine }

// Unit is anything that can regenerate one line of a file.
type Unit interface {
	TargetLine() int
	Rebuild() (string, error)
}

// DiagnosticKind classifies a non-fatal finding of a parse.
type DiagnosticKind int

const (
	// OrphanedTranslation marks a translation line whose shape did not
	// match the pending original comment; it was not paired.
	OrphanedTranslation DiagnosticKind = iota
)

func (k DiagnosticKind) String() string {
	switch k {
	case OrphanedTranslation:
		return "orphaned_translation"
	}
	return "unknown"
}

// Diagnostic is a non-fatal parse finding surfaced to the host.
type Diagnostic struct {
	Kind DiagnosticKind
	// Line is the line the finding is about.
	Line int
	// Related is the other line involved, -1 if none.
	Related int
	Message string
}

// Result is the output of a single parse.
type Result struct {
	// Lines are the source lines with breakpoint markers stripped.
	Lines []string
	// Items is filled in ModeDirect.
	Items []*Item
	// Pairs is filled in ModeTranslate.
	Pairs       []*Pair
	Breakpoints *Breakpoints
	// Language is the language of the first translate block, if any.
	Language    string
	Diagnostics []Diagnostic
}

// Units returns the editable units of the result in line order.
func (r *Result) Units() []Unit {
	units := make([]Unit, 0, len(r.Items)+len(r.Pairs))
	for _, it := range r.Items {
		units = append(units, it)
	}
	for _, p := range r.Pairs {
		units = append(units, p)
	}
	return units
}
