package script

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Rule selects the inverse algorithm used to rebuild a line.
type Rule int

const (
	RuleStandard Rule = iota
	RuleNarration
	RuleChoice
	RuleScreenButton
	RuleScreenLabel
	RuleScreenText
	RuleScreenProperty
	RuleVariable
	RuleDefineVariable
	RuleTranslateOld
	RuleTranslateNew
	RuleTranslateComment
)

var ruleNames = [...]string{
	RuleStandard:         "standard",
	RuleNarration:        "narration",
	RuleChoice:           "choice",
	RuleScreenButton:     "screen_button",
	RuleScreenLabel:      "screen_label",
	RuleScreenText:       "screen_text_statement",
	RuleScreenProperty:   "screen_property",
	RuleVariable:         "variable",
	RuleDefineVariable:   "define_variable",
	RuleTranslateOld:     "translate_old",
	RuleTranslateNew:     "translate_new",
	RuleTranslateComment: "translate_comment",
}

func (r Rule) String() string {
	if int(r) >= 0 && int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "unknown"
}

// Meta carries the fragments of a matched line that are not its text.
// The set of implementations is closed.
type Meta interface {
	Rule() Rule
	sealed()
}

// QuoteForm records how a text was carried on the line.
type QuoteForm int

const (
	// QuoteLiteral is a plain "..." string.
	QuoteLiteral QuoteForm = iota
	// QuoteTranslated is a _("...") translation call.
	QuoteTranslated
)

// Quoting is the exact text around the escaped content, e.g. `_( "` and `" )`.
type Quoting struct {
	Form  QuoteForm
	Open  string
	Close string
}

var literalQuoting = Quoting{Form: QuoteLiteral, Open: `"`, Close: `"`}

func (q Quoting) wrap(text string) string {
	return q.Open + escapeText(text) + q.Close
}

func (q Quoting) valid() bool {
	switch q.Form {
	case QuoteLiteral:
		return strings.HasSuffix(q.Open, `"`) && strings.HasPrefix(q.Close, `"`)
	case QuoteTranslated:
		return strings.HasPrefix(q.Open, "_(") && strings.HasSuffix(q.Open, `"`) &&
			strings.HasPrefix(q.Close, `"`) && strings.HasSuffix(q.Close, ")")
	}
	return false
}

// DialogueMeta rebuilds `<Prefix>"text"<Suffix>`. Prefix holds indentation,
// speaker, attributes and tag attributes exactly as written.
type DialogueMeta struct {
	Prefix string
	Suffix string
}

// NarrationMeta rebuilds `<Indent>"text"<Suffix>`.
type NarrationMeta struct {
	Indent string
	Suffix string
}

// ChoiceMeta rebuilds a menu choice; Suffix keeps the colon clause.
type ChoiceMeta struct {
	Indent string
	Suffix string
}

// ScreenMeta rebuilds text, textbutton/button and label screen statements.
type ScreenMeta struct {
	Kind    Rule
	Indent  string
	Keyword string
	// Gap is the whitespace between the keyword and the text carrier.
	Gap     string
	Quoting Quoting
	Suffix  string
}

// PropertyMeta rebuilds `<Indent><Prefix><Keyword><Gap><carrier><Suffix>`.
// Prefix is empty or the widget declaration including its trailing space.
type PropertyMeta struct {
	Indent  string
	Prefix  string
	Keyword string
	Gap     string
	Quoting Quoting
	Suffix  string
}

// VariableMeta rebuilds `$ name = "text"`, `define name = "text"` and
// `name = "text"` inside a define block.
type VariableMeta struct {
	Indent string
	// Keyword is "$", "define", "default" or empty.
	Keyword string
	// Lead is the whitespace after Keyword.
	Lead string
	Name string
	// Assign is the exact `=` with its surrounding whitespace.
	Assign  string
	Quoting Quoting
	Suffix  string
	Define  bool
}

// OldMeta always rebuilds the original old line; old lines are read-only.
type OldMeta struct {
	Original string
}

// NewMeta rebuilds `<Indent>new<Gap>"text"<Suffix>`.
type NewMeta struct {
	Indent string
	Gap    string
	Suffix string
}

// CommentMeta re-emits the original comment line verbatim.
type CommentMeta struct {
	Raw string
}

func (DialogueMeta) Rule() Rule  { return RuleStandard }
func (NarrationMeta) Rule() Rule { return RuleNarration }
func (ChoiceMeta) Rule() Rule    { return RuleChoice }
func (m ScreenMeta) Rule() Rule  { return m.Kind }
func (PropertyMeta) Rule() Rule  { return RuleScreenProperty }
func (m VariableMeta) Rule() Rule {
	if m.Define {
		return RuleDefineVariable
	}
	return RuleVariable
}
func (OldMeta) Rule() Rule     { return RuleTranslateOld }
func (NewMeta) Rule() Rule     { return RuleTranslateNew }
func (CommentMeta) Rule() Rule { return RuleTranslateComment }

func (DialogueMeta) sealed()  {}
func (NarrationMeta) sealed() {}
func (ChoiceMeta) sealed()    {}
func (ScreenMeta) sealed()    {}
func (PropertyMeta) sealed()  {}
func (VariableMeta) sealed()  {}
func (OldMeta) sealed()       {}
func (NewMeta) sealed()       {}
func (CommentMeta) sealed()   {}

// ErrUnencodableText reports text that cannot be written back between
// double quotes and read again unchanged.
var ErrUnencodableText = errors.New("text cannot be quoted")

var quotedRe = regexp.MustCompile(`^"` + strBody + `"$`)

// CheckText reports whether text survives a write and reparse as the
// content of a double-quoted string. A trailing odd backslash run or an
// escaped quote in edited text would end the string early.
func CheckText(text string) error {
	m := quotedRe.FindStringSubmatch(`"` + escapeText(text) + `"`)
	if m == nil || unescapeText(m[1]) != text {
		return fmt.Errorf("%w: %q", ErrUnencodableText, text)
	}
	return nil
}

// unescapeText removes the backslash in front of every escaped quote.
// Other escape sequences are kept as written.
func unescapeText(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// escapeText is the exact inverse of unescapeText on matched content.
func escapeText(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
