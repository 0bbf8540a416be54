package script

import (
	"regexp"
	"strings"
)

// strBody matches the content of a double-quoted string.
const strBody = `((?:[^"\\]|\\.)*)`

// carrier matches either "..." or _("...").
const carrier = `(_\(\s*"(?:[^"\\]|\\.)*"\s*\)|"(?:[^"\\]|\\.)*")`

var (
	dialogueRe = regexp.MustCompile(`^(\s*)([A-Za-z_]\w*(?:\.\w+)*|"(?:[^"\\]|\\.)*")((?:\s+-?[A-Za-z_]\w*)*?)(\s+@\s*-?[A-Za-z_]\w*(?:\s+-?[A-Za-z_]\w*)*)?\s+"` + strBody + `"(.*)$`)
	stringRe   = regexp.MustCompile(`^(\s*)"` + strBody + `"(.*)$`)

	propertyRe   = regexp.MustCompile(`^(\s*)(.*?\s)?(text|tooltip|title|alt|placeholder)(\s+)` + carrier + `(.*)$`)
	buttonRe     = regexp.MustCompile(`^(\s*)(textbutton|button)(\s+)` + carrier + `(.*)$`)
	screenLabel  = regexp.MustCompile(`^(\s*)(label)(\s+)` + carrier + `(.*)$`)
	textStmtRe   = regexp.MustCompile(`^(\s*)(text)(\s+)` + carrier + `(.*)$`)
	statementRe  = regexp.MustCompile(`^(?:text|textbutton|button|label)\s+(?:_\(\s*)?"`)
	oldRe        = regexp.MustCompile(`^(\s*)old(\s+)"` + strBody + `"(.*)$`)
	newRe        = regexp.MustCompile(`^(\s*)new(\s+)"` + strBody + `"(.*)$`)
	quickVarRe   = regexp.MustCompile(`^(\s*)(\$)(\s*)([A-Za-z_][\w.]*)(\s*=\s*)` + carrier + `(.*)$`)
	defineVarRe  = regexp.MustCompile(`^(\s*)(define|default)(\s+)([A-Za-z_][\w.]*)(\s*=\s*)` + carrier + `(.*)$`)
	memberVarRe  = regexp.MustCompile(`^(\s*)()()([A-Za-z_][\w.]*)(\s*=\s*)` + carrier + `(.*)$`)
	commentLead  = regexp.MustCompile(`^\s*# ?`)
	firstWordRe  = regexp.MustCompile(`^[A-Za-z_]\w*`)
	listLeadings = ",:=+%)]}"
)

// reservedWords are statement verbs and screen/style properties that can
// never be a speaker tag.
var reservedWords = map[string]bool{
	"if": true, "elif": true, "else": true, "while": true, "for": true, "pass": true,
	"return": true, "jump": true, "call": true, "show": true, "hide": true, "scene": true,
	"with": true, "play": true, "stop": true, "queue": true, "pause": true, "window": true,
	"menu": true, "label": true, "screen": true, "python": true, "init": true, "define": true,
	"default": true, "image": true, "transform": true, "style": true, "translate": true,
	"voice": true, "nvl": true, "camera": true, "layeredimage": true, "old": true, "new": true,
	"at": true, "as": true, "behind": true, "onlayer": true, "zorder": true, "expression": true,
	"set": true, "text": true, "textbutton": true, "button": true, "imagebutton": true,
	"action": true, "tooltip": true, "title": true, "alt": true, "placeholder": true,
	"add": true, "use": true, "key": true, "timer": true, "input": true, "frame": true,
	"vbox": true, "hbox": true, "fixed": true, "grid": true, "viewport": true, "side": true,
	"font": true, "size": true, "color": true, "outlines": true, "xpos": true, "ypos": true,
	"xalign": true, "yalign": true, "xysize": true, "background": true, "hover": true,
	"idle": true, "insensitive": true, "selected": true, "has": true, "null": true,
	"style_prefix": true, "renpy": true, "config": true, "gui": true, "store": true,
	"persistent": true, "is": true, "take": true, "properties": true, "sound": true,
	"music": true, "audio": true, "repeat": true, "block": true, "parallel": true,
	"choice": true, "contains": true, "on": true, "function": true, "time": true,
	"linear": true, "ease": true, "easein": true, "easeout": true,
}

// propertyWords mark a string as the head of a property list, not narration.
var propertyWords = map[string]bool{
	"action": true, "style": true, "at": true, "as": true, "xpos": true, "ypos": true,
	"xalign": true, "yalign": true, "size": true, "color": true, "font": true,
	"hovered": true, "unhovered": true, "clicked": true, "alt": true, "tooltip": true,
	"is": true, "zoom": true, "align": true, "pos": true, "anchor": true, "behind": true,
	"onlayer": true, "zorder": true,
}

// rule tries to build an item from one line resolved against f.
type rule func(line string, f *frame) *Item

// rulesFor returns the ordered rule list of a context kind.
func rulesFor(kind ContextKind) []rule {
	switch kind {
	case ContextGlobal:
		return []rule{matchDialogue, matchNarration, matchDefineVariable, matchQuickVariable}
	case ContextLabel:
		return []rule{matchDialogue, matchNarration, matchQuickVariable, matchDefineVariable}
	case ContextMenu:
		return []rule{matchChoice, matchDialogue, matchNarration, matchQuickVariable}
	case ContextTranslate:
		return []rule{matchDialogue, matchNarration}
	case ContextTranslateStrings:
		return []rule{matchOld, matchNew}
	case ContextScreen:
		return []rule{matchScreenProperty, matchButton, matchScreenLabel, matchTextStatement}
	case ContextDefineDef:
		return []rule{matchDefineMember}
	}
	return nil
}

func matchDialogue(line string, _ *frame) *Item {
	m := dialogueRe.FindStringSubmatchIndex(line)
	if m == nil {
		return nil
	}
	speaker := line[m[4]:m[5]]
	if reservedWords[speaker] {
		return nil
	}
	it := &Item{
		Kind:    KindDialogue,
		Text:    unescapeText(line[m[10]:m[11]]),
		Speaker: speaker,
		Meta: DialogueMeta{
			Prefix: line[:m[10]-1],
			Suffix: line[m[12]:],
		},
	}
	if m[6] >= 0 {
		it.Attributes = strings.TrimSpace(line[m[6]:m[7]])
	}
	if m[8] >= 0 {
		tag := strings.TrimSpace(line[m[8]:m[9]])
		it.TagAttribute = strings.TrimSpace(strings.TrimPrefix(tag, "@"))
	}
	return it
}

func matchNarration(line string, _ *frame) *Item {
	m := stringRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	rest := strings.TrimSpace(stripComment(m[3]))
	if rest != "" {
		if strings.ContainsAny(rest[:1], listLeadings) {
			return nil
		}
		if w := firstWordRe.FindString(rest); propertyWords[w] {
			return nil
		}
	}
	return &Item{
		Kind: KindNarration,
		Text: unescapeText(m[2]),
		Meta: NarrationMeta{Indent: m[1], Suffix: m[3]},
	}
}

func matchChoice(line string, _ *frame) *Item {
	m := stringRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	if !strings.HasSuffix(strings.TrimSpace(stripComment(m[3])), ":") {
		return nil
	}
	return &Item{
		Kind: KindChoice,
		Text: unescapeText(m[2]),
		Meta: ChoiceMeta{Indent: m[1], Suffix: m[3]},
	}
}

// splitCarrier returns the quoting around a matched carrier and its text.
func splitCarrier(c string) (Quoting, string) {
	if !strings.HasPrefix(c, "_(") {
		return literalQuoting, unescapeText(c[1 : len(c)-1])
	}
	open := strings.IndexByte(c, '"')
	end := strings.LastIndexByte(c, '"')
	return Quoting{Form: QuoteTranslated, Open: c[:open+1], Close: c[end:]}, unescapeText(c[open+1 : end])
}

func matchScreenProperty(line string, _ *frame) *Item {
	m := propertyRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	prefix, keyword := m[2], m[3]
	if prefix == "" && keyword == "text" {
		return nil
	}
	if statementRe.MatchString(prefix) {
		return nil
	}
	q, text := splitCarrier(m[5])
	return &Item{
		Kind: KindScreenProperty,
		Text: text,
		Meta: PropertyMeta{
			Indent:  m[1],
			Prefix:  prefix,
			Keyword: keyword,
			Gap:     m[4],
			Quoting: q,
			Suffix:  m[6],
		},
	}
}

func screenStatement(re *regexp.Regexp, kind ItemKind, r Rule) rule {
	return func(line string, _ *frame) *Item {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return nil
		}
		q, text := splitCarrier(m[4])
		return &Item{
			Kind: kind,
			Text: text,
			Meta: ScreenMeta{
				Kind:    r,
				Indent:  m[1],
				Keyword: m[2],
				Gap:     m[3],
				Quoting: q,
				Suffix:  m[5],
			},
		}
	}
}

var (
	matchButton        = screenStatement(buttonRe, KindScreenButton, RuleScreenButton)
	matchScreenLabel   = screenStatement(screenLabel, KindScreenLabel, RuleScreenLabel)
	matchTextStatement = screenStatement(textStmtRe, KindScreenText, RuleScreenText)
)

func variableItem(m []string, define bool) *Item {
	q, text := splitCarrier(m[6])
	return &Item{
		Kind: KindVariable,
		Text: text,
		Meta: VariableMeta{
			Indent:  m[1],
			Keyword: m[2],
			Lead:    m[3],
			Name:    m[4],
			Assign:  m[5],
			Quoting: q,
			Suffix:  m[7],
			Define:  define,
		},
	}
}

// plainTail reports whether a suffix holds nothing but an optional comment.
func plainTail(s string) bool {
	return strings.TrimSpace(stripComment(s)) == ""
}

func matchQuickVariable(line string, _ *frame) *Item {
	m := quickVarRe.FindStringSubmatch(line)
	if m == nil || !plainTail(m[7]) {
		return nil
	}
	return variableItem(m, false)
}

func matchDefineVariable(line string, _ *frame) *Item {
	m := defineVarRe.FindStringSubmatch(line)
	if m == nil || !plainTail(m[7]) {
		return nil
	}
	return variableItem(m, true)
}

// matchDefineMember only accepts the name captured by the enclosing define.
func matchDefineMember(line string, f *frame) *Item {
	m := memberVarRe.FindStringSubmatch(line)
	if m == nil || f == nil || m[4] != f.name {
		return nil
	}
	return variableItem(m, true)
}

func matchOld(line string, _ *frame) *Item {
	m := oldRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	text := unescapeText(m[3])
	return &Item{
		Kind: KindTranslateOld,
		Text: text,
		Meta: OldMeta{Original: line},
	}
}

func matchNew(line string, _ *frame) *Item {
	m := newRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &Item{
		Kind: KindTranslateNew,
		Text: unescapeText(m[3]),
		Meta: NewMeta{Indent: m[1], Gap: m[2], Suffix: m[4]},
	}
}

// matchComment re-parses the body of a comment inside a translate block as
// dialogue or narration. The result describes the original line.
func matchComment(line string, f *frame) *Item {
	body := commentLead.ReplaceAllString(line, "")
	parsed := matchDialogue(body, f)
	if parsed == nil {
		parsed = matchNarration(body, f)
	}
	if parsed == nil {
		return nil
	}
	parsed.Kind = KindTranslateComment
	parsed.Meta = CommentMeta{Raw: line}
	return parsed
}
