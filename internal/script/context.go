package script

import (
	"regexp"
	"strings"
)

// frame is one scope on the context stack.
type frame struct {
	indent int
	kind   ContextKind
	// name is the screen, label, image, transform, style or define target.
	name string
	// language and identifier are set on translate frames.
	language   string
	identifier string
	// id distinguishes sibling blocks so pending pairs never cross them.
	id int
}

func (f *frame) scope() string {
	switch f.kind {
	case ContextTranslate:
		return "translate " + f.language + " " + f.identifier
	case ContextTranslateStrings:
		return "translate " + f.language + " strings"
	case ContextGlobal, ContextMenu, ContextEmbeddedCode:
		return ""
	}
	if f.name == "" {
		return ""
	}
	return f.kind.String() + " " + f.name
}

// blockEnd matches the colon closing a block header, with an optional comment.
const blockEnd = `\s*:\s*(?:#.*)?$`

var (
	pythonOpenRe = regexp.MustCompile(`^(?:init\s+(?:-?\d+\s+)?)?python(?:\s+early)?(?:\s+hide)?(?:\s+in\s+[\w.]+)?` + blockEnd)
	screenOpenRe = regexp.MustCompile(`^screen\s+([A-Za-z_]\w*)\s*(?:\(.*\))?` + blockEnd)
	labelOpenRe  = regexp.MustCompile(`^label\s+([A-Za-z_][\w.]*)\s*(?:\(.*\))?(?:\s+hide)?` + blockEnd)
	stringsOpen  = regexp.MustCompile(`^translate\s+([A-Za-z_]\w*)\s+strings` + blockEnd)
	tlPythonRe   = regexp.MustCompile(`^translate\s+[A-Za-z_]\w*\s+python` + blockEnd)
	tlStyleRe    = regexp.MustCompile(`^translate\s+[A-Za-z_]\w*\s+style\s+([A-Za-z_]\w*)` + blockEnd)
	translateRe  = regexp.MustCompile(`^translate\s+([A-Za-z_]\w*)\s+([\w.]+)` + blockEnd)
	menuOpenRe   = regexp.MustCompile(`^menu(?:\s+[A-Za-z_]\w*)?\s*(?:\(.*\))?` + blockEnd)
	imageOpenRe  = regexp.MustCompile(`^image\s+([\w ]+?)` + blockEnd)
	transformRe  = regexp.MustCompile(`^transform\s+([A-Za-z_]\w*)\s*(?:\(.*\))?` + blockEnd)
	styleOpenRe  = regexp.MustCompile(`^style\s+([A-Za-z_]\w*)(?:\s+is\s+[\w.]+)?` + blockEnd)
	defineOpenRe = regexp.MustCompile(`^(define|default)\s+(?:-?\d+\s+)?([A-Za-z_][\w.]*)\s*=\s*(.*)$`)
)

// contextStack resolves the scope of each line from its indentation.
// The bottom frame is always Global with indent -1.
type contextStack struct {
	frames []*frame
	nextID int
}

func newContextStack() *contextStack {
	return &contextStack{frames: []*frame{{indent: -1, kind: ContextGlobal}}}
}

func (s *contextStack) top() *frame {
	return s.frames[len(s.frames)-1]
}

// popTo closes every frame owned at or deeper than indent.
func (s *contextStack) popTo(indent int) {
	for len(s.frames) > 1 && s.top().indent >= indent {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *contextStack) push(f *frame) {
	s.nextID++
	f.id = s.nextID
	s.frames = append(s.frames, f)
}

// scope returns the innermost non-empty scope name.
func (s *contextStack) scope() string {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if sc := s.frames[i].scope(); sc != "" {
			return sc
		}
	}
	return ""
}

// opaque reports whether the kind's content is never parsed.
func opaque(kind ContextKind) bool {
	switch kind {
	case ContextEmbeddedCode, ContextImageDef, ContextTransformDef, ContextStyleDef:
		return true
	}
	return false
}

// openBlock tries each block header in precedence order against the
// trimmed line. It returns the new frame, or nil if the line opens nothing.
func (s *contextStack) openBlock(trimmed string, indent int) *frame {
	parent := s.top()
	if opaque(parent.kind) || parent.kind == ContextDefineDef {
		return nil
	}

	if pythonOpenRe.MatchString(trimmed) || tlPythonRe.MatchString(trimmed) {
		return &frame{indent: indent, kind: ContextEmbeddedCode}
	}
	if m := screenOpenRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextScreen, name: m[1]}
	}
	if parent.kind != ContextScreen {
		if m := labelOpenRe.FindStringSubmatch(trimmed); m != nil {
			return &frame{indent: indent, kind: ContextLabel, name: m[1]}
		}
	}
	if m := tlStyleRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextStyleDef, name: m[1]}
	}
	if m := stringsOpen.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextTranslateStrings, language: m[1]}
	}
	if m := translateRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextTranslate, language: m[1], identifier: m[2]}
	}
	if parent.kind != ContextScreen {
		if menuOpenRe.MatchString(trimmed) {
			return &frame{indent: indent, kind: ContextMenu}
		}
	}
	if m := imageOpenRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextImageDef, name: strings.Join(strings.Fields(m[1]), " ")}
	}
	if m := transformRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextTransformDef, name: m[1]}
	}
	if m := styleOpenRe.FindStringSubmatch(trimmed); m != nil {
		return &frame{indent: indent, kind: ContextStyleDef, name: m[1]}
	}
	if m := defineOpenRe.FindStringSubmatch(trimmed); m != nil && bracketDepth(stripComment(m[3])) > 0 {
		return &frame{indent: indent, kind: ContextDefineDef, name: m[2]}
	}
	return nil
}

// indentWidth counts leading spaces and tabs, one column each.
func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#")
}

// stripComment drops a trailing # comment that is not inside a string.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return strings.TrimRight(s[:i], " \t")
			}
		}
	}
	return s
}

// bracketDepth returns the count of unclosed brackets outside strings.
func bracketDepth(s string) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && inString:
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	return depth
}
