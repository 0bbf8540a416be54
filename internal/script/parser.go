package script

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Parser extracts editable text from script lines. A Parser holds only
// configuration and is safe for concurrent use.
type Parser struct {
	marker string
	logger zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker sets the breakpoint marker token.
func WithMarker(marker string) Option {
	return func(p *Parser) {
		if marker != "" {
			p.marker = marker
		}
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// NewParser creates a Parser with the default marker and the global logger.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		marker: DefaultMarker,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Marker returns the breakpoint marker token.
func (p *Parser) Marker() string { return p.marker }

// Parse runs a single forward pass over lines. It never fails: lines it
// does not recognise yield no item.
func (p *Parser) Parse(lines []string, mode Mode) *Result {
	clean, bps := StripMarkers(lines, p.marker)
	s := &session{
		mode:   mode,
		stack:  newContextStack(),
		logger: p.logger,
	}
	raw := s.scan(clean)
	for _, it := range raw {
		it.Breakpoint = bps.Has(it.Line)
	}

	res := &Result{
		Lines:       clean,
		Breakpoints: bps,
		Language:    s.language,
	}
	if mode == ModeTranslate {
		res.Pairs = s.pair(raw)
		for _, pr := range res.Pairs {
			pr.Breakpoint = bps.Has(pr.TranslatedLine)
		}
		res.Diagnostics = s.diagnostics
		return res
	}
	for _, it := range raw {
		if directKind(it.Kind) {
			res.Items = append(res.Items, it)
		}
	}
	return res
}

// Parse parses lines with a default Parser.
func Parse(lines []string, mode Mode) *Result {
	return NewParser().Parse(lines, mode)
}

func directKind(k ItemKind) bool {
	switch k {
	case KindTranslateOld, KindTranslateNew, KindTranslateComment, KindTranslateLine:
		return false
	}
	return true
}

// session is the state of one parse. It is created per call and
// discarded on return.
type session struct {
	mode        Mode
	stack       *contextStack
	logger      zerolog.Logger
	language    string
	diagnostics []Diagnostic

	pendingOld     *Item
	pendingComment *Item
}

// scan resolves the context of every line and builds the raw item stream.
func (s *session) scan(lines []string) []*Item {
	var items []*Item
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := indentWidth(line)
		comment := isComment(trimmed)

		// Comments never close a block, even when under-indented.
		if !comment {
			s.stack.popTo(indent)
			if indent > s.stack.top().indent {
				if f := s.stack.openBlock(trimmed, indent); f != nil {
					s.stack.push(f)
					if s.language == "" && f.language != "" {
						s.language = f.language
					}
					continue
				}
			}
		}

		if it := s.match(line, comment); it != nil {
			it.Line = i
			items = append(items, it)
		}
	}
	return items
}

// match applies the rules of the current context to one line.
func (s *session) match(line string, comment bool) *Item {
	f := s.stack.top()
	if comment {
		if f.kind != ContextTranslate || s.mode != ModeTranslate {
			return nil
		}
		return s.annotate(matchComment(line, f), f)
	}
	for _, r := range rulesFor(f.kind) {
		it := r(line, f)
		if it == nil {
			continue
		}
		if f.kind == ContextTranslate && s.mode == ModeTranslate {
			it.Kind = KindTranslateLine
		}
		return s.annotate(it, f)
	}
	return nil
}

func (s *session) annotate(it *Item, f *frame) *Item {
	if it == nil {
		return nil
	}
	it.Context = f.kind
	it.Scope = s.stack.scope()
	it.Language = f.language
	it.block = f.id
	return it
}
