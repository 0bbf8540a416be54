package script

import "fmt"

// pair runs the second pass of translate mode over the raw item stream.
// Old/new lines pair inside translate strings blocks; comment candidates
// pair with the following translation line inside translate blocks.
func (s *session) pair(items []*Item) []*Pair {
	var pairs []*Pair
	for _, it := range items {
		switch it.Context {
		case ContextTranslateStrings:
			s.pendingComment = nil
			if p := s.pairStrings(it); p != nil {
				pairs = append(pairs, p)
			}
		case ContextTranslate:
			s.pendingOld = nil
			if p := s.pairBlock(it); p != nil {
				pairs = append(pairs, p)
			}
		default:
			s.pendingOld = nil
			s.pendingComment = nil
		}
	}
	return pairs
}

func (s *session) pairStrings(it *Item) *Pair {
	switch {
	case it.Kind == KindTranslateOld:
		s.pendingOld = it
		return nil
	case it.Kind == KindTranslateNew && s.pendingOld != nil && s.pendingOld.block == it.block:
		old := s.pendingOld
		s.pendingOld = nil
		return &Pair{
			OriginalLine:   old.Line,
			TranslatedLine: it.Line,
			OriginalText:   old.Text,
			TranslatedText: it.Text,
			Language:       it.Language,
			Kind:           old.Kind,
			Meta:           it.Meta,
			Scope:          it.Scope,
		}
	}
	s.pendingOld = nil
	return nil
}

func (s *session) pairBlock(it *Item) *Pair {
	switch {
	case it.Kind == KindTranslateComment:
		s.pendingComment = it
		return nil
	case it.Kind != KindTranslateLine:
		s.pendingComment = nil
		return nil
	}

	cand := s.pendingComment
	s.pendingComment = nil
	if cand == nil || cand.block != it.block {
		return nil
	}
	want, got := shapeOf(cand), shapeOf(it)
	if want != got {
		msg := fmt.Sprintf("original is %s but translation is %s", want, got)
		s.logger.Warn().
			Int("line", it.Line).
			Int("original_line", cand.Line).
			Str("expected", want.String()).
			Str("actual", got.String()).
			Msg("Dropping translation with mismatched shape")
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Kind:    OrphanedTranslation,
			Line:    it.Line,
			Related: cand.Line,
			Message: msg,
		})
		return nil
	}
	return &Pair{
		OriginalLine:      cand.Line,
		TranslatedLine:    it.Line,
		OriginalText:      cand.Text,
		TranslatedText:    it.Text,
		Language:          it.Language,
		SpeakerOriginal:   cand.Speaker,
		SpeakerTranslated: it.Speaker,
		Kind:              want,
		Meta:              it.Meta,
		Scope:             it.Scope,
	}
}

// shapeOf is dialogue when a speaker tag was parsed, narration otherwise.
func shapeOf(it *Item) ItemKind {
	if it.Speaker != "" {
		return KindDialogue
	}
	return KindNarration
}
