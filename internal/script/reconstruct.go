package script

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingMetadata reports that an item lacks a fragment its rule needs.
var ErrMissingMetadata = errors.New("missing reconstruction metadata")

// ReconstructError is a fatal failure to rebuild one line.
type ReconstructError struct {
	// Line is the target line, -1 when unknown.
	Line   int
	Rule   string
	Reason string
	Err    error
}

func (e *ReconstructError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: rebuild %s: %s", e.Line+1, e.Rule, e.Reason)
	}
	return fmt.Sprintf("rebuild %s: %s", e.Rule, e.Reason)
}

func (e *ReconstructError) Unwrap() error { return e.Err }

func missing(r Rule, what string) error {
	return &ReconstructError{Line: -1, Rule: r.String(), Reason: what + " is empty", Err: ErrMissingMetadata}
}

func wrapLine(err error, line int) error {
	var re *ReconstructError
	if errors.As(err, &re) && re.Line < 0 {
		cp := *re
		cp.Line = line
		return &cp
	}
	return err
}

// Reconstruct rebuilds a line from its metadata and a (possibly edited) text.
// With the text the line was parsed with, the result equals the source line.
// Text that would not reparse unchanged fails with ErrUnencodableText.
func Reconstruct(meta Meta, text string) (string, error) {
	switch meta.(type) {
	case nil, OldMeta, CommentMeta:
	default:
		if err := CheckText(text); err != nil {
			return "", &ReconstructError{Line: -1, Rule: meta.Rule().String(), Reason: err.Error(), Err: ErrUnencodableText}
		}
	}

	switch m := meta.(type) {
	case DialogueMeta:
		if m.Prefix == "" {
			return "", missing(RuleStandard, "speaker prefix")
		}
		return m.Prefix + literalQuoting.wrap(text) + m.Suffix, nil

	case NarrationMeta:
		return m.Indent + literalQuoting.wrap(text) + m.Suffix, nil

	case ChoiceMeta:
		if m.Suffix == "" {
			return "", missing(RuleChoice, "choice clause")
		}
		return m.Indent + literalQuoting.wrap(text) + m.Suffix, nil

	case ScreenMeta:
		if m.Keyword == "" {
			return "", missing(m.Kind, "keyword")
		}
		if m.Gap == "" {
			return "", missing(m.Kind, "keyword gap")
		}
		if !m.Quoting.valid() {
			return "", missing(m.Kind, "quoting")
		}
		return m.Indent + m.Keyword + m.Gap + m.Quoting.wrap(text) + m.Suffix, nil

	case PropertyMeta:
		if m.Keyword == "" {
			return "", missing(RuleScreenProperty, "keyword")
		}
		if m.Gap == "" {
			return "", missing(RuleScreenProperty, "keyword gap")
		}
		if !m.Quoting.valid() {
			return "", missing(RuleScreenProperty, "quoting")
		}
		return m.Indent + m.Prefix + m.Keyword + m.Gap + m.Quoting.wrap(text) + m.Suffix, nil

	case VariableMeta:
		if m.Name == "" {
			return "", missing(m.Rule(), "variable name")
		}
		if m.Assign == "" {
			return "", missing(m.Rule(), "assignment")
		}
		if !m.Quoting.valid() {
			return "", missing(m.Rule(), "quoting")
		}
		return m.Indent + m.Keyword + m.Lead + m.Name + m.Assign + m.Quoting.wrap(text) + m.Suffix, nil

	case OldMeta:
		if m.Original == "" {
			return "", missing(RuleTranslateOld, "original line")
		}
		return m.Original, nil

	case NewMeta:
		if m.Gap == "" {
			return "", missing(RuleTranslateNew, "keyword gap")
		}
		return m.Indent + "new" + m.Gap + literalQuoting.wrap(text) + m.Suffix, nil

	case CommentMeta:
		if m.Raw == "" {
			return "", missing(RuleTranslateComment, "comment")
		}
		return m.Raw, nil

	case nil:
		return "", &ReconstructError{Line: -1, Rule: "none", Reason: "item has no metadata", Err: ErrMissingMetadata}
	}
	return "", &ReconstructError{Line: -1, Rule: fmt.Sprintf("%T", meta), Reason: "unsupported metadata", Err: ErrMissingMetadata}
}

// Render produces the lines to save: every unit is rebuilt into its target
// line and breakpoint markers are reattached. Lines whose unit fails to
// rebuild keep their current content and the failures are returned joined;
// callers must not persist the output when err is non-nil.
func Render(lines []string, units []Unit, bps *Breakpoints, marker string) ([]string, error) {
	out := make([]string, len(lines))
	copy(out, lines)

	sorted := make([]Unit, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TargetLine() < sorted[j].TargetLine() })

	var errs []error
	for _, u := range sorted {
		idx := u.TargetLine()
		if idx < 0 || idx >= len(out) {
			errs = append(errs, &ReconstructError{Line: idx, Rule: "render", Reason: fmt.Sprintf("line out of range (%d lines)", len(out))})
			continue
		}
		line, err := u.Rebuild()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[idx] = line
	}
	return AttachMarkers(out, bps, marker), errors.Join(errs...)
}
