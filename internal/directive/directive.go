// Package directive parses buildit directives from Go source.
//
// A struct is selected for generation with a comment line in its doc comment:
//
//	//buildit:builder
//	//buildit:builder into
//
// Field level options live in the `buildit` struct tag:
//
//	Name opt.Option[string] `buildit:"rename='SetName',into"`
//	Raw  []byte             `buildit:"skip"`
//
// The bare //buildit:skip comment on a field is still accepted as a skip
// marker but is deprecated in favor of the tag.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"strings"

	"github.com/fatih/structtag"

	"github.com/origadmin/buildit/internal/model"
	"github.com/origadmin/buildit/internal/types"
)

// Option keys.
const (
	OptSkip   = "skip"
	OptInto   = "into"
	OptRename = "rename"
)

// ParseStructDirective parses a single comment line. ok is false when the
// line is not a //buildit:builder directive.
func ParseStructDirective(line string) (global model.GlobalDirectives, ok bool, err error) {
	line = strings.TrimSpace(line)
	rest, found := strings.CutPrefix(line, types.BuilderDirective)
	if !found {
		return global, false, nil
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// e.g. //buildit:builders
		return global, false, nil
	}
	for _, opt := range splitOptions(strings.TrimSpace(rest)) {
		key, _, hasValue := cutOption(opt)
		switch key {
		case OptInto:
			if hasValue {
				return global, true, fmt.Errorf("%w: %q does not take a value", model.ErrMalformedDirective, key)
			}
			global.Into = true
		default:
			slog.Debug("Ignoring unknown struct option", "option", opt)
		}
	}
	return global, true, nil
}

// FindStructDirective looks for a //buildit:builder line in a doc comment.
// It returns the position of the directive line when found.
func FindStructDirective(doc *ast.CommentGroup) (model.GlobalDirectives, token.Pos, bool, error) {
	if doc == nil {
		return model.GlobalDirectives{}, token.NoPos, false, nil
	}
	for _, c := range doc.List {
		global, ok, err := ParseStructDirective(c.Text)
		if ok || err != nil {
			return global, c.Slash, ok, err
		}
	}
	return model.GlobalDirectives{}, token.NoPos, false, nil
}

// ParseFieldTag parses the raw struct tag of a field, with or without the
// surrounding backquotes. A tag without a buildit key yields the defaults.
func ParseFieldTag(raw string) (model.Directives, error) {
	var dirs model.Directives
	raw = strings.Trim(raw, "`")
	if raw == "" {
		return dirs, nil
	}
	tags, err := structtag.Parse(raw)
	if err != nil {
		return dirs, fmt.Errorf("%w: invalid struct tag: %v", model.ErrMalformedDirective, err)
	}
	tag, err := tags.Get(types.TagKey)
	if err != nil {
		// structtag reports a missing key as an error.
		return dirs, nil
	}
	return ParseFieldOptions(tag.Value())
}

// ParseFieldOptions parses the value of the buildit struct tag.
func ParseFieldOptions(value string) (model.Directives, error) {
	var dirs model.Directives
	for _, opt := range splitOptions(value) {
		key, val, hasValue := cutOption(opt)
		switch key {
		case "-":
			dirs.Skip = true
		case OptSkip, OptInto:
			if hasValue {
				return dirs, fmt.Errorf("%w: %q does not take a value", model.ErrMalformedDirective, key)
			}
			if key == OptSkip {
				dirs.Skip = true
			} else {
				dirs.Into = true
			}
		case OptRename:
			name, err := parseRename(val, hasValue)
			if err != nil {
				return dirs, err
			}
			dirs.Rename = &name
		default:
			slog.Debug("Ignoring unknown field option", "option", opt)
		}
	}
	return dirs, nil
}

func parseRename(val string, hasValue bool) (string, error) {
	if !hasValue {
		return "", fmt.Errorf("%w: rename requires a value, e.g. rename='NewName'", model.ErrMalformedDirective)
	}
	if len(val) < 2 || val[0] != '\'' || val[len(val)-1] != '\'' {
		return "", fmt.Errorf("%w: rename value %s must be a quoted string literal, e.g. rename='NewName'",
			model.ErrMalformedDirective, val)
	}
	name := val[1 : len(val)-1]
	if name == "" {
		return "", fmt.Errorf("%w: rename value must not be empty", model.ErrMalformedDirective)
	}
	if !token.IsIdentifier(name) {
		return "", fmt.Errorf("%w: rename value %q is not a valid Go identifier", model.ErrMalformedDirective, name)
	}
	return name, nil
}

// HasLegacySkip reports whether any of the comment groups holds the bare
// //buildit:skip marker.
func HasLegacySkip(groups ...*ast.CommentGroup) bool {
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			if strings.TrimSpace(c.Text) == types.SkipDirective {
				return true
			}
		}
	}
	return false
}

// DocLines returns the raw lines of a doc comment, leaving out directive lines.
func DocLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	lines := make([]string, 0, len(doc.List))
	for _, c := range doc.List {
		if IsDirective(c.Text) {
			continue
		}
		lines = append(lines, c.Text)
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// IsDirective reports whether a comment is a tool directive such as
// //go:generate or //buildit:skip rather than documentation.
func IsDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, "//")
	if !ok {
		return false
	}
	colon := strings.IndexByte(rest, ':')
	if colon <= 0 || colon+1 >= len(rest) {
		return false
	}
	for i := 0; i < colon; i++ {
		if !isLowerAlnum(rest[i]) {
			return false
		}
	}
	return isLowerAlnum(rest[colon+1])
}

func isLowerAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('0' <= b && b <= '9')
}

// splitOptions splits a comma or space separated option list. Commas and
// spaces inside single quotes are kept.
func splitOptions(s string) []string {
	var (
		opts   []string
		cur    strings.Builder
		quoted bool
	)
	flush := func() {
		if opt := strings.TrimSpace(cur.String()); opt != "" {
			opts = append(opts, opt)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case r == '\'':
			quoted = !quoted
			cur.WriteRune(r)
		case !quoted && (r == ',' || r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return opts
}

func cutOption(opt string) (key, value string, hasValue bool) {
	key, value, hasValue = strings.Cut(opt, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value), hasValue
}
