package planner

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// exportName upper-cases the first letter of name.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// MethodName returns the default builder method name of a field.
func MethodName(prefix, field string) string {
	return prefix + exportName(field)
}

// ParamName returns the lower camel case form of a field name, keeping
// initialisms together: Name -> name, ID -> id, URLPath -> urlPath.
func ParamName(field string) string {
	runes := []rune(field)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// ReceiverName returns the default receiver name of a type: its first letter
// in lower case.
func ReceiverName(typeName string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimLeft(typeName, "_"))
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return "b"
	}
	return string(unicode.ToLower(r))
}

// freeName appends underscores to name until it is neither a keyword nor
// taken.
func freeName(name string, taken map[string]bool) string {
	for token.IsKeyword(name) || taken[name] {
		name += "_"
	}
	return name
}
