// Package jsonfix turns the source text of an object literal into JSON.
//
// Annotation arguments are written as object literals, not JSON: keys are
// bare, strings are single-quoted, trailing commas are common and some values
// are identifiers or zero-argument lambdas. The pipeline below rewrites the
// text with regular expressions until it parses. It is an approximation of a
// grammar and its quirks are relied upon by existing fixtures:
//
//  1. flip ' to ", drop trailing commas, quote the first " word.word()"
//  2. strict parse
//  3. quote bare keys, then bare identifier values
//  4. strict parse
//  5. replace block-bodied () => {...} values with {"type":"lamda"} markers
//  6. strict parse, or give up with a warning and nil
package jsonfix

import (
	"log/slog"
	"regexp"
	"strings"
)

// LambdaType is the "type" of the marker object that replaces a lambda.
const LambdaType = "lamda"

var (
	trailingComma = regexp.MustCompile(`,(\s*\})`)
	methodCall    = regexp.MustCompile(` [\w]+.[\w]+\(\)`)
	bareKey       = regexp.MustCompile(` ?[a-zA-Z_]\w*(\.\w+)?(\s)*:`)
	bareValue     = regexp.MustCompile(`:(\s)*?[a-zA-Z]\w+(\.\w+)?`)
	booleanWord   = regexp.MustCompile(` ?(true|false)[ ,}]?`)
	lambda        = regexp.MustCompile(`(?s)\(\)\s?=>\s?\{.*\},|\(\)\s?=>\s?\{.*\}\}`)
	whitespaceRun = regexp.MustCompile(`\s{2,}`)
)

// Decode runs the full pipeline on text. It returns nil, after logging a
// warning, when the text cannot be turned into JSON.
func Decode(text string, logger *slog.Logger) any {
	s := Prepare(text)
	if v, err := Parse(s); err == nil {
		return v
	}

	s = QuoteIdentifiers(s)
	if v, err := Parse(s); err == nil {
		return v
	}

	s = ReplaceLambdas(s)
	v, err := Parse(s)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("cannot parse object literal after complex object calculating",
			"text", s,
			"error", err)
		return nil
	}
	return v
}

// Prepare flips single quotes to double quotes, strips commas before a
// closing brace and quotes the first " name.member()" call.
func Prepare(text string) string {
	s := strings.ReplaceAll(text, "'", `"`)
	s = trailingComma.ReplaceAllString(s, "$1")
	if m := methodCall.FindString(s); m != "" {
		s = strings.Replace(s, m, `"`+m+`"`, 1)
	}
	return s
}

// QuoteIdentifiers quotes bare keys and then bare identifier values.
//
// Every distinct match is itself compiled as a pattern and replaced
// globally, so a short key also rewrites longer keys ending in it. Matches
// mentioning true or false are left alone.
func QuoteIdentifiers(s string) string {
	for _, m := range uniqueTrimmed(bareKey.FindAllString(s, -1)) {
		if booleanWord.MatchString(m) {
			continue
		}
		key := strings.TrimSpace(m[:len(m)-1])
		s = replaceAllLiteralPattern(s, m, `"`+key+`":`)
	}
	for _, m := range uniqueTrimmed(bareValue.FindAllString(s, -1)) {
		if booleanWord.MatchString(m) {
			continue
		}
		value := strings.TrimSpace(m[1:])
		s = replaceAllLiteralPattern(s, m, `: "`+value+`"`)
	}
	return s
}

// ReplaceLambdas swaps zero-argument block lambdas for marker objects whose
// content is the lambda source on one line with quotes flipped to '.
func ReplaceLambdas(s string) string {
	return lambda.ReplaceAllStringFunc(s, func(match string) string {
		corrected := strings.ReplaceAll(match, `"`, "'")
		corrected = trailingComma.ReplaceAllString(corrected, "$1")

		// The cut point is taken from the match, not the corrected text,
		// which is shorter when trailing commas were dropped.
		cut := len(match) - 1
		body := corrected
		last := "undefined"
		if cut < len(corrected) {
			body = corrected[:cut]
			last = corrected[cut : cut+1]
		}
		content := whitespaceRun.ReplaceAllString(`"`+body+`"`, "")
		return `{"type": "` + LambdaType + `", "content": ` + content + `}` + last
	})
}

// replaceAllLiteralPattern compiles pattern as a regular expression and
// replaces every occurrence with repl taken literally.
func replaceAllLiteralPattern(s, pattern, repl string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.ReplaceAll(s, pattern, repl)
	}
	return re.ReplaceAllLiteralString(s, repl)
}

func uniqueTrimmed(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
