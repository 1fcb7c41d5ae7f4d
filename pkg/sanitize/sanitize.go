// Package sanitize turns arbitrary titles into file names that are valid on common file systems.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxBytes is the file name length limit of most file systems
const MaxBytes = 255

// replacer swaps characters reserved on Windows and Unix for similar looking legal ones.
var replacer = strings.NewReplacer(
	"/", "∕", // division slash
	"\\", "⧵", // reverse solidus operator
	":", "∶", // ratio
	"*", "⁎", // low asterisk
	"?", "？", // fullwidth question mark
	"\"", "'",
	"<", "ᐸ", // canadian syllabics pa
	">", "ᐳ", // canadian syllabics po
	"|", "⏐", // vertical line extension
)

// FileName sanitizes raw using the default length limit.
func FileName(raw string) string {
	return FileNameMax(raw, MaxBytes)
}

// FileNameMax returns a file name derived from raw which is at most maxBytes long when UTF-8 encoded.
// The part after the last dot is treated as an extension and is kept when the name gets truncated.
func FileNameMax(raw string, maxBytes int) string {
	name := strings.Join(strings.Fields(stripControl(raw)), " ")
	name = replacer.Replace(name)
	name = normalize(name)

	if len(name) <= maxBytes {
		return name
	}

	return normalize(truncate(name, maxBytes))
}

// stripControl drops code points below 32. Whitespace control characters become spaces,
// so "a\tb" turns into "a b" rather than "ab".
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if r < 32 {
			return -1
		}
		return r
	}, s)
}

// normalize trims the stem and the extension of a name.
func normalize(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return strings.TrimSpace(name)
	}

	stem := strings.TrimRight(strings.TrimSpace(name[:idx]), ". ")
	ext := strings.TrimSpace(name[idx+1:])
	return stem + "." + ext
}

func truncate(name string, maxBytes int) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return clip(name, maxBytes)
	}

	ext := name[idx+1:]
	budget := maxBytes - len(ext) - 1
	if budget < 0 {
		// The extension alone doesn't fit
		return clip(name, maxBytes)
	}

	return clip(name[:idx], budget) + "." + ext
}

// clip cuts s to at most n bytes without splitting a multi-byte character.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
		if len(s) <= n {
			return s
		}
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}
