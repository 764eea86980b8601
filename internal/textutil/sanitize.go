package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"#", "",
	"%", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeBaseName produces a rendition base name that is safe both as a file
// name and as a relative playlist URI. Whitespace runs collapse to a single
// underscore and leading dots are dropped so outputs are never hidden files.
func SanitizeBaseName(name string) string {
	name = SanitizeFileName(name)
	if name == "" {
		return ""
	}
	name = strings.Join(strings.Fields(name), "_")
	return strings.TrimLeft(name, ".")
}
