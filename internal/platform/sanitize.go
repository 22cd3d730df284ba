package platform

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Filename limits
const (
	// MaxBaseNameBytes leaves room for the "tmp_" prefix and an extension
	// inside the common 255 byte filename limit.
	MaxBaseNameBytes = 200

	// FallbackBaseName is used when nothing printable is left of a title
	FallbackBaseName = "audio"
)

var (
	illegalChars     = regexp.MustCompile(`[/\?<>\\:\*\|"]`)
	controlChars     = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedNames    = regexp.MustCompile(`^\.+$`)
	windowsReserved  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	windowsTrailing  = regexp.MustCompile(`[\. ]+$`)
	collapsedSpacing = regexp.MustCompile(`\s{2,}`)
)

// SanitizeFilename strips characters that are illegal in filenames on any of
// the supported platforms. The result may be empty.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = collapsedSpacing.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if reservedNames.MatchString(name) || windowsReserved.MatchString(name) {
		return ""
	}
	name = windowsTrailing.ReplaceAllString(name, "")

	return truncateUTF8(name, MaxBaseNameBytes)
}

// FileBaseName returns a filesystem-safe base name for a title, falling back
// to the content ID and then to FallbackBaseName.
func FileBaseName(title, id string) string {
	if s := SanitizeFilename(title); s != "" {
		return s
	}
	if s := SanitizeFilename(id); s != "" {
		return s
	}
	return FallbackBaseName
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
