package infrastructure

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// DefaultTitleMaxLength caps sanitized titles when no limit is configured
const DefaultTitleMaxLength = 50

// SanitizeTitle turns a video title into a filesystem-safe stem: letters,
// digits, spaces and underscores survive, trailing spaces are trimmed and the
// result is capped at maxLen runes.
func SanitizeTitle(title string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultTitleMaxLength
	}

	var b strings.Builder
	for _, r := range norm.NFC.String(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}

	runes := []rune(strings.TrimRight(b.String(), " "))
	if len(runes) > maxLen {
		runes = []rune(strings.TrimRight(string(runes[:maxLen]), " "))
	}
	if len(runes) == 0 {
		return domain.DefaultTitle
	}
	return string(runes)
}

// NewOutputLayout derives every artifact path for one run
func NewOutputLayout(baseDir, title string, maxLen int) domain.OutputLayout {
	stem := SanitizeTitle(title, maxLen)
	folder := filepath.Join(ExpandPath(baseDir), stem)
	return domain.OutputLayout{
		Folder:       folder,
		Stem:         stem,
		SnapshotDir:  filepath.Join(folder, "screenshots"),
		DocumentPath: filepath.Join(folder, stem+"_screenshots.pdf"),
		SummaryPath:  filepath.Join(folder, stem+"_summary.txt"),
	}
}
