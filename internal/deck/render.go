package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// Renderer writes a slide set to an artifact on disk and returns its path.
type Renderer interface {
	Render(content Content, customer string) (string, error)
}

// MarkdownRenderer writes decks as markdown files under a data directory,
// one heading per slide.
type MarkdownRenderer struct {
	// Dir is the output directory; created on first render.
	Dir string

	// now is swappable for tests.
	now func() time.Time
}

// NewMarkdownRenderer builds a renderer writing into dir.
func NewMarkdownRenderer(dir string) *MarkdownRenderer {
	return &MarkdownRenderer{Dir: dir, now: time.Now}
}

// Render writes the deck and returns the artifact path.
func (r *MarkdownRenderer) Render(content Content, customer string) (string, error) {
	if err := content.Validate(); err != nil {
		return "", err
	}

	now := time.Now
	if r.now != nil {
		now = r.now
	}
	ts := now()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Strategic Review\n\n", customer)
	fmt.Fprintf(&b, "Prepared %s\n", ts.Format("January 2, 2006"))

	for i := 1; i <= SlideCount; i++ {
		fmt.Fprintf(&b, "\n## %s\n\n", content.Title(i))
		for _, line := range strings.Split(content.Body(i), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fmt.Fprintf(&b, "%s\n", line)
		}
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating deck dir: %w", err)
	}

	filename := fmt.Sprintf("%s_Pitch_Deck_%s.md", safeName(customer), ts.Format("20060102_150405"))
	path := filepath.Join(r.Dir, filename)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing deck: %w", err)
	}
	return path, nil
}

// safeName strips characters that are unsafe in filenames.
func safeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
