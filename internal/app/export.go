package app

import "strings"

const (
	exportHeader      = "# Питч-дек проекта\nСформировано с помощью FoundersPath AI\n\n"
	exportPlaceholder = "Информация отсутствует"
	exportDivider     = "\n---\n\n"

	// ExportFilename keeps the .doc extension for convenience; the content
	// is plain text.
	ExportFilename = "pitch_deck_summary.doc"
)

// ExportSummary renders the pitch deck as a flat text document: header line,
// then one "## <title>" block per artifact with a placeholder for empty
// ones. Pure read; refuses to export a completely empty deck.
func (s *Session) ExportSummary() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return "", ErrNoProject
	}

	hasContent := false
	blocks := make([]string, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		content := a.Content
		if content == "" {
			content = exportPlaceholder
		} else {
			hasContent = true
		}
		blocks = append(blocks, "## "+a.Title+"\n"+content+"\n")
	}

	if !hasContent {
		return "", ErrNothingToExport
	}

	return exportHeader + strings.Join(blocks, exportDivider), nil
}
