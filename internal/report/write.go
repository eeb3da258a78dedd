package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rotabot/internal/domain"
)

// WriteJSON writes the full report document under outputDir and returns the
// file path.
func WriteJSON(r domain.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	filename := fmt.Sprintf("rotacion_%s_%s.json", sanitizeFilename(r.ClientName), r.Period.Start.Format("200601"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, data, 0644)
}

// WriteMarkdown writes a readable companion to the JSON document: the digest
// fact sheet plus the narrative summary when one was generated.
func WriteMarkdown(r domain.Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Rotación %s — %s\n\n", r.ClientName, r.Period.Start.Format("2006-01"))
	b.WriteString("```\n")
	b.WriteString(Digest(r))
	b.WriteString("```\n")

	if r.AISummary != nil {
		b.WriteString("\n## Diagnóstico\n\n")
		b.WriteString(r.AISummary.Summary)
		b.WriteString("\n\n## Plan de acción\n\n")
		for i, a := range r.AISummary.Actions {
			fmt.Fprintf(&b, "%d. **%s**\n   - Por qué: %s\n   - Cómo: %s\n", i+1, a.Accion, a.Porque, a.Como)
		}
	}

	filename := fmt.Sprintf("rotacion_%s_%s.md", sanitizeFilename(r.ClientName), r.Period.Start.Format("200601"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(b.String()), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
