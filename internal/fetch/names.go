package fetch

import (
	"path/filepath"
	"regexp"
	"strings"
)

var copySuffixPattern = regexp.MustCompile(`\s*\(\d+\)\s*`)
var extensionPattern = regexp.MustCompile(`\.xlsx$|\.xls$|\.csv$`)

// DefaultClientName is used when no input file name carries a client.
const DefaultClientName = "Cliente"

// ParseInputNames derives the client name and, when present, the Spanish
// month token from the three input file names. Conventions:
// activo_<cliente>, bajas_<cliente>, matrizrotacion_<cliente>_..._<mes>.
// Browser-style copy suffixes like " (1)" are stripped first.
func ParseInputNames(activoPath, bajasPath, matrizPath string) (clientName, monthToken string) {
	clientName = DefaultClientName
	for _, p := range []string{activoPath, bajasPath, matrizPath} {
		clean := strings.ToLower(filepath.Base(p))
		clean = copySuffixPattern.ReplaceAllString(clean, "")
		clean = extensionPattern.ReplaceAllString(clean, "")
		switch {
		case strings.HasPrefix(clean, "activo_"):
			clientName = strings.TrimPrefix(clean, "activo_")
		case strings.HasPrefix(clean, "bajas_"):
			clientName = strings.TrimPrefix(clean, "bajas_")
		case strings.HasPrefix(clean, "matrizrotacion_"):
			parts := strings.Split(strings.TrimPrefix(clean, "matrizrotacion_"), "_")
			if len(parts) >= 2 {
				if clientName == DefaultClientName {
					clientName = parts[0]
				}
				monthToken = parts[len(parts)-1]
			}
		}
	}
	if clientName != "" {
		clientName = strings.ToUpper(clientName[:1]) + clientName[1:]
	}
	return clientName, monthToken
}
