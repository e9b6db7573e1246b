package literature

import (
	"fmt"
	"strings"

	"github.com/avetisyan-lab/citewell/internal/model"
)

// chunkLines splits extracted text into overlapping line windows. Line
// numbers are 1-based and refer to the extracted text file, so a snippet
// can be traced back to its exact location.
func chunkLines(fileName, filePath, text string, window, overlap int) []model.Snippet {
	if window <= 0 {
		window = 6
	}
	if overlap < 0 || overlap >= window {
		overlap = 0
	}

	lines := strings.Split(text, "\n")
	var snippets []model.Snippet
	step := window - overlap

	for start := 0; start < len(lines); start += step {
		end := start + window
		if end > len(lines) {
			end = len(lines)
		}

		chunk := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if chunk != "" {
			snippets = append(snippets, model.Snippet{
				ID:        fmt.Sprintf("%s:%d-%d", fileName, start+1, end),
				Text:      chunk,
				FileName:  fileName,
				FilePath:  filePath,
				StartLine: start + 1,
				EndLine:   end,
			})
		}

		if end >= len(lines) {
			break
		}
	}
	return snippets
}
