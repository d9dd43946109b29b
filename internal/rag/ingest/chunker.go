package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

// Separators ordered from "best" to "worst" for semantic meaning. The splitter
// prefers the latest occurrence of the best available separator inside the
// window before falling back to a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into chunks of at most limit characters where
// consecutive chunks share overlap characters. Offsets are rune-based: a cut
// never lands inside a multi-byte character, so every chunk is valid UTF-8.
// The output is a pure function of its inputs: redelivered jobs must re-chunk
// byte-for-byte identically so point ids line up and upserts overwrite
// instead of duplicating.
func SplitText(text string, limit int, overlap int) []string {
	if limit <= 0 || text == "" {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + limit
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := findCut(runes, start, end, overlap)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			// Chunk no larger than the overlap; move on without one to guarantee progress
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut returns the rune offset to cut at. A separator only wins when the
// resulting chunk stays longer than the overlap: cutting earlier would leave
// consecutive chunks sharing fewer characters than configured.
func findCut(runes []rune, start int, end int, overlap int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := utf8.RuneCountInString(window[:idx]) + len(sep)
		if cut > overlap {
			return start + cut
		}
	}
	return end
}

// PrepareChunks splits each page and assigns the document-wide sequence index
// that becomes the vector point id.
func PrepareChunks(pages []rawPage, source string) []commonModels.DocChunk {
	var allChunks []commonModels.DocChunk

	sequence := 0
	for _, page := range pages {
		stringChunks := SplitText(page.Content, config.MaxChunkSize, config.ChunkOverlap)

		for _, text := range stringChunks {
			allChunks = append(allChunks, commonModels.DocChunk{
				Content:       text,
				Source:        source,
				PageNum:       page.Number,
				SequenceIndex: sequence,
			})
			sequence++
		}
	}

	return allChunks
}
