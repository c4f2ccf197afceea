package service

// DefaultChunkSize is the fixed chunk length, in runes, used when no
// size is configured.
const DefaultChunkSize = 1000

// ChunkText splits text into fixed-size rune chunks with no overlap.
// Every rune of the input lands in exactly one chunk, so concatenating
// the chunks reproduces the original text. The last chunk may be
// shorter than size.
func ChunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
