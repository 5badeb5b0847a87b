package telegram

import "strings"

// Split breaks text into chunks of at most limit runes. It prefers to
// break at a newline, then at a space, so chunks don't cut words in
// half; a single unbroken run longer than the limit gets a hard cut.
// The chunks concatenate back to the input exactly: the separator at
// a break stays at the end of the chunk before it.
func Split(text string, limit int) []string {
	if limit < 1 {
		limit = MessageLimit
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}

		cut := limit
		window := string(runes[:limit])
		if i := strings.LastIndexByte(window, '\n'); i > 0 {
			cut = len([]rune(window[:i+1]))
		} else if i := strings.LastIndexByte(window, ' '); i > 0 {
			cut = len([]rune(window[:i+1]))
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}
