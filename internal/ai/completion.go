package ai

// Slices splits the completion text into up to n chunks of roughly equal
// length, never breaking a multi-byte character. Short texts yield fewer
// chunks; an empty text yields none.
func (c *Completion) Slices(n int) []string {
	if n <= 0 || c.Text == "" {
		return nil
	}

	runes := []rune(c.Text)
	if len(runes) <= n {
		chunks := make([]string, 0, len(runes))
		for _, r := range runes {
			chunks = append(chunks, string(r))
		}
		return chunks
	}

	chunks := make([]string, 0, n)
	size := len(runes) / n
	remainder := len(runes) % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < remainder {
			end++
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}
