package vision

// DefaultAnalysisPrompt is used when the caller supplies no prompt.
const DefaultAnalysisPrompt = `Analyze this image and respond in plain text:
1. Describe the overall content and layout of the image.
2. Identify any products, brands, models or technical specifications that are visible.
3. Transcribe all legible text exactly as it appears, preserving line breaks where they matter.
If something is unreadable, say so instead of guessing.`

// DefaultMaxTokens is the response budget when the caller sets none.
const DefaultMaxTokens = 1000

// Prompt returns p, or DefaultAnalysisPrompt when p is empty.
func Prompt(p string) string {
	if p == "" {
		return DefaultAnalysisPrompt
	}
	return p
}

// MaxTokens returns n, or DefaultMaxTokens when n is not positive.
func MaxTokens(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}
