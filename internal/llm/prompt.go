package llm

import "strings"

const systemPrompt = "You are an expert assistant that analyzes text content captured from " +
	"screenshots and clipboard and provides detailed, useful insights. You excel at " +
	"understanding context, extracting key information, and providing actionable advice."

// BuildAnalysisPrompt wraps captured text in the analysis instructions.
func BuildAnalysisPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Please analyze the following captured text content:\n\n")
	b.WriteString(text)
	b.WriteString("\n\nProvide a comprehensive analysis that includes:\n")
	b.WriteString("1. Content type identification (email, document, code, webpage content, notes, etc.)\n")
	b.WriteString("2. Key information extraction and important points\n")
	b.WriteString("3. Context and purpose assessment\n")
	b.WriteString("4. Any actionable items, tasks, or next steps\n")
	b.WriteString("5. Summary of the main content\n")
	b.WriteString("\nPlease respond in the same language as the input text when possible, ")
	b.WriteString("or in English if the language is unclear.\n")
	return b.String()
}
