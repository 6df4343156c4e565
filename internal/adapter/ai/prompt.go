package ai

import "fmt"

// buildUserPrompt places retrieved transcript chunks ahead of the question,
// matching the fixed template the answerer expects.
func buildUserPrompt(question string, contextChunks []string) string {
	if len(contextChunks) == 0 {
		return question
	}
	contextStr := ""
	for _, chunk := range contextChunks {
		contextStr += chunk + "\n\n"
	}
	return fmt.Sprintf("Transcript:\n%s\nQuestion: %s\n\nAnswer:", contextStr, question)
}
