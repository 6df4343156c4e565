package ai

import (
	"strings"
	"testing"
)

func TestBuildUserPrompt(t *testing.T) {
	got := buildUserPrompt("What happens at the end?", []string{"[00:10] the hero wins", "[01:30] credits roll"})

	for _, want := range []string{
		"Transcript:",
		"[00:10] the hero wins",
		"[01:30] credits roll",
		"Question: What happens at the end?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "Answer:") {
		t.Errorf("prompt should end with Answer:, got:\n%s", got)
	}
	if strings.Index(got, "Transcript:") > strings.Index(got, "Question:") {
		t.Error("transcript context must precede the question")
	}
}

func TestBuildUserPromptNoContext(t *testing.T) {
	if got := buildUserPrompt("just a question", nil); got != "just a question" {
		t.Errorf("got %q, want the bare question", got)
	}
}
