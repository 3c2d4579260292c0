package llm

import "github.com/nextlevelbuilder/hiveagent/internal/providers"

// charsPerToken is the same rough English-text estimate the original
// implementation fell back to when an exact tokenizer wasn't available.
const charsPerToken = 4

// CountInputTokens estimates token usage across every system/user message.
func CountInputTokens(messages []providers.Message) int {
	return countTokens(messages, "system", "user")
}

// CountOutputTokens estimates token usage across every assistant message.
func CountOutputTokens(messages []providers.Message) int {
	return countTokens(messages, "assistant")
}

func countTokens(messages []providers.Message, roles ...string) int {
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[r] = true
	}

	chars := 0
	for _, msg := range messages {
		if want[msg.Role] {
			chars += len(msg.Content)
		}
	}
	return chars / charsPerToken
}
