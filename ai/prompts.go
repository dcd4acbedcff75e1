package ai

import "fmt"

func writeEssayPrompt(topic, outline string) string {
	return fmt.Sprintf(`Write a short essay on the topic: %s

Follow this outline:
%s

Write in clear, natural prose without headings or markup.`, topic, outline)
}

func checkEssayPrompt(text string) string {
	return fmt.Sprintf(`Check the essay for mistakes and give recommendations:

1. Spelling mistakes
2. Punctuation mistakes
3. Style problems
4. Logical inconsistencies
5. Recommendations for improvement

Essay to check:
%s

Provide the answer in a structured form.`, text)
}
