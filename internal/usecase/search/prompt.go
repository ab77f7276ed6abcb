package search

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are the search assistant of a personal digital garden of articles, notes and projects.
Answer the visitor's question using only the numbered content items provided.
Respond with a single JSON object and nothing else:
{"answer": "<short answer>", "results": [{"id": "<item id>", "type": "<article|note|project>", "title": "<item title>", "relevanceScore": <0..1>, "reason": "<why it matches>"}]}
Only reference ids that appear in the provided items. Order results from most to least relevant.
If nothing matches, return an empty results array and say so in the answer.`

// SystemPrompt returns the fixed instructions sent with every query.
func SystemPrompt() string { return systemPrompt }

// UserPrompt combines the query with the serialized context window.
func UserPrompt(query, windowText string) string {
	if strings.TrimSpace(windowText) == "" {
		windowText = "(no content available)"
	}
	return fmt.Sprintf("Question: %s\n\nContent items:\n%s", query, windowText)
}
