// internal/pipeline/prompts.go
package pipeline

import (
	"fmt"
	"strings"

	"searchbot/internal/llm"
	"searchbot/internal/search"
)

const reformulationTemplate = `You are a question answering bot. Generate search engine keywords for the user input below, in the same language as the input. Do not output anything other than the keywords. Here is the user input:
%s`

const groundingTemplate = `%s
Now summarize all of the search results below, taking the user input as the topic. Whenever your answer uses any part of a search result, attribute it by appending an inline markdown link ` + "`[source](link)`" + ` right after that part. Do not enumerate the links separately, do not add commentary such as "see the link for details", do not introduce opinions that are absent from the sources, and make sure every search result is reflected somewhere in the answer. Do not ask the user questions or introduce yourself.
Here are the search results:
%s

User input:
%s`

// reformulationMessages builds the prompt that turns a free-text query into
// search-engine keywords.
func reformulationMessages(userInput string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(reformulationTemplate, userInput)},
	}
}

// groundingMessages builds the summarization prompt: persona, attribution
// instructions, the serialized result list, and the original user input.
func groundingMessages(persona string, results []search.Result, userInput string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(groundingTemplate, persona, serializeResults(results), userInput)},
	}
}

func serializeResults(results []search.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("Title: %s\nDescription: %s\nLink: %s", r.Title, r.Description, r.URL))
	}
	return strings.Join(parts, "\n---\n")
}
