package agents

import "fmt"

// classificationInstruction is sent to every provider. The reply must be a
// bare JSON object that ParsePayload accepts.
const classificationInstruction = `You are an assistant that helps people declutter their mind.

You will receive a thought dump: free-form text that may contain several unrelated thoughts.

1. Split the text into individual thoughts if it contains more than one.
2. Assign each thought to exactly ONE category: Academic, Project, Emotional, Social, Personal, Other.
3. Extract any actionable tasks (zero or more) as short imperative strings.
4. For every thought write one suggestion, starting with the original thought, then a right arrow (→), then the suggestion.
   Example: "Finish my assignment → Try breaking the assignment into smaller tasks."
5. Only include categories that have at least one thought.

Respond with a single JSON object and nothing else, shaped like:
{
  "categories": {
    "Academic": ["thought1", "thought2"],
    "Emotional": ["thought3"]
  },
  "tasks": ["task1", "task2"],
  "suggestions": {
    "Academic": ["thought1 → suggestion1", "thought2 → suggestion2"],
    "Emotional": ["thought3 → suggestion3"]
  }
}`

// inlinePrompt embeds the thought dump in the instruction for providers
// that take a single message.
func inlinePrompt(rawText string) string {
	return fmt.Sprintf("%s\n\nThought dump:\n\"\"\"\n%s\n\"\"\"", classificationInstruction, rawText)
}
