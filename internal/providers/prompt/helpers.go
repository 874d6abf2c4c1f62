package prompt

import "strings"

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
)

const enhanceSystemPrompt = "You rewrite short image prompts for a diffusion model. " +
	"Keep the subject, add concrete lighting, composition, lens and style details, " +
	"and respond with the rewritten prompt only, without quotes or commentary."

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

// cleanModelText strips code fences and wrapping quotes some models add.
func cleanModelText(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	text = strings.Trim(text, "\"'` \n")
	return strings.Join(strings.Fields(text), " ")
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
