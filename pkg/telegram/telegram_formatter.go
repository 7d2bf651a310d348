package telegram

import (
	"fmt"
	"strings"

	"golang-legal-news-pipeline/internal/pipeline/dto"
)

// FormatGenerationReport formats generation notices into Markdown messages
// for Telegram, splitting into numbered parts so no message exceeds the
// Telegram length cap.
func FormatGenerationReport(notices []dto.GenerationNotice) []string {
	if len(notices) == 0 {
		return []string{"No articles were generated in this run."}
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder
	part := 1

	startNewPart := func() {
		currentMessage.Reset()
		var header string
		if part == 1 {
			header = "📄 *Legal News Generation Report*\n\n"
		} else {
			header = fmt.Sprintf("---*Generation Report Part %d*---\n\n", part)
		}
		currentMessage.WriteString(header)
	}

	startNewPart()

	for _, n := range notices {
		var entryBuilder strings.Builder
		entryBuilder.WriteString(fmt.Sprintf("📌 *%s*\n", n.TopicName))
		entryBuilder.WriteString(fmt.Sprintf("🧾 Sources: %d\n", n.SourceArticleCount))
		entryBuilder.WriteString(fmt.Sprintf("✍️ Words: %d\n", n.WordCount))
		if n.ModelUsed != "" {
			entryBuilder.WriteString(fmt.Sprintf("🤖 Model: `%s`\n", n.ModelUsed))
		}
		if n.OutputFile != "" {
			entryBuilder.WriteString(fmt.Sprintf("📁 `%s`\n", n.OutputFile))
		}
		entryBuilder.WriteString("\n")

		entry := entryBuilder.String()
		if currentMessage.Len()+len(entry) > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entry)
	}

	if currentMessage.Len() > 0 {
		messages = append(messages, currentMessage.String())
	}
	return messages
}
