package repository

import (
	"fmt"
	"strings"

	"golang-legal-news-pipeline/internal/entity"
	"golang-legal-news-pipeline/internal/pipeline/dto"
)

const maxPromptContentChars = 8000

// BuildExtractTopicsPrompt asks the classifier for 1-3 legal topics per
// article, as a two-level hierarchy with a per-article tag and an SMB
// relevance score. The existing hierarchy is included so the model reuses
// names instead of inventing near-duplicates; exact-match dedup happens
// downstream, semantic dedup is the model's job.
func BuildExtractTopicsPrompt(article entity.Article, existing []dto.ParentWithSubtopics) string {
	var hierarchyBuilder strings.Builder
	if len(existing) == 0 {
		hierarchyBuilder.WriteString("(none yet)\n")
	}
	for _, parent := range existing {
		hierarchyBuilder.WriteString(fmt.Sprintf("- %s\n", parent.ParentName))
		for _, sub := range parent.Subtopics {
			hierarchyBuilder.WriteString(fmt.Sprintf("  - %s\n", sub))
		}
	}

	content := article.Content
	if content == "" {
		content = article.Summary
	}
	if len(content) > maxPromptContentChars {
		content = content[:maxPromptContentChars]
	}

	return fmt.Sprintf(`You are a Canadian legal-news analyst. Extract 1-3 primary legal topics from the article below using a TWO-LEVEL hierarchy and score their relevance to small and medium businesses (SMBs).

Rules:
- parent_topic: broad legal category (e.g., "Employment Law", "Contract Law", "Privacy Law")
- subtopic: specific focus area within the parent, 2-4 words (e.g., "Wrongful Dismissal")
- article_tag: the specific angle of THIS article within the subtopic, a short free-text phrase
- key_entity: case citation, bill number, or named party when one anchors the topic, otherwise empty
- smb_relevance_score: integer 0-10 (8-10 direct SMB impact, 5-7 moderate, 0-4 low)
- REUSE names from the existing hierarchy below whenever the meaning matches; only create a new parent or subtopic when nothing existing fits

Existing hierarchy:
%s
Article title: %s
Source: %s
Published: %s

Article content:
%s

Respond with JSON only, in this structure:
{
  "topics": [
    {
      "parent_topic": "Employment Law",
      "subtopic": "Wrongful Dismissal",
      "article_tag": "pregnancy leave dismissal",
      "category": "employment law",
      "key_entity": "Smith v. Jones",
      "smb_relevance_score": 9
    }
  ]
}`, hierarchyBuilder.String(), article.Title, article.Source, article.PublishedDate, content)
}

// BuildSynthesizePrompt asks the synthesis model to merge the grouped
// articles into one long-form piece for an SMB audience.
func BuildSynthesizePrompt(topicName string, articles []entity.Article) string {
	var sourcesBuilder strings.Builder
	for i, a := range articles {
		content := a.Content
		if content == "" {
			content = a.Summary
		}
		if len(content) > maxPromptContentChars {
			content = content[:maxPromptContentChars]
		}
		sourcesBuilder.WriteString(fmt.Sprintf(
			"--- Source %d ---\nTitle: %s\nSource: %s\nPublished: %s\nAngle: %s\n\n%s\n\n",
			i+1, a.Title, a.Source, a.PublishedDate, a.ArticleTag, content,
		))
	}

	return fmt.Sprintf(`You are a legal writer for Canadian small and medium business owners. Synthesize the source articles below into one original long-form article about "%s".

Requirements:
- Plain language; explain legal terms on first use
- Lead with what changed and why an SMB owner should care
- Merge overlapping coverage; attribute distinct facts to their sources by name
- 800-1200 words, markdown, with section headings
- End with a short "What this means for your business" section

%s
Write the article now. Respond with markdown only, no preamble.`, topicName, sourcesBuilder.String())
}
