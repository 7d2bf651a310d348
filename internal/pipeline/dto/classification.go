package dto

// TopicClassification is one (parent, subtopic, tag) triple produced by the
// classifier for a single article.
type TopicClassification struct {
	ParentTopic       string `json:"parent_topic"`
	Subtopic          string `json:"subtopic"`
	ArticleTag        string `json:"article_tag"`
	Category          string `json:"category,omitempty"`
	KeyEntity         string `json:"key_entity,omitempty"`
	SMBRelevanceScore int    `json:"smb_relevance_score"`
}

// TopicExtractionResult is the full classifier response for one article.
type TopicExtractionResult struct {
	Topics []TopicClassification `json:"topics"`
}

// ParentWithSubtopics lists the existing subtopic names under one parent.
// Fed back into the extraction prompt so the classifier reuses names
// instead of inventing near-duplicates.
type ParentWithSubtopics struct {
	ParentName string   `json:"parent_name"`
	Subtopics  []string `json:"subtopics"`
}

// SynthesisResult is the long-form output produced by the synthesis model.
type SynthesisResult struct {
	Content string `json:"content"`
}
