package dto

// CreateArticleRequest inserts one article by hand through the API.
type CreateArticleRequest struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Summary       string `json:"summary"`
	Source        string `json:"source"`
	PublishedDate string `json:"published_date"`
}

// FetchResult reports one fetch run.
type FetchResult struct {
	SourcesTried int      `json:"sources_tried"`
	Inserted     int      `json:"inserted"`
	Skipped      int      `json:"skipped"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
}

// ProcessResult reports one topic-extraction run over unprocessed articles.
type ProcessResult struct {
	ArticlesSeen   int      `json:"articles_seen"`
	Succeeded      int      `json:"succeeded"`
	Failed         int      `json:"failed"`
	TopicsLinked   int      `json:"topics_linked"`
	TopicConflicts int      `json:"topic_conflicts"`
	Errors         []string `json:"errors,omitempty"`
}

// GenerationJob is the payload queued on the generation stream.
type GenerationJob struct {
	JobID    string `json:"job_id"`
	TopicIDs []uint `json:"topic_ids"`
	Model    string `json:"model,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// GenerationRequest is the API body for enqueueing a generation job.
type GenerationRequest struct {
	TopicIDs []uint `json:"topic_ids"`
	Model    string `json:"model,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// EnqueueResponse acknowledges a queued generation job.
type EnqueueResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// GenerationNotice is one generated-article entry in a notification report.
type GenerationNotice struct {
	TopicName          string
	OutputFile         string
	ModelUsed          string
	SourceArticleCount int
	WordCount          int
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
