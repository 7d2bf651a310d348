package common

const (
	// RedisStreamTopicGeneration carries queued synthesis jobs from the API
	// to the generation consumer.
	RedisStreamTopicGeneration = "topic.generation"

	RedisStreamGroup    = "pipeline-group"
	RedisStreamConsumer = "pipeline-consumer"
)
