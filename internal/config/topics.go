package config

const (
	// TopicIngestTask is the NSQ topic for ingestion run requests.
	TopicIngestTask = "ingest.task"

	// TopicIngestResult is the NSQ topic for completed run reports.
	TopicIngestResult = "ingest.result"
)
