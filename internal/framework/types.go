package framework

import "time"

// Message is the unit flowing between subscriber and processor.
type Message struct {
	ID       string
	Queue    string
	Data     []byte
	Attempts int
	Extra    map[string]interface{}
}

// SubscriberConfig controls the pull side of a worker.
type SubscriberConfig struct {
	QueueName    string
	Concurrency  int
	Rate         time.Duration
	Timeout      time.Duration
	TTR          time.Duration
	ErrorBackoff time.Duration
}

// ProcessorConfig controls the processing side of a worker.
type ProcessorConfig struct {
	Concurrency int
	BufferSize  int
	Timeout     time.Duration
}
