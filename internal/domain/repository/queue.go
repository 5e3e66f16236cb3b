package repository

import "context"

// PrefetchTask asks the worker to warm one clip into the asset cache.
type PrefetchTask struct {
	ClipURL string `json:"clip_url"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishPrefetchTask sends a cache warm-up task to the queue.
	// Used by the API server when a clip enters a cart.
	PublishPrefetchTask(ctx context.Context, task PrefetchTask) error

	// ConsumePrefetchTasks starts consuming warm-up tasks from the queue.
	// The handler function is called for each received task.
	// Returns when context is cancelled or the channel is closed.
	// Used by the worker service.
	ConsumePrefetchTasks(ctx context.Context, handler func(task PrefetchTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
