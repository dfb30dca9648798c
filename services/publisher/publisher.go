package publisher

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message to the stream of the given source
	Publish(source string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// MessageField is the stream entry field carrying the base64 message
const MessageField = "b64_snapshot"
