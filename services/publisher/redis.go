package publisher

import (
	"context"
	"encoding/base64"

	"sjsage522/contestharvester/logger"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using one Redis stream per source
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	streamPrefix    string
	streamMaxLength int
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
		log:             logger.ForPublisher(),
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping() error {
	return p.client.Ping(p.ctx).Err()
}

// StreamName returns the stream a source publishes to, e.g. contests:ics
func (p *RedisPublisher) StreamName(source string) string {
	return p.streamPrefix + ":" + source
}

// Publish publishes a message to the source's Redis stream.
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(source string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	return p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.StreamName(source),
		Values: map[string]interface{}{
			MessageField: encodedMessage,
		},
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	streams, err := p.client.Keys(p.ctx, p.streamPrefix+":*").Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		removed, err := p.client.XTrimMaxLen(p.ctx, stream, int64(p.streamMaxLength)).Result()
		if err != nil {
			p.log.Warn().Err(err).Str("stream", stream).Msg("Failed to trim stream")
			return err
		}
		if removed > 0 {
			p.log.Debug().Str("stream", stream).Int64("removed", removed).Msg("Trimmed stream")
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
