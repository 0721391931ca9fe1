package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/models"
)

const feedSendBufferSize = 32

// FeedConnectionOptions wraps metadata extracted during the HTTP upgrade.
type FeedConnectionOptions struct {
	UserID        string
	Role          string
	CorrelationID string
	Context       context.Context
}

// ActivityStream fans persisted audit entries out to connected websocket
// subscribers, across nodes via redis pub/sub and NATS.
type ActivityStream interface {
	FeedPublisher
	ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions)
	Start(ctx context.Context)
}

type activityStream struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	hub         *feedHub
	nodeID      string
}

type feedEvent struct {
	Source string             `json:"source"`
	Entry  models.ActivityLog `json:"entry"`
	SentAt time.Time          `json:"sent_at"`
}

type feedHub struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	log     zerolog.Logger
}

type feedClient struct {
	conn    *websocket.Conn
	send    chan models.ActivityLog
	options FeedConnectionOptions
	stream  *activityStream
	closed  chan struct{}
	once    sync.Once
}

// NewActivityStream constructs the live audit feed. Redis and NATS are
// both optional; with neither, the feed only reaches local subscribers.
func NewActivityStream(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ActivityStream {
	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":activity"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".activity"
	}

	return &activityStream{
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "activity_stream").Logger(),
		hub: &feedHub{
			clients: make(map[*feedClient]struct{}),
			log:     logger.With().Str("component", "activity_feed_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *activityStream) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// Publish broadcasts to local subscribers and forwards the entry to the
// cross-node channels. Failures are logged, never propagated: the feed is
// fire-and-forget relative to the audit write.
func (s *activityStream) Publish(ctx context.Context, entry models.ActivityLog) {
	s.hub.broadcast(entry)

	event := feedEvent{Source: s.nodeID, Entry: entry, SentAt: time.Now().UTC()}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal activity event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish activity event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish activity event to nats")
		}
	}
}

func (s *activityStream) ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions) {
	client := &feedClient{
		conn:    conn,
		send:    make(chan models.ActivityLog, feedSendBufferSize),
		options: opts,
		stream:  s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)

	go client.writer()
	client.reader()
}

func (s *activityStream) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("activity redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *activityStream) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "libris-activity", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats activity subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain activity nats subscription")
		}
	}()
}

func (s *activityStream) handleEvent(data []byte) {
	var event feedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid activity event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Entry)
}

func (h *feedHub) register(client *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	h.log.Debug().Str("user_id", client.options.UserID).Msg("activity feed client connected")
}

func (h *feedHub) unregister(client *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	h.log.Debug().Str("user_id", client.options.UserID).Msg("activity feed client disconnected")
}

func (h *feedHub) broadcast(entry models.ActivityLog) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- entry:
		default:
			h.log.Warn().Str("user_id", client.options.UserID).Msg("dropping activity entry for slow client")
		}
	}
}

// reader drains the connection until the peer disconnects; the feed is
// one-way.
func (c *feedClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.stream.logger.Debug().Err(err).Msg("activity feed read loop ended")
			return
		}
	}
}

func (c *feedClient) writer() {
	defer c.close()

	for {
		select {
		case entry, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(entry); err != nil {
				c.stream.logger.Debug().Err(err).Msg("activity feed write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.stream.logger.Debug().Err(err).Msg("activity feed ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.stream.hub.unregister(c)
		_ = c.conn.Close()
	})
}
