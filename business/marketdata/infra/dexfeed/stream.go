package dexfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stxforge/pricegraph/business/marketdata/domain"
	"github.com/stxforge/pricegraph/internal/apperror"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/wsconn"
)

// StreamConfig holds configuration for the pool update stream.
type StreamConfig struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int
}

// Stream subscribes to incremental pool updates over WebSocket.
type Stream struct {
	conn   *wsconn.Client
	logger logger.LoggerInterface
}

// NewStream creates the pool update stream.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) (*Stream, error) {
	wsCfg := wsconn.DefaultConfig(cfg.URL, "dexfeed")
	if cfg.InitialBackoff > 0 {
		wsCfg.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		wsCfg.MaxBackoff = cfg.MaxBackoff
	}
	wsCfg.MaxReconnects = cfg.MaxReconnects

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, err
	}

	return &Stream{conn: conn, logger: log}, nil
}

// updateMessage is one streamed pool update.
type updateMessage struct {
	Type string  `json:"type"`
	Pool poolDTO `json:"pool"`
}

// Start connects and subscribes to pool updates. Updates are delivered on
// handler until Close.
func (s *Stream) Start(ctx context.Context, handler func(domain.PoolRecord)) error {
	s.conn.OnMessage(func(msgCtx context.Context, msg []byte) {
		var update updateMessage
		if err := json.Unmarshal(msg, &update); err != nil {
			s.logger.Warn(msgCtx, "undecodable pool update", "error", err)
			return
		}
		if update.Type != "pool_update" {
			return
		}

		rec, err := update.Pool.toRecord()
		if err != nil {
			s.logger.Warn(msgCtx, "skipping undecodable pool update", "pool", update.Pool.PoolID, "error", err)
			return
		}
		handler(rec)
	})

	s.conn.OnStateChange(func(state wsconn.State, err error) {
		switch state {
		case wsconn.StateReconnecting:
			s.logger.Warn(ctx, "pool stream reconnecting", "error", err)
		case wsconn.StateConnected:
			s.logger.Info(ctx, "pool stream connected")
			// Re-subscribe after every (re)connect.
			sub := map[string]any{"action": "subscribe", "channel": "pools"}
			if sendErr := s.conn.SendJSON(ctx, sub); sendErr != nil {
				s.logger.Warn(ctx, "pool stream subscribe failed", "error", sendErr)
			}
		}
	})

	if err := s.conn.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeFeedSubscribeError,
			apperror.WithCause(err),
			apperror.WithContext("connecting pool stream"))
	}
	return nil
}

// Close shuts down the stream.
func (s *Stream) Close() error {
	return s.conn.Close()
}
