// Package ingest consumes submissions from Kafka. Bulk importers and
// partner integrations publish the same payload the HTTP endpoint accepts;
// both paths converge on the service layer.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
	"pvcommunity/internal/service"
)

// Consumer reads submissions from a consumer group and feeds them to the
// service. Trusted pipeline, so no per-IP rate limiting applies.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	service *service.CommunityService
	logger  *zap.Logger
}

// NewConsumer creates consumer group client.
func NewConsumer(brokers []string, groupID, topic string, svc *service.CommunityService, logger *zap.Logger) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	cfg.Consumer.MaxWaitTime = 250 * time.Millisecond

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		service: svc,
		logger:  logger,
	}, nil
}

// Run consumes until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("consumer group error", zap.Error(err))
		}
	}()

	handler := &groupHandler{consumer: c, ctx: ctx}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close shuts down the group client.
func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) handle(ctx context.Context, raw []byte) {
	var req models.SubmitRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.logger.Warn("dropping malformed submission", zap.Error(err))
		return
	}

	resp, err := c.service.Submit(ctx, &req, "")
	if err != nil {
		// Validation failures are the producer's problem; everything else
		// is ours and worth a louder log.
		if errors.Is(err, community.ErrValidation) || errors.Is(err, community.ErrUnknownRegion) ||
			errors.Is(err, community.ErrTooManyUpdates) {
			c.logger.Warn("rejecting submission", zap.Error(err))
		} else {
			c.logger.Error("submission processing failed", zap.Error(err))
		}
		return
	}
	c.logger.Info("submission ingested",
		zap.String("anlage", resp.AnlageHash),
		zap.Int("monate", resp.AnzahlMonate),
	)
}

type groupHandler struct {
	consumer *Consumer
	ctx      context.Context
}

func (h *groupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if h.ctx.Err() != nil {
			return h.ctx.Err()
		}
		h.consumer.handle(h.ctx, message.Value)
		session.MarkMessage(message, "")
	}
	return nil
}
