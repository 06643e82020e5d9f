package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tracecontext "blog-moderation/pkg/context"
	"blog-moderation/pkg/logger"
)

func newMockConfig() *sarama.Config {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	return config
}

func TestPublishMessage(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, newMockConfig())
	mp.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "comment-events" {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "42" {
			return fmt.Errorf("unexpected key %s", key)
		}
		value, _ := msg.Value.Encode()
		var payload map[string]string
		if err := json.Unmarshal(value, &payload); err != nil {
			return err
		}
		if payload["type"] != "comment.censored" {
			return fmt.Errorf("unexpected payload %v", payload)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "req-1" {
			return fmt.Errorf("missing request id header")
		}
		return nil
	})

	producer := NewProducer(mp, logger.NewNopLogger())
	ctx := tracecontext.WithRequestID(context.Background(), "req-1")
	require.NoError(t, producer.PublishMessage(ctx, "comment-events", "42", map[string]string{"type": "comment.censored"}))
	require.NoError(t, producer.Close())
}

func TestPublishAfterClose(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, newMockConfig())
	producer := NewProducer(mp, logger.NewNopLogger())
	require.NoError(t, producer.Close())
	require.NoError(t, producer.Close())

	err := producer.PublishMessage(context.Background(), "t", "k", "v")
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestDeliveryFailureIsDrained(t *testing.T) {
	mp := mocks.NewAsyncProducer(t, newMockConfig())
	mp.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducer(mp, logger.NewNopLogger())
	require.NoError(t, producer.SendMessage(context.Background(), "t", []byte("k"), []byte("v")))
	assert.NoError(t, producer.Close())
}
