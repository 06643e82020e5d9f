package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	tracecontext "blog-moderation/pkg/context"
	"blog-moderation/pkg/logger"
)

// ErrProducerClosed 生产者已关闭
var ErrProducerClosed = errors.New("kafka producer closed")

// Producer 异步生产者
type Producer struct {
	asyncProducer sarama.AsyncProducer
	log           logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// InitProducer 初始化生产者
func InitProducer(brokers []string, log logger.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Partitioner = sarama.NewHashPartitioner
	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewProducer(producer, log), nil
}

// NewProducer 包装已有的 AsyncProducer 并启动结果消费
func NewProducer(asyncProducer sarama.AsyncProducer, log logger.Logger) *Producer {
	p := &Producer{asyncProducer: asyncProducer, log: log}
	p.wg.Add(2)
	go p.drainSuccesses()
	go p.drainErrors()
	return p
}

func (p *Producer) drainSuccesses() {
	defer p.wg.Done()
	for msg := range p.asyncProducer.Successes() {
		p.log.Debug(context.Background(), "kafka message delivered",
			logger.F("topic", msg.Topic),
			logger.F("partition", msg.Partition),
			logger.F("offset", msg.Offset))
	}
}

func (p *Producer) drainErrors() {
	defer p.wg.Done()
	for perr := range p.asyncProducer.Errors() {
		p.log.Error(context.Background(), "kafka message delivery failed",
			logger.F("topic", perr.Msg.Topic),
			logger.F("error", perr.Err.Error()))
	}
}

// SendMessage 发送原始消息
func (p *Producer) SendMessage(ctx context.Context, topic string, key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	if requestID := tracecontext.GetRequestID(ctx); requestID != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{
			Key:   []byte("X-Request-ID"),
			Value: []byte(requestID),
		})
	}

	select {
	case p.asyncProducer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishMessage JSON序列化后发送
func (p *Producer) PublishMessage(ctx context.Context, topic, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal kafka message: %w", err)
	}
	return p.SendMessage(ctx, topic, []byte(key), data)
}

// Close 关闭生产者，等待结果通道消费完毕
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.asyncProducer.Close()
	p.wg.Wait()
	return err
}
