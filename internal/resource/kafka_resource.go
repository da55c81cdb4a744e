package resource

import (
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/kafka"
)

// KafkaResource 共享的 kafka 客户端，按需创建 reader/writer
type KafkaResource struct {
	client *kafka.Client
}

func NewKafkaResource(cfg config.KafkaConfig) *KafkaResource {
	return &KafkaResource{client: kafka.New(cfg)}
}

func (r *KafkaResource) Client() *kafka.Client { return r.client }

func (r *KafkaResource) Close() { r.client.Close() }
