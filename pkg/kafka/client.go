package kafka

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"video-translate-service/pkg/config"
	"video-translate-service/pkg/logger"
)

// Client 管理 kafka-go 的 Dialer 与按 topic 缓存的 Writer
type Client struct {
	brokers  []string
	clientID string
	dialer   *kafka.Dialer
	writers  sync.Map // topic -> *kafka.Writer
}

type rewriteResolver struct{}

// 容器内访问宿主机 broker 时把 localhost 改写为 host.docker.internal
func (rewriteResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return net.DefaultResolver.LookupHost(ctx, "host.docker.internal")
	default:
		return net.DefaultResolver.LookupHost(ctx, host)
	}
}

// New 根据配置创建客户端，不会立即建立连接
func New(cfg config.KafkaConfig) *Client {
	c := &Client{
		brokers:  cfg.BootstrapServers,
		clientID: cfg.ClientID,
		dialer: &kafka.Dialer{
			Timeout:  10 * time.Second,
			ClientID: cfg.ClientID,
		},
	}
	if cfg.RewriteLocalhost {
		c.dialer.Resolver = rewriteResolver{}
	}
	logger.Infof("Kafka client opened brokers=%v client_id=%s", c.brokers, c.clientID)
	return c
}

func (c *Client) Close() {
	c.writers.Range(func(key, value interface{}) bool {
		if w, ok := value.(*kafka.Writer); ok {
			_ = w.Close()
		}
		return true
	})
}

func (c *Client) Writer(topic string) *kafka.Writer {
	if v, ok := c.writers.Load(topic); ok {
		return v.(*kafka.Writer)
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	actual, loaded := c.writers.LoadOrStore(topic, w)
	if loaded {
		_ = w.Close()
	}
	return actual.(*kafka.Writer)
}

// Produce 发送单条消息; key 相同的消息落在同一分区
func (c *Client) Produce(ctx context.Context, topic string, key, value []byte) error {
	msg := kafka.Message{Key: key, Value: value, Time: time.Now()}
	return c.Writer(topic).WriteMessages(ctx, msg)
}

func (c *Client) Reader(topic, groupID string) *kafka.Reader {
	logger.Infof("Kafka reader created topic=%s group=%s brokers=%v", topic, groupID, c.brokers)
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.brokers,
		GroupID:  groupID,
		Topic:    topic,
		Dialer:   c.dialer,
		MinBytes: 1,
		MaxBytes: 10 << 20,
	})
}

// EnsureTopic creates the topic if it does not exist.
func (c *Client) EnsureTopic(topic string, numPartitions, replicationFactor int) error {
	if len(c.brokers) == 0 || topic == "" {
		return nil
	}
	conn, err := c.dialer.Dial("tcp", c.brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	cc, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer cc.Close()
	return cc.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
}
