package component

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"video-translate-service/ddd/application/app"
	"video-translate-service/ddd/application/cqe"
	"video-translate-service/ddd/application/dto"
	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

// TranslateRequestMessage kafka 中的翻译请求; 带 video_id 时按重新翻译处理
type TranslateRequestMessage struct {
	VideoID         string `json:"video_id"`
	OriginalURL     string `json:"original_url"`
	TargetLang      string `json:"target_lang"`
	TranslationMode string `json:"translation_mode"`
	UserID          string `json:"user_id"`
	Title           string `json:"title"`
}

// MessageReader *kafka.Reader 中用到的方法
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TranslateRequestConsumer 消费翻译请求并异步提交到工作池
type TranslateRequestConsumer struct {
	app                 app.TranslateApp
	reader              MessageReader
	commitOnDecodeError bool
	retryDelay          time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTranslateRequestConsumer(translateApp app.TranslateApp, reader MessageReader, commitOnDecodeError bool) *TranslateRequestConsumer {
	return &TranslateRequestConsumer{
		app:                 translateApp,
		reader:              reader,
		commitOnDecodeError: commitOnDecodeError,
		retryDelay:          time.Second,
	}
}

func (c *TranslateRequestConsumer) Name() string { return "translateRequestConsumer" }

func (c *TranslateRequestConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop(ctx)
	}()
	return nil
}

func (c *TranslateRequestConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.reader.Close()
}

func (c *TranslateRequestConsumer) loop(ctx context.Context) {
	logger.Infof("Kafka translate request consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warnf("Kafka fetch error error=%s", err.Error())
			if !c.sleep(ctx) {
				return
			}
			continue
		}
		if c.handle(ctx, msg) {
			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				logger.Warnf("Kafka commit error offset=%d error=%s", msg.Offset, err.Error())
			}
		}
	}
}

// handle 返回是否提交 offset
func (c *TranslateRequestConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	var m TranslateRequestMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		logger.Warn("Kafka message decode error", map[string]interface{}{
			"offset": msg.Offset,
			"error":  err.Error(),
		})
		return c.commitOnDecodeError
	}

	for {
		accepted, err := c.submit(ctx, &m)
		if err == nil {
			logger.Info("Kafka translate request accepted", map[string]interface{}{
				"job_id":   accepted.JobID,
				"video_id": m.VideoID,
				"offset":   msg.Offset,
			})
			return true
		}
		// 队列满时等待后重试，其余错误重试也不会成功
		if errors.Is(err, errno.ErrQueueFull) {
			if !c.sleep(ctx) {
				return false
			}
			continue
		}
		logger.Warn("Kafka translate request rejected", map[string]interface{}{
			"video_id": m.VideoID,
			"offset":   msg.Offset,
			"code":     errno.Decode(err).Code,
			"error":    err.Error(),
		})
		return true
	}
}

func (c *TranslateRequestConsumer) submit(ctx context.Context, m *TranslateRequestMessage) (*dto.JobAcceptedDTO, error) {
	if m.VideoID != "" {
		return c.app.SubmitRetranslate(ctx, &cqe.RetranslateVideoReq{
			VideoID:         m.VideoID,
			TargetLang:      m.TargetLang,
			TranslationMode: m.TranslationMode,
		})
	}
	return c.app.SubmitTranslateVideo(ctx, &cqe.TranslateVideoReq{
		OriginalURL:     m.OriginalURL,
		TargetLang:      m.TargetLang,
		TranslationMode: m.TranslationMode,
		UserID:          m.UserID,
		Title:           m.Title,
	})
}

func (c *TranslateRequestConsumer) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
