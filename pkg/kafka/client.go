// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"art-gallery-go/internal/config"
	"art-gallery-go/pkg/database"
	"art-gallery-go/pkg/log"
	"art-gallery-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// FileDeleter 定义了消费者删除单个遗留文件所需的能力。
// 通过接口解耦，消费者无需依赖具体的存储后端实现。
type FileDeleter interface {
	DeleteFile(ctx context.Context, galleryID uint, fileName string) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// PublishCleanupTask 发送一个文件清理任务到 Kafka。
func PublishCleanupTask(task tasks.FileCleanupTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = producer.WriteMessages(context.Background(),
		kafka.Message{
			Value: taskBytes,
		},
	)
	return err
}

// StartCleanupConsumer 启动一个 Kafka 消费者，重试级联删除遗留文件的清理。
// 每条消息对应一个画廊的遗留文件列表；单个文件删除失败不会影响其他文件。
func StartCleanupConsumer(cfg config.KafkaConfig, deleter FileDeleter) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "art-gallery-cleanup-consumer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 清理消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("从 Kafka 读取消息失败", err)
			break // 退出循环，可能需要重启策略
		}

		var task tasks.FileCleanupTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		log.Infof("开始处理文件清理任务: galleryID=%d, 文件数=%d", task.GalleryID, len(task.FileNames))
		var remaining []string
		for _, name := range task.FileNames {
			if err := deleter.DeleteFile(context.Background(), task.GalleryID, name); err != nil {
				log.Warnf("清理遗留文件失败: galleryID=%d, file=%s, error: %v", task.GalleryID, name, err)
				remaining = append(remaining, name)
			}
		}

		if len(remaining) == 0 {
			log.Infof("文件清理任务处理成功: galleryID=%d", task.GalleryID)
			_ = database.RDB.Del(context.Background(), cleanupAttemptsKey(task.GalleryID)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
			continue
		}

		// 使用 Redis 计数失败次数，达到阈值后提交 offset 终止重试
		attempts, incErr := database.RDB.Incr(context.Background(), cleanupAttemptsKey(task.GalleryID)).Result()
		if incErr == nil {
			_ = database.RDB.Expire(context.Background(), cleanupAttemptsKey(task.GalleryID), 24*time.Hour).Err()
		} else {
			// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
			continue
		}
		if attempts >= 3 {
			log.Errorf("文件清理任务多次失败(>=3)，提交 offset 终止重试: galleryID=%d, 遗留文件: %v", task.GalleryID, remaining)
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
		// attempts < 3 时，不提交 offset 让 Kafka 自动重试
	}

	if err := r.Close(); err != nil {
		log.Fatalf("关闭 Kafka 消费者失败: %v", err)
	}
}

func cleanupAttemptsKey(galleryID uint) string {
	return fmt.Sprintf("kafka:cleanup:attempts:%d", galleryID)
}
