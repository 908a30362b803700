package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/cafepos_backend/config"
	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
)

// Low-stock notifications use a transactional outbox: the record is written
// inside the sale transaction, then delivered asynchronously after commit by
// the dispatcher. Delivery is best-effort and never affects the sale outcome.

const NotificationTopicLowStock = "low_stock"

type NotificationRecord struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Topic         string    `gorm:"index;size:100;not null" json:"topic"`
	Payload       []byte    `gorm:"type:json" json:"payload"`
	IsProcessed   bool      `gorm:"index;not null;default:false" json:"is_processed"`
	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type lowStockEvent struct {
	ConsumableId int             `json:"consumable_id"`
	Name         string          `json:"name"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// NotificationSink delivers one notification; fire-and-forget.
type NotificationSink interface {
	LowStock(ctx context.Context, consumableId int, name string, remaining decimal.Decimal)
}

func enqueueLowStockNotification(tx *gorm.DB, ctx context.Context, event lowStockEvent) error {
	if !config.LowStockNotificationsEnabled() {
		return nil
	}

	payload, err := utils.MarshalToJSON(event)
	if err != nil {
		return err
	}

	record := NotificationRecord{
		Topic:         NotificationTopicLowStock,
		Payload:       []byte(payload),
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

/* sinks */

// LogrusSink is always registered; low-stock events at minimum end up in the
// structured log.
type LogrusSink struct {
	Logger *logrus.Logger
}

func (s LogrusSink) LowStock(ctx context.Context, consumableId int, name string, remaining decimal.Decimal) {
	s.Logger.WithFields(logrus.Fields{
		"module":        "notification.go",
		"consumable_id": consumableId,
		"name":          name,
		"remaining":     remaining.String(),
	}).Warn("low stock")
}

// AmqpSink publishes low-stock events on the notifications fanout exchange
// when RabbitMQ is configured.
type AmqpSink struct {
	Client *config.AmqpClient
}

func (s AmqpSink) LowStock(ctx context.Context, consumableId int, name string, remaining decimal.Decimal) {
	body, err := json.Marshal(lowStockEvent{ConsumableId: consumableId, Name: name, Remaining: remaining})
	if err != nil {
		return
	}
	if err := s.Client.PublishPersistent(ctx, NotificationTopicLowStock, body); err != nil {
		config.LogError(config.GetLogger(), "notification.go", "LowStock", "amqp publish failed", consumableId, err)
	}
}

/* dispatcher */

// StartNotificationDispatcher polls the outbox and delivers pending records
// to all sinks until ctx is cancelled.
func StartNotificationDispatcher(ctx context.Context, interval time.Duration, sinks ...NotificationSink) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				dispatchPendingNotifications(ctx, sinks)
			}
		}
	}()
}

func dispatchPendingNotifications(ctx context.Context, sinks []NotificationSink) {
	db := config.GetDB()
	if db == nil {
		return
	}

	var records []NotificationRecord
	if err := db.WithContext(ctx).
		Where("is_processed = ?", false).
		Order("id ASC").
		Limit(100).
		Find(&records).Error; err != nil {
		config.LogError(config.GetLogger(), "notification.go", "dispatchPendingNotifications", "outbox fetch failed", nil, err)
		return
	}

	for _, record := range records {
		if record.Topic == NotificationTopicLowStock {
			var event lowStockEvent
			if err := utils.UnmarshalFromJSON(record.Payload, &event); err != nil {
				config.LogError(config.GetLogger(), "notification.go", "dispatchPendingNotifications", "bad payload", record.ID, err)
			} else {
				for _, sink := range sinks {
					sink.LowStock(ctx, event.ConsumableId, event.Name, event.Remaining)
				}
			}
		}

		if err := db.WithContext(ctx).Model(&NotificationRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]interface{}{
				"is_processed": true,
				"attempts":     record.Attempts + 1,
			}).Error; err != nil {
			config.LogError(config.GetLogger(), "notification.go", "dispatchPendingNotifications", "outbox mark failed", record.ID, err)
		}
	}
}
