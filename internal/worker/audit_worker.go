package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/St1cky1/user-service/internal/entity"
	"github.com/St1cky1/user-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const auditQueueName = "user_audit_logs"

type AuditWorker struct {
	amqpURL   string
	auditRepo repository.IUserAuditRepository
}

func NewAuditWorker(amqpURL string, auditRepo repository.IUserAuditRepository) *AuditWorker {
	return &AuditWorker{
		amqpURL:   amqpURL,
		auditRepo: auditRepo,
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	// Создаем отдельное соединение и канал для consumer'а
	conn, err := amqp.Dial(w.amqpURL)
	if err != nil {
		log.Printf("❌ Ошибка подключения к RabbitMQ для воркера: %v", err)
		return
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		log.Printf("❌ Ошибка создания канала для воркера: %v", err)
		return
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	_, err = channel.QueueDeclare(
		auditQueueName, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		log.Printf("❌ Ошибка объявления очереди: %v", err)
		return
	}

	// Создаем consumer для очереди
	msgs, err := channel.Consume(
		auditQueueName, // queue
		"audit_worker", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		log.Printf("❌ Ошибка создания consumer: %v", err)
		return
	}

	fmt.Println("✅ Audit Worker запущен. Ожидаем сообщения...")

	// Обрабатываем сообщения
	for {
		select {
		case <-ctx.Done():
			fmt.Println("🛑 Audit Worker остановлен")
			return
		case msg, ok := <-msgs:
			if !ok {
				fmt.Println("📨 Канал сообщений закрыт")
				return
			}
			w.processMessage(msg)
		}
	}
}

func (w *AuditWorker) processMessage(msg amqp.Delivery) {
	ctx := context.Background()

	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		log.Printf("❌ Ошибка парсинга сообщения: %v", err)
		msg.Nack(false, false) // Не возвращаем в очередь
		return
	}

	// 2. Конвертируем в UserAudit
	userAudit, err := convertToUserAudit(&auditMsg)
	if err != nil {
		log.Printf("❌ Ошибка конвертации: %v", err)
		msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 3. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, userAudit); err != nil {
		log.Printf("❌ Ошибка сохранения аудита: %v", err)
		msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 4. Подтверждаем обработку
	msg.Ack(false)
	log.Printf("✅ Аудит сохранен: %s пользователь ID=%d", userAudit.Action, userAudit.EntityID)
}

func convertToUserAudit(msg *entity.AuditMessage) (*entity.UserAudit, error) {
	// Конвертируем map[string]any в JSON строки
	oldValuesJSON, err := marshalValues(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValuesJSON, err := marshalValues(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changesJSON, err := marshalValues(msg.Changes)
	if err != nil {
		return nil, err
	}

	return &entity.UserAudit{
		Action:     msg.Action,
		EntityType: "user",
		EntityID:   msg.EntityID,
		OldValues:  oldValuesJSON,
		NewValues:  newValuesJSON,
		Changes:    changesJSON,
		ChangedAt:  msg.Timestamp,
	}, nil
}

func marshalValues(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
