package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// PublishExpiryNotification публикует сведения о заканчивающейся подписке
// в exchange уведомлений для сервиса рассылки.
func PublishExpiryNotification(ch *amqp.Channel, info *models.SubscriptionExpiryInfo) error {
	const op = "rabbitmq.PublishExpiryNotification"
	body, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		NotificationsExchange,
		ExpiryRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
