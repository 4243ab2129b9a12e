package rabbitmq

// QueueConfig описывает очередь уведомлений и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые должны существовать
// до старта планировщика и отправителя.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.reminder", RoutingKey: "reminder"},
	}
}
