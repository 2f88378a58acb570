package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации системных событий.
const (
	RoutingInvitation  = "invitation"
	RoutingAssigned    = "assigned"
	RoutingActivated   = "activated"
	RoutingDecision    = "decision"
	RoutingPasswordKey = "password"
)

// GetNotificationQueues возвращает очереди воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.invitation", RoutingKey: RoutingInvitation},
		{QueueName: "notification.assigned", RoutingKey: RoutingAssigned},
		{QueueName: "notification.activated", RoutingKey: RoutingActivated},
		{QueueName: "notification.decision", RoutingKey: RoutingDecision},
		{QueueName: "notification.password", RoutingKey: RoutingPasswordKey},
	}
}
