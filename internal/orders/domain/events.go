package domain

// Lifecycle topics. Each carries its own payload type.
const (
	TopicOrderCreated   = "order.created"
	TopicOrderConfirmed = "order.confirmed"
)

// OrderCreated is published once an order has been persisted in StatusCreated.
type OrderCreated struct {
	Order Order `json:"order"`
}

// OrderConfirmed is published once payment authorization moved an order to
// StatusConfirmed.
type OrderConfirmed struct {
	Order Order `json:"order"`
}
