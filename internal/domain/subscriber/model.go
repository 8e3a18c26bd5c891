package subscriber

import "time"

// Subscriber is one registered push delivery address.
type Subscriber struct {
	ID        int64
	PushToken string
	Active    bool
	CreatedAt time.Time
}
