package model

import "time"

// Message is an inbound chat message.
type Message struct {
	Text   string
	Author User
	SentAt time.Time
}
