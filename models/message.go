package models

import "time"

// Message is immutable after creation except for the read flag, which only
// ever transitions false -> true.
type Message struct {
	MessageID  string    `json:"messageid" bson:"messageid"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	ReceiverID string    `json:"receiverId" bson:"receiverId"`
	Body       string    `json:"message" bson:"message"`
	Read       bool      `json:"read" bson:"read"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// ConversationSummary is one row of the conversation list: the counterpart,
// their profile snippet, and the most recent message exchanged with them.
type ConversationSummary struct {
	CounterpartID string      `json:"_id" bson:"_id"`
	LastMessage   string      `json:"lastMessage" bson:"lastMessage"`
	Timestamp     time.Time   `json:"timestamp" bson:"timestamp"`
	OtherUser     UserSnippet `json:"otherUser" bson:"otherUser"`
}
