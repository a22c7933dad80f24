package models

import "time"

// Message is a direct message between two users, optionally about a listing.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id" yaml:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id" yaml:"receiver_id"`
	ListingID  uint      `gorm:"index" json:"listing_id,omitempty" yaml:"listing_id,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content" yaml:"content"`
	Timestamp  time.Time `gorm:"index" json:"timestamp" yaml:"timestamp"`
	Read       bool      `gorm:"default:false" json:"read" yaml:"read"`
}

// Counterpart returns the other participant from userID's point of view.
func (m Message) Counterpart(userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation is a derived thread between a user and one counterpart.
type Conversation struct {
	CounterpartID uint      `json:"counterpart_id"`
	Counterpart   *User     `json:"counterpart,omitempty"`
	Messages      []Message `json:"messages"`
	LastMessage   Message   `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
}
