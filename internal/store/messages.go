package store

import (
	"context"
	"slices"
	"strings"

	"sublet/internal/models"
)

func (s *Store) sendMessage(ctx context.Context, actor models.User, receiverID, listingID uint, content string) (msg models.Message, err error) {
	ctx, done := s.begin(ctx, collMessages, "send")
	defer func() { done(err) }()

	if strings.TrimSpace(content) == "" {
		return models.Message{}, models.NewValidationError("message content is required")
	}
	if receiverID == actor.ID {
		return models.Message{}, models.NewValidationError("cannot message yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(receiverID) < 0 {
		return models.Message{}, models.NewNotFoundError("User", receiverID)
	}
	if listingID != 0 && s.listingIndex(listingID) < 0 {
		return models.Message{}, models.NewNotFoundError("Listing", listingID)
	}

	s.lastMessageID++
	msg = models.Message{
		ID:         s.lastMessageID,
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		ListingID:  listingID,
		Content:    content,
		Timestamp:  s.now(),
	}
	s.messages = append(s.messages, msg)
	s.publishSizes()

	s.logs[collMessages].LogMutation(ctx, "send", map[string]interface{}{
		"message_id":  msg.ID,
		"sender_id":   actor.ID,
		"receiver_id": receiverID,
	})
	return msg, nil
}

// MarkConversationRead marks the messages counterpartID sent to userID as read
// and returns how many changed.
func (s *Store) MarkConversationRead(ctx context.Context, userID, counterpartID uint) (changed int, err error) {
	ctx, done := s.begin(ctx, collMessages, "mark_read")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(counterpartID) < 0 {
		return 0, models.NewNotFoundError("User", counterpartID)
	}
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == counterpartID && m.ReceiverID == userID && !m.Read {
			m.Read = true
			changed++
		}
	}

	s.logs[collMessages].LogMutation(ctx, "mark_read", map[string]interface{}{
		"user_id":        userID,
		"counterpart_id": counterpartID,
		"changed":        changed,
	})
	return changed, nil
}

// Messages returns every message in send order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// UnreadMessageCountFor counts messages received by userID that are not read.
func (s *Store) UnreadMessageCountFor(userID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.Read {
			n++
		}
	}
	return n
}

// ConversationsFor groups userID's messages by counterpart. Messages within a
// conversation ascend by timestamp; conversations descend by their last
// message. Ties keep the order in which counterparts first appear.
func (s *Store) ConversationsFor(userID uint) []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var order []uint
	threads := make(map[uint][]models.Message)
	for _, m := range s.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		other := m.Counterpart(userID)
		if _, seen := threads[other]; !seen {
			order = append(order, other)
		}
		threads[other] = append(threads[other], m)
	}

	convs := make([]models.Conversation, 0, len(order))
	for _, other := range order {
		msgs := threads[other]
		slices.SortStableFunc(msgs, func(a, b models.Message) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		unread := 0
		for _, m := range msgs {
			if m.ReceiverID == userID && !m.Read {
				unread++
			}
		}
		conv := models.Conversation{
			CounterpartID: other,
			Messages:      msgs,
			LastMessage:   msgs[len(msgs)-1],
			UnreadCount:   unread,
		}
		if i := s.userIndex(other); i >= 0 {
			u := s.users[i]
			conv.Counterpart = &u
		}
		convs = append(convs, conv)
	}

	slices.SortStableFunc(convs, func(a, b models.Conversation) int {
		return b.LastMessage.Timestamp.Compare(a.LastMessage.Timestamp)
	})
	return convs
}
