package server

import (
	"net/http"
	"testing"

	"sublet/internal/config"
	"sublet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_ThreadsConversation(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	daniel := env.token(t, danielID)
	sofia := env.token(t, sofiaID)

	resp := env.do(t, http.MethodPost, "/api/messages", daniel, SendMessageRequest{
		ReceiverID: sofiaID,
		ListingID:  4,
		Content:    "Yes, the garden is shared but rarely used.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sent := decode[models.Message](t, resp)
	assert.Equal(t, danielID, sent.SenderID)
	assert.False(t, sent.Read)

	resp = env.do(t, http.MethodPost, "/api/messages", sofia, SendMessageRequest{
		ReceiverID: danielID,
		ListingID:  4,
		Content:    "Great, thanks!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reply := decode[models.Message](t, resp)

	resp = env.do(t, http.MethodGet, "/api/me/conversations", daniel, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convs := decode[[]models.Conversation](t, resp)
	require.Len(t, convs, 2)

	assert.Equal(t, sofiaID, convs[0].CounterpartID)
	require.NotNil(t, convs[0].Counterpart)
	assert.Equal(t, "Sofia", convs[0].Counterpart.FirstName)
	require.Len(t, convs[0].Messages, 3)
	assert.Equal(t, reply.ID, convs[0].LastMessage.ID)
	assert.Equal(t, 2, convs[0].UnreadCount)

	assert.Equal(t, jamesID, convs[1].CounterpartID)
	assert.Len(t, convs[1].Messages, 1)
}

func TestSendMessage_Validation(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	token := env.token(t, mariaID)

	tests := []struct {
		name           string
		req            SendMessageRequest
		expectedStatus int
	}{
		{name: "Empty Content", req: SendMessageRequest{ReceiverID: jamesID, Content: "   "}, expectedStatus: http.StatusBadRequest},
		{name: "To Self", req: SendMessageRequest{ReceiverID: mariaID, Content: "note to self"}, expectedStatus: http.StatusBadRequest},
		{name: "Unknown Receiver", req: SendMessageRequest{ReceiverID: 99, Content: "hi"}, expectedStatus: http.StatusNotFound},
		{name: "Unknown Listing", req: SendMessageRequest{ReceiverID: jamesID, ListingID: 99, Content: "hi"}, expectedStatus: http.StatusNotFound},
		{name: "No Listing", req: SendMessageRequest{ReceiverID: jamesID, Content: "hi"}, expectedStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/messages", token, tt.req)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestMarkConversationRead(t *testing.T) {
	t.Run("Hidden Without Flag", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		resp := env.do(t, http.MethodPost, "/api/me/conversations/2/read", env.token(t, mariaID), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Marks Incoming Messages", func(t *testing.T) {
		env := newTestEnv(t, &config.Config{FeatureFlags: "read_receipts=on"}, nil)
		token := env.token(t, mariaID)

		resp := env.do(t, http.MethodPost, "/api/me/conversations/2/read", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, decode[map[string]int](t, resp)["marked_read"])
		assert.Equal(t, 1, env.store.UnreadMessageCountFor(mariaID))

		resp = env.do(t, http.MethodPost, "/api/me/conversations/2/read", token, nil)
		assert.Equal(t, 0, decode[map[string]int](t, resp)["marked_read"])

		resp = env.do(t, http.MethodPost, "/api/me/conversations/abc/read", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
