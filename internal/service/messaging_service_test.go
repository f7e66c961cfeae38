package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartConversation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)

	second, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = env.messaging.StartConversation(ctx, env.providerUser.ID, env.provider.ID)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.messaging.StartConversation(ctx, env.client.ID, uuid.New())
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)

	msg, err := env.messaging.SendMessage(ctx, conversation.ID, env.client.ID, "  Halo kak, live jam 7 malam ya  ")
	require.NoError(t, err)
	assert.Equal(t, "Halo kak, live jam 7 malam ya", msg.Content)
	assert.False(t, msg.IsRead)

	providerNotes := env.db.notificationsFor(env.providerRecipient())
	require.Len(t, providerNotes, 1)
	assert.Equal(t, model.NotificationNewMessage, providerNotes[0].Type)
	assert.Equal(t, "Pesan baru dari Siti Rahma: Halo kak, live jam 7 malam ya", providerNotes[0].Message)
	assert.Empty(t, env.db.notificationsFor(env.clientRecipient()))

	reply, err := env.messaging.SendMessage(ctx, conversation.ID, env.providerUser.ID, "Siap kak")
	require.NoError(t, err)
	assert.Equal(t, env.providerUser.ID, reply.SenderID)

	clientNotes := env.db.notificationsFor(env.clientRecipient())
	require.Len(t, clientNotes, 1)
	assert.Contains(t, clientNotes[0].Message, "Budi Live")
}

func TestSendMessage_ContentFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)

	for _, content := range []string{
		"wa aku 081234567890",
		"email ke siti@gmail.com",
		"cek tokoku.id",
		"kode 12345",
	} {
		_, err := env.messaging.SendMessage(ctx, conversation.ID, env.client.ID, content)
		assert.ErrorIs(t, err, ErrForbiddenContent, content)
		assert.Equal(t, KindValidation, Kind(err))
	}

	assert.Zero(t, env.db.messageCount())
	assert.Zero(t, env.db.notificationCount())
}

func TestSendMessage_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)

	_, err = env.messaging.SendMessage(ctx, conversation.ID, env.client.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.messaging.SendMessage(ctx, conversation.ID, env.client.ID, strings.Repeat("a", maxMessageLength+1))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.messaging.SendMessage(ctx, conversation.ID, uuid.New(), "halo")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.messaging.SendMessage(ctx, uuid.New(), env.client.ID, "halo")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	assert.Zero(t, env.db.messageCount())
}

func TestListAndReadMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.messaging.StartConversation(ctx, env.client.ID, env.provider.ID)
	require.NoError(t, err)

	for _, text := range []string{"satu", "dua", "tiga"} {
		_, err := env.messaging.SendMessage(ctx, conversation.ID, env.client.ID, text)
		require.NoError(t, err)
	}

	latest, err := env.messaging.ListMessages(ctx, conversation.ID, env.providerUser.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "tiga", latest[0].Content)

	_, err = env.messaging.ListMessages(ctx, conversation.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, ErrForbidden)

	// Свои сообщения не отмечаются прочитанными
	count, err := env.messaging.MarkConversationRead(ctx, conversation.ID, env.client.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = env.messaging.MarkConversationRead(ctx, conversation.ID, env.providerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "pendek", preview("pendek"))

	long := strings.Repeat("é", messagePreviewRunes+10)
	p := preview(long)
	assert.Equal(t, messagePreviewRunes+1, len([]rune(p)))
	assert.True(t, strings.HasSuffix(p, "…"))
}
