package telegram

import "context"

// ChatSharer posts reports to one configured chat.
type ChatSharer struct {
	client *Client
	chatID int64
}

// NewChatSharer creates a ChatSharer.
func NewChatSharer(client *Client, chatID int64) *ChatSharer {
	return &ChatSharer{client: client, chatID: chatID}
}

func (s *ChatSharer) Name() string { return "telegram" }

// Share sends text to the chat.
func (s *ChatSharer) Share(ctx context.Context, text string) error {
	_, err := s.client.SendText(ctx, s.chatID, text)
	return err
}
