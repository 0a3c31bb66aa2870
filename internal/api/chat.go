package api

import (
	"context"
	"fmt"

	"quizzz-client/internal/domain"
)

// ChatMessages returns one page of a community's chat. Page 0 is the newest page.
func (c *Client) ChatMessages(ctx context.Context, communityID int64, page int) (domain.ChatPage, error) {
	path := fmt.Sprintf("/api/communities/%d/chat/", communityID)
	if page > 0 {
		path += fmt.Sprintf("?page=%d", page)
	}
	var out domain.ChatPage
	err := c.get(ctx, path, &out)
	return out, err
}

// PostChatMessage posts a message to a community's chat.
func (c *Client) PostChatMessage(ctx context.Context, communityID int64, text string) (domain.ChatMessage, error) {
	var out domain.ChatMessage
	path := fmt.Sprintf("/api/communities/%d/chat/", communityID)
	err := c.post(ctx, path, map[string]string{"text": text}, &out)
	return out, err
}
