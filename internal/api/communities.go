package api

import (
	"context"
	"fmt"

	"quizzz-client/internal/domain"
)

// UserCommunities lists the memberships of a user, each with its community.
func (c *Client) UserCommunities(ctx context.Context, userID int64) ([]domain.Membership, error) {
	var out []domain.Membership
	if err := c.get(ctx, fmt.Sprintf("/api/users/%d/communities/", userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCommunity creates a community administered by the current user.
func (c *Client) CreateCommunity(ctx context.Context, in domain.CommunityCreate) (domain.Membership, error) {
	var out domain.Membership
	err := c.post(ctx, "/api/communities/create/", in, &out)
	return out, err
}

// JoinCommunity joins a community by name and password.
func (c *Client) JoinCommunity(ctx context.Context, in domain.JoinCommunity) (domain.Membership, error) {
	var out domain.Membership
	err := c.post(ctx, "/api/join-community/", in, &out)
	return out, err
}

// LeaveCommunity removes userID from a community.
func (c *Client) LeaveCommunity(ctx context.Context, communityID, userID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/communities/%d/members/%d/", communityID, userID))
}
