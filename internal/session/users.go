package session

import (
	"context"
	"encoding/json"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/iterator"
)

// FetchUser retrieves a workspace user.
func (s *Session) FetchUser(ctx context.Context, id string) (*api.User, error) {
	path, err := objectPath("users", id)
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(data)
	if err != nil {
		return nil, s.decodeFailed("user", id, err)
	}
	return &u, nil
}

// ListUsers iterates over the users of the workspace.
func (s *Session) ListUsers() *iterator.Iterator[api.User] {
	return iterator.New(s.list("users"), decodeUser)
}

func decodeUser(data json.RawMessage) (api.User, error) {
	var u api.User
	if err := json.Unmarshal(data, &u); err != nil {
		return api.User{}, api.Schemaf("user", "%v", err)
	}
	if u.ID == "" {
		return api.User{}, api.Schemaf("user", "user without id")
	}
	return u, nil
}
