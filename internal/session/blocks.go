package session

import (
	"context"
	"encoding/json"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/iterator"
)

// FetchBlock retrieves a single block. Its children are not fetched.
func (s *Session) FetchBlock(ctx context.Context, id string) (*block.Block, error) {
	path, err := objectPath("blocks", id)
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	b, err := s.blockDecoder().Decode(data)
	if err != nil {
		return nil, s.decodeFailed("block", id, err)
	}
	return b, nil
}

// ListChildren iterates over the direct children of a page or block.
func (s *Session) ListChildren(parentID string) (*iterator.Iterator[*block.Block], error) {
	path, err := objectPath("blocks", parentID)
	if err != nil {
		return nil, err
	}
	dec := s.blockDecoder()
	decode := func(data json.RawMessage) (*block.Block, error) {
		b, err := dec.Decode(data)
		if err != nil {
			return nil, s.decodeFailed("block", "", err)
		}
		return b, nil
	}
	return iterator.New(s.list(path+"/children"), decode), nil
}

// LoadChildren fetches every direct child of a page or block.
func (s *Session) LoadChildren(ctx context.Context, parentID string) ([]*block.Block, error) {
	it, err := s.ListChildren(parentID)
	if err != nil {
		return nil, err
	}
	return it.Collect(ctx)
}

// AppendBlocks adds blocks, with their nested children, to the end of a
// page or block and returns the blocks the server created.
func (s *Session) AppendBlocks(ctx context.Context, parentID string, blocks ...*block.Block) ([]*block.Block, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	path, err := objectPath("blocks", parentID)
	if err != nil {
		return nil, err
	}
	children, err := block.EncodeList(blocks)
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodPatch, path+"/children", map[string]any{"children": children})
	if err != nil {
		return nil, err
	}
	resp, err := decodeList(data)
	if err != nil {
		return nil, s.decodeFailed("block", parentID, err)
	}
	created, err := s.blockDecoder().DecodeList(resp.Results)
	if err != nil {
		return nil, s.decodeFailed("block", parentID, err)
	}
	return created, nil
}

// DeleteBlock moves a block to the trash.
func (s *Session) DeleteBlock(ctx context.Context, id string) error {
	path, err := objectPath("blocks", id)
	if err != nil {
		return err
	}
	_, err = s.call(ctx, api.MethodDelete, path, nil)
	return err
}
