// Package block models the content blocks of a page body. Each block carries
// common metadata and a typed Content payload; types the package does not
// know decode to Unsupported, which re-encodes its source verbatim.
//
// Children are loaded lazily and only through an explicit call to
// LoadChildren, which fetches them through the block's ChildLoader.
package block

import (
	"context"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/richtext"
)

// ChildLoader fetches the children of a block or page, in API order.
type ChildLoader interface {
	LoadChildren(ctx context.Context, parentID string) ([]*Block, error)
}

// Block is a single content block.
type Block struct {
	ID             string
	Parent         api.Parent // back-reference by id
	CreatedTime    api.Timestamp
	LastEditedTime api.Timestamp
	CreatedBy      *api.User
	LastEditedBy   *api.User
	Archived       bool
	HasChildren    bool
	Content        Content

	children []*Block
	loaded   bool
	loader   ChildLoader
	src      *source // nil for blocks built locally
}

// New returns a locally built block with the given content.
func New(c Content) *Block {
	return &Block{Content: c, loaded: true}
}

// Type returns the block discriminator.
func (b *Block) Type() Type { return b.Content.BlockType() }

// Text returns the rich text body of the block, or nil for blocks without one.
func (b *Block) Text() richtext.Text {
	if t, ok := b.Content.(Texter); ok {
		return t.Text()
	}
	return nil
}

// PlainText returns the plain text of the block body.
func (b *Block) PlainText() string { return b.Text().PlainText() }

// Bind attaches the loader used by LoadChildren.
func (b *Block) Bind(loader ChildLoader) { b.loader = loader }

// Bound reports whether the block can load its children.
func (b *Block) Bound() bool { return b.loader != nil }

// Children returns the child blocks and whether they are available. A block
// without children always reports an empty, loaded sequence. It never fetches.
func (b *Block) Children() ([]*Block, bool) {
	if !b.HasChildren {
		return nil, true
	}
	return b.children, b.loaded
}

// LoadChildren returns the child blocks, fetching them on first use. The
// result is kept for the lifetime of the block. A failed fetch leaves the
// block unchanged.
func (b *Block) LoadChildren(ctx context.Context) ([]*Block, error) {
	if !b.HasChildren || b.loaded {
		return b.children, nil
	}
	if b.loader == nil {
		return nil, &api.NotBoundError{ObjectID: b.ID}
	}
	children, err := b.loader.LoadChildren(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.children, b.loaded = children, true
	return children, nil
}

// SetChildren replaces the children of a block that is being built.
func (b *Block) SetChildren(children ...*Block) {
	b.children = children
	b.HasChildren = len(children) > 0
	b.loaded = true
}

// AppendChild adds a child to a block that is being built.
func (b *Block) AppendChild(children ...*Block) {
	b.SetChildren(append(b.children, children...)...)
}

// Walk visits every block and its loaded descendants depth first. Returning false
// from fn skips the descendants of that block.
func Walk(blocks []*Block, fn func(b *Block, depth int) bool) {
	walk(blocks, 0, fn)
}

func walk(blocks []*Block, depth int, fn func(*Block, int) bool) {
	for _, b := range blocks {
		if !fn(b, depth) {
			continue
		}
		if children, ok := b.Children(); ok {
			walk(children, depth+1, fn)
		}
	}
}

// LoadAll loads the children of every block in the tree, recursively.
func LoadAll(ctx context.Context, blocks []*Block) error {
	for _, b := range blocks {
		children, err := b.LoadChildren(ctx)
		if err != nil {
			return err
		}
		if err := LoadAll(ctx, children); err != nil {
			return err
		}
	}
	return nil
}
