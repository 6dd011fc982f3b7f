package block

import (
	"github.com/matzehuels/blockflow/pkg/errors"
)

// maxIDAttempts bounds retries when a generator returns an id already in use.
const maxIDAttempts = 64

// Store is the authoritative, ordered list of blocks.
//
// Store is not safe for concurrent use. The interaction layer confines every
// access to a single logical thread of control.
type Store struct {
	blocks []*Block
	byID   map[string]*Block
	ids    IDGenerator
	clone  CloneFunc
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the id source. A nil generator keeps the default.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithCloner sets the payload copy function used by [Store.CopySubtree].
func WithCloner(fn CloneFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.clone = fn
		}
	}
}

// NewStore creates an empty store using UUID ids and [DeepClone] copies.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:  make(map[string]*Block),
		ids:   UUIDGenerator{},
		clone: DeepClone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Queries
// =============================================================================

// Len returns the number of blocks.
func (s *Store) Len() int { return len(s.blocks) }

// IsEmpty reports whether the store holds no blocks.
func (s *Store) IsEmpty() bool { return len(s.blocks) == 0 }

// Blocks returns the blocks in store order. The slice is a copy, the
// blocks are not: callers may update geometry but must not change ids or
// parent links.
func (s *Store) Blocks() []*Block {
	out := make([]*Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Get looks up a block by id.
func (s *Store) Get(id string) (*Block, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Root returns the root block, if any.
func (s *Store) Root() (*Block, bool) {
	for _, b := range s.blocks {
		if b.IsRoot() {
			return b, true
		}
	}
	return nil, false
}

// Children returns the direct children of id in store order.
func (s *Store) Children(id string) []*Block {
	var out []*Block
	for _, b := range s.blocks {
		if b.ParentID == id && b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// GetSubtree returns the block id followed by every descendant, in
// pre-order. It returns nil if id is not in the store.
func (s *Store) GetSubtree(id string) []*Block {
	root, ok := s.byID[id]
	if !ok {
		return nil
	}
	children := s.childIndex()
	var out []*Block
	var walk func(b *Block)
	walk = func(b *Block) {
		out = append(out, b)
		for _, c := range children[b.ID] {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Contains reports whether candidate is id itself or one of its descendants.
func (s *Store) Contains(id, candidate string) bool {
	for _, b := range s.GetSubtree(id) {
		if b.ID == candidate {
			return true
		}
	}
	return false
}

func (s *Store) childIndex() map[string][]*Block {
	idx := make(map[string][]*Block, len(s.blocks))
	for _, b := range s.blocks {
		if !b.IsRoot() {
			idx[b.ParentID] = append(idx[b.ParentID], b)
		}
	}
	return idx
}

// Tree returns the nested form of the store, or nil for an empty store.
func (s *Store) Tree() (*Tree, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	return ToTree(s.blocks)
}

// Records returns the flat export form of the store.
func (s *Store) Records() []Record {
	return ToRecords(s.blocks)
}

// =============================================================================
// Mutations
// =============================================================================

// NewID returns an id not used by any block in the store or in reserved.
func (s *Store) NewID(reserved map[string]bool) (string, error) {
	for range maxIDAttempts {
		id := s.ids.NewID()
		if id == "" {
			continue
		}
		if _, taken := s.byID[id]; taken || reserved[id] {
			continue
		}
		return id, nil
	}
	return "", errors.InvalidState("id generator produced no unused id after %d attempts", maxIDAttempts)
}

// AddRoot creates the root block. It fails with INVALID_STATE if the store
// is not empty.
func (s *Store) AddRoot(data Data) (*Block, error) {
	if !s.IsEmpty() {
		return nil, errors.InvalidState("store already has a root")
	}
	id, err := s.NewID(nil)
	if err != nil {
		return nil, err
	}
	b := &Block{ID: id, ParentID: NoParent, Data: data}
	s.insert(b)
	return b, nil
}

// AddChild appends a new child of parentID. It fails with NOT_FOUND if the
// parent does not exist.
func (s *Store) AddChild(parentID string, data Data) (*Block, error) {
	if _, ok := s.byID[parentID]; !ok {
		return nil, errors.NotFound("parent block %q not found", parentID)
	}
	id, err := s.NewID(nil)
	if err != nil {
		return nil, err
	}
	b := &Block{ID: id, ParentID: parentID, Data: data}
	s.insert(b)
	return b, nil
}

// RemoveNode removes exactly one block and relinks its direct children to
// the removed block's parent. Removing a root with more than one child
// fails with INVALID_STATE, since it would leave several roots; a root with
// a single child hands the root role to that child.
func (s *Store) RemoveNode(id string) (*Block, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("block %q not found", id)
	}
	children := s.Children(id)
	if b.IsRoot() && len(children) > 1 {
		return nil, errors.InvalidState("cannot remove root %q with %d children", id, len(children))
	}
	for _, c := range children {
		c.ParentID = b.ParentID
	}
	s.drop(map[string]bool{id: true})
	return b, nil
}

// RemoveSubtree removes id and all of its descendants and returns them in
// pre-order. An unknown id is a no-op returning nil.
func (s *Store) RemoveSubtree(id string) []*Block {
	sub := s.GetSubtree(id)
	if len(sub) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(sub))
	for _, b := range sub {
		gone[b.ID] = true
	}
	s.drop(gone)
	return sub
}

// SetParent relinks a single block. Descendants keep their links, so the
// whole subtree moves with it. Attaching a block to itself or to one of its
// descendants fails with INVALID_ARGUMENT.
func (s *Store) SetParent(id, parentID string) error {
	b, ok := s.byID[id]
	if !ok {
		return errors.NotFound("block %q not found", id)
	}
	if _, ok := s.byID[parentID]; !ok {
		return errors.NotFound("parent block %q not found", parentID)
	}
	if s.Contains(id, parentID) {
		return errors.InvalidArgument("cannot attach %q to itself or a descendant", id)
	}
	b.ParentID = parentID
	return nil
}

// CopySubtree deep-copies the subtree rooted at id and gives every copy a
// fresh id. Parent links inside the copy point at the copied parents; the
// copied root keeps its original ParentID for the caller to retarget. The
// copies are not inserted into the store.
func (s *Store) CopySubtree(id string) ([]*Block, error) {
	src := s.GetSubtree(id)
	if len(src) == 0 {
		return nil, errors.NotFound("block %q not found", id)
	}

	copies := make([]*Block, len(src))
	for i, b := range src {
		data, err := s.clone(b.Data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeHostHook, err, "clone payload of %q", b.ID)
		}
		copies[i] = &Block{
			ID:       b.ID,
			ParentID: b.ParentID,
			Data:     data,
			Position: b.Position,
			Size:     b.Size,
			Measured: b.Measured,
		}
	}

	fresh := make(map[string]bool, len(copies))
	for _, b := range copies {
		newID, err := s.NewID(fresh)
		if err != nil {
			return nil, err
		}
		fresh[newID] = true
		for _, c := range copies {
			if c.ParentID == b.ID {
				c.ParentID = newID
			}
		}
		b.ID = newID
	}
	return copies, nil
}

// Append inserts already-built blocks, such as the result of
// [Store.CopySubtree]. Every id must be new and every parent must resolve
// to a block in the store or earlier in blocks. A parentless block is only
// accepted into an empty store.
func (s *Store) Append(blocks ...*Block) error {
	seen := make(map[string]bool, len(blocks))
	hasRoot := !s.IsEmpty()
	for _, b := range blocks {
		if _, taken := s.byID[b.ID]; taken || seen[b.ID] || b.ID == "" {
			return errors.InvalidState("duplicate or empty block id %q", b.ID)
		}
		if b.IsRoot() {
			if hasRoot {
				return errors.InvalidState("store already has a root")
			}
			hasRoot = true
		} else if _, ok := s.byID[b.ParentID]; !ok && !seen[b.ParentID] {
			return errors.NotFound("parent block %q not found", b.ParentID)
		}
		seen[b.ID] = true
	}
	for _, b := range blocks {
		s.insert(b)
	}
	return nil
}

// Load replaces the store contents. The blocks must form exactly one tree.
func (s *Store) Load(blocks []*Block) error {
	if len(blocks) > 0 {
		t, err := ToTree(blocks)
		if err != nil {
			return err
		}
		detachRoot(blocks, t.ID)
	}
	s.blocks = nil
	s.byID = make(map[string]*Block, len(blocks))
	for _, b := range blocks {
		s.insert(b)
	}
	return nil
}

// Reset empties the store and returns the blocks it held.
func (s *Store) Reset() []*Block {
	out := s.blocks
	s.blocks = nil
	s.byID = make(map[string]*Block)
	return out
}

// Clone returns an independent store with copies of every block. Payloads
// and render handles are shared with the original.
func (s *Store) Clone() *Store {
	c := &Store{
		blocks: make([]*Block, len(s.blocks)),
		byID:   make(map[string]*Block, len(s.blocks)),
		ids:    s.ids,
		clone:  s.clone,
	}
	for i, b := range s.blocks {
		cb := b.clone()
		c.blocks[i] = cb
		c.byID[cb.ID] = cb
	}
	return c
}

// detachRoot clears the parent link of the block that ToTree chose as root,
// which may point outside the loaded set.
func detachRoot(blocks []*Block, rootID string) {
	for _, b := range blocks {
		if b.ID == rootID {
			b.ParentID = NoParent
			return
		}
	}
}

func (s *Store) insert(b *Block) {
	s.blocks = append(s.blocks, b)
	s.byID[b.ID] = b
}

func (s *Store) drop(gone map[string]bool) {
	kept := s.blocks[:0]
	for _, b := range s.blocks {
		if gone[b.ID] {
			delete(s.byID, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	// clear the tail so dropped blocks are not retained by the backing array
	for i := len(kept); i < len(s.blocks); i++ {
		s.blocks[i] = nil
	}
	s.blocks = kept
}
