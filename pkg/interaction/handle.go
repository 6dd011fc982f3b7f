package interaction

import (
	"slices"
	"strings"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
)

// Handle is a palette element that can be dragged onto the canvas to create
// a block.
type Handle struct {
	ID      string     `json:"id" yaml:"id"`
	Classes []string   `json:"classes" yaml:"classes"`
	Rect    geom.Rect  `json:"rect" yaml:"rect"`
	Data    block.Data `json:"data" yaml:"data"`
}

// HasClass reports whether h carries class.
func (h Handle) HasClass(class string) bool {
	return slices.Contains(h.Classes, class)
}

// DataFromAttrs builds a payload from element attributes. Only attributes
// starting with prefix are kept; the prefix is stripped and the remaining
// key lower-cased. An empty prefix selects [DefaultAttrPrefix].
func DataFromAttrs(attrs map[string]string, prefix string) block.Data {
	if prefix == "" {
		prefix = DefaultAttrPrefix
	}
	out := block.Data{}
	for k, v := range attrs {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, prefix))
		if key == "" {
			continue
		}
		out[key] = v
	}
	return out
}

// RegisterHandle adds or replaces a palette handle.
func (i *Interaction) RegisterHandle(h Handle) error {
	if err := errors.ValidateID(h.ID); err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if idx := i.handleIndex(h.ID); idx >= 0 {
		i.handles[idx] = h
		return nil
	}
	i.handles = append(i.handles, h)
	return nil
}

// UnregisterHandle removes a palette handle. Unknown ids are ignored.
func (i *Interaction) UnregisterHandle(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if idx := i.handleIndex(id); idx >= 0 {
		i.handles = slices.Delete(i.handles, idx, idx+1)
	}
}

// Handles returns the registered handles.
func (i *Interaction) Handles() []Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.handles)
}

func (i *Interaction) handleIndex(id string) int {
	return slices.IndexFunc(i.handles, func(h Handle) bool { return h.ID == id })
}

// draggable returns the handle with id if it carries the handle class.
func (i *Interaction) draggable(id string) (Handle, bool) {
	idx := i.handleIndex(id)
	if idx < 0 || !i.handles[idx].HasClass(i.cfg.HandleClass) {
		return Handle{}, false
	}
	return i.handles[idx], true
}
