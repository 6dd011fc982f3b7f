package block

import (
	"fmt"

	"github.com/mitchellh/copystructure"
)

// CloneFunc deep-copies a payload. Mutating the result must never affect
// the input.
type CloneFunc func(Data) (Data, error)

// DeepClone copies d recursively, including nested maps and slices.
func DeepClone(d Data) (Data, error) {
	if d == nil {
		return nil, nil
	}
	v, err := copystructure.Copy(d)
	if err != nil {
		return nil, fmt.Errorf("clone data: %w", err)
	}
	switch c := v.(type) {
	case Data:
		return c, nil
	case map[string]any:
		return Data(c), nil
	default:
		return nil, fmt.Errorf("clone data: unexpected copy type %T", v)
	}
}
