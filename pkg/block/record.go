package block

// Record is the flat export shape of a block.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parentId" yaml:"parentId"`
	Data     Data   `json:"data" yaml:"data"`
}

// ToRecords converts blocks to records, keeping their order.
func ToRecords(blocks []*Block) []Record {
	out := make([]Record, len(blocks))
	for i, b := range blocks {
		out[i] = Record{ID: b.ID, ParentID: b.ParentID, Data: b.Data}
	}
	return out
}

// FromRecords converts records back to blocks. The records must describe
// exactly one tree.
func FromRecords(records []Record) ([]*Block, error) {
	out := make([]*Block, len(records))
	for i, r := range records {
		out[i] = &Block{ID: r.ID, ParentID: r.ParentID, Data: r.Data}
	}
	if len(out) == 0 {
		return out, nil
	}
	t, err := ToTree(out)
	if err != nil {
		return nil, err
	}
	detachRoot(out, t.ID)
	return out, nil
}
