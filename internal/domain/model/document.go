package model

// DocumentBuffer is one collected PDF payload and its place in the annex.
type DocumentBuffer struct {
	Source   string
	Position int
	Data     []byte
}

// Empty reports whether the buffer carries no content.
func (b DocumentBuffer) Empty() bool {
	return len(b.Data) == 0
}

// MergedDocument is the result of concatenating collected buffers.
// A zero PageCount with nil Data is the empty artifact.
type MergedDocument struct {
	Data           []byte
	PageCount      int
	MergedSources  int
	SkippedSources []string
}

// Empty reports whether no page made it into the document.
func (d MergedDocument) Empty() bool {
	return d.PageCount == 0 || len(d.Data) == 0
}

// DocumentTemplate is a stored named PDF section (opening, closing, lobby, finishes, product annexes).
type DocumentTemplate struct {
	Name string `bson:"_id" json:"name"`
	Data []byte `bson:"data" json:"-"`
}
