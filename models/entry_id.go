package models

import "strconv"

// EntryID is the resolved identity of a folder or file operand. Internal
// entries carry a numeric id; entries living on an external backend carry the
// deterministic hash token derived by the identity service. Exactly one side
// is set; the zero value means "no entry".
type EntryID struct {
	Num  int64
	Hash string
}

func InternalID(n int64) EntryID {
	return EntryID{Num: n}
}

func ExternalID(hash string) EntryID {
	return EntryID{Hash: hash}
}

func (e EntryID) IsZero() bool {
	return e.Num == 0 && e.Hash == ""
}

func (e EntryID) IsInternal() bool {
	return e.Hash == ""
}

// String renders the token used wherever entry ids are stored as text
// (tag links, custom order rows).
func (e EntryID) String() string {
	if e.Hash != "" {
		return e.Hash
	}
	return strconv.FormatInt(e.Num, 10)
}

// EntryType discriminates folder rows from file rows in shared bookkeeping
// tables (tag links, custom order).
type EntryType int

const (
	EntryTypeFolder EntryType = 1
	EntryTypeFile   EntryType = 2
)
