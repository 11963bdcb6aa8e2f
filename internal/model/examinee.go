package model

// Examinee is a walk-up test taker, known only by an opaque station/seat
// identifier. Created lazily on first contact, never updated.
type Examinee struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
}
