package model

import "time"

// Book represents a title in the catalog. Copies are tracked as aggregate
// counts: Quantity is the number of copies owned, Available the number that
// can currently be issued. 0 <= Available <= Quantity always holds.
type Book struct {
	ID        int64      `json:"id"`
	ISBN      string     `json:"isbn"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Quantity  int        `json:"quantity"`
	Available int        `json:"available"`
	CoverMime string     `json:"cover_mime,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
