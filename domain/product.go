package domain

// Product tracks two independent cylinder pools: full (filled with gas) and
// empty. FullStock and EmptyStock are the opening counts for the current
// financial year; running stock is derived, never written back.
type Product struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	FullStock   int64  `db:"full_stock" json:"fullStock"`
	EmptyStock  int64  `db:"empty_stock" json:"emptyStock"`
	CreatedAt   string `db:"created_at" json:"created_at,omitempty"`
}
