package domain

type Account struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Address   string `db:"address" json:"address"`
	Mobile    string `db:"mobile" json:"mobile"`
	Email     string `db:"email" json:"email"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}
