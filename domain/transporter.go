package domain

type Transporter struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Mobile    string `db:"mobile" json:"mobile"`
	Address   string `db:"address" json:"address"`
	Details   string `db:"details" json:"details"`
	CreatedAt string `db:"created_at" json:"created_at,omitempty"`
}
