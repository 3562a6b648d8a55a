package types

// File is an uploaded source document stored in object storage.
// SHA256 deduplicates repeated uploads of the same bytes.
type File struct {
	ID        int64  `json:"id" db:"id"`
	UUID      string `json:"uuid" db:"uuid"`
	Name      string `json:"name" db:"name"`
	Ext       string `json:"ext" db:"ext"`
	Path      string `json:"path" db:"path"`
	Size      int64  `json:"size" db:"size"`
	SHA256    string `json:"sha256" db:"sha256"`
	UserID    string `json:"user_id" db:"user_id"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
