package domain

import "time"

// UploadedImage is a training input held in an ordered per-scope sequence.
type UploadedImage struct {
	ID         string    `json:"id"`
	URI        string    `json:"uri"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
