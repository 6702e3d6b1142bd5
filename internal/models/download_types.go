package models

import "time"

// Download records one retrieval of a purchased asset.
type Download struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"userId" db:"user_id"`
	ProductID    string    `json:"productId" db:"product_id"`
	DownloadedAt time.Time `json:"downloadedAt" db:"downloaded_at"`
}
