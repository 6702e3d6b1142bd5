package store

import (
	"context"
	"fmt"

	"github.com/01moynul/vividen-storefront/internal/models"
)

// RecordDownload logs a download and bumps the product's download counter
// in one transaction.
func (s *Store) RecordDownload(ctx context.Context, userID, productID string) (*models.Download, error) {
	d := &models.Download{
		ID:           s.newID(),
		UserID:       userID,
		ProductID:    productID,
		DownloadedAt: s.timestamp(),
	}

	err := s.withTx(ctx, func(tx querier) error {
		res, err := tx.ExecContext(ctx, s.q(`UPDATE products SET download_count = download_count + 1 WHERE id = ?`), productID)
		if err != nil {
			return fmt.Errorf("count download: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}

		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO downloads (id, user_id, product_id, downloaded_at) VALUES (?, ?, ?, ?)`),
			d.ID, d.UserID, d.ProductID, d.DownloadedAt)
		if err != nil {
			return fmt.Errorf("insert download: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetUserDownloads returns the user's download history, newest first.
func (s *Store) GetUserDownloads(ctx context.Context, userID string) ([]models.Download, error) {
	query := `SELECT id, user_id, product_id, downloaded_at FROM downloads WHERE user_id = ? ORDER BY downloaded_at DESC, id DESC`
	rows, err := s.conn.QueryContext(ctx, s.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("get user downloads: %w", err)
	}
	defer rows.Close()

	downloads := []models.Download{}
	for rows.Next() {
		var d models.Download
		if err := rows.Scan(&d.ID, &d.UserID, &d.ProductID, &d.DownloadedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}
