package guest

import (
	"context"
	"database/sql"
)

type snapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepository returns a Postgres-backed SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

// Save replaces the whole snapshot for the session. Position keeps the
// insertion order so a reload rebuilds the cart items in the same
// order they were added.
func (r *snapshotRepo) Save(ctx context.Context, sessionID string, items []Record) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM guest_cart_items WHERE session_id = $1`, sessionID); err != nil {
		return err
	}

	if len(items) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO guest_cart_items
  (session_id, position, guest_item_id, product_id, variant_id, size, color, price, quantity, main_image, name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, it := range items {
			if _, err = stmt.ExecContext(ctx, sessionID, i, it.GuestItemID,
				it.ProductID, it.VariantID, it.Size, it.Color,
				it.Price, it.Quantity, it.MainImage, it.Name); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

func (r *snapshotRepo) Load(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT guest_item_id, product_id, variant_id, size, color, price, quantity, main_image, name
FROM guest_cart_items
WHERE session_id = $1
ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.GuestItemID, &rec.ProductID, &rec.VariantID, &rec.Size,
			&rec.Color, &rec.Price, &rec.Quantity, &rec.MainImage, &rec.Name); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *snapshotRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM guest_cart_items WHERE session_id = $1`, sessionID)
	return err
}
