package sqlite

import (
	"context"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/pkg/idx"
)

type salesRepo struct {
	db dbtx
}

const saleColumns = `id, user_id, customer_name, customer_phone, customer_email, device_model, created_at`

func (r *salesRepo) CreateSale(ctx context.Context, s domain.Sale) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(),
		s.UserID.String(),
		s.CustomerName,
		s.CustomerPhone,
		s.CustomerEmail,
		s.DeviceModel,
		toMillis(s.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *salesRepo) ListUserSalesSince(ctx context.Context, userID idx.ID, since time.Time) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC`,
		userID.String(),
		toMillis(since),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var (
			s             domain.Sale
			rawID, rawUID string
			createdAt     int64
		)
		if err := rows.Scan(&rawID, &rawUID, &s.CustomerName, &s.CustomerPhone, &s.CustomerEmail, &s.DeviceModel, &createdAt); err != nil {
			return nil, err
		}
		if id, ok := parseID(rawID); ok {
			s.ID = id
		}
		if uid, ok := parseID(rawUID); ok {
			s.UserID = uid
		}
		s.CreatedAt = fromMillis(createdAt)
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *salesRepo) CountUserSales(ctx context.Context, userID idx.ID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sales WHERE user_id = ?`, userID.String()).Scan(&count)
	return count, err
}
