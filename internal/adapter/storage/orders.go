package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
)

var _ port.OrdersStorage = (*OrdersRepository)(nil)

type OrdersRepository struct {
	sqldb sqldb
}

func NewOrdersRepository(sqldb sqldb) OrdersRepository {
	return OrdersRepository{sqldb}
}

// StoreOrder writes the order header and its items in one transaction.
func (r OrdersRepository) StoreOrder(
	ctx context.Context, order domain.Order,
) (storeErr error) {
	const op = "OrdersRepository.StoreOrder"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	orderQuery := `
		INSERT INTO orders (
			order_id, customer_id, name, email, phone,
			address, complement, district, city, state,
			postal_code, total, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`

	reg := order.Registration
	_, err = tx.ExecContext(ctx, orderQuery,
		order.OrderID, order.CustomerID, reg.Name, reg.Email, reg.Phone,
		reg.Address, reg.Complement, reg.District, reg.City, reg.State,
		reg.PostalCode, order.Total, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert order: %w", op, err)
	}

	itemQuery := `
		INSERT INTO order_items (
			order_id, product_code, product_name, unit_price, quantity
		)
		VALUES ($1, $2, $3, $4, $5);
	`

	stmt, err := tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, it := range order.Items {
		_, err := stmt.ExecContext(ctx,
			order.OrderID, it.ProductCode, it.ProductName,
			it.UnitPrice, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to insert item: %w", op, err)
		}
	}

	return nil
}
