package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de inventario de solo inserción.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta un asiento; seq conserva el orden de registro.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO inventory_ledger
			(id, material_type_id, entry_type, quantity, reservation_id, order_id, order_line_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.MaterialTypeID, e.Type, e.Quantity,
		nullable(e.ReservationID), nullable(e.OrderID), nullable(e.OrderLineID), e.Note, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByMaterial devuelve los asientos del material en orden de registro.
func (r *LedgerRepo) ListByMaterial(ctx context.Context, materialTypeID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, material_type_id, entry_type, quantity,
		       COALESCE(reservation_id, ''), COALESCE(order_id, ''), COALESCE(order_line_id, ''),
		       note, created_at
		FROM inventory_ledger WHERE material_type_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, materialTypeID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.MaterialTypeID, &e.Type, &e.Quantity,
			&e.ReservationID, &e.OrderID, &e.OrderLineID, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
