package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
)

var _ repository.MaterialTypeRepository = (*MaterialTypeRepo)(nil)

// MaterialTypeRepo tipos de material con su saldo cacheado (usable con pool o tx).
type MaterialTypeRepo struct {
	q Querier
}

// NewMaterialTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialTypeRepository(q Querier) *MaterialTypeRepo {
	return &MaterialTypeRepo{q: q}
}

const materialColumns = `id, name, unit_measure, on_hand, reserved, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.MaterialType, error) {
	var m entity.MaterialType
	err := row.Scan(&m.ID, &m.Name, &m.UnitMeasure, &m.OnHand, &m.Reserved, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// Create persiste un tipo de material con saldo cero.
func (r *MaterialTypeRepo) Create(ctx context.Context, m *entity.MaterialType) error {
	query := `
		INSERT INTO material_types (id, name, unit_measure, on_hand, reserved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, m.UnitMeasure, m.OnHand, m.Reserved, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material type: %w", err)
	}
	return nil
}

// GetByID obtiene un material sin bloquear.
func (r *MaterialTypeRepo) GetByID(ctx context.Context, id string) (*entity.MaterialType, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM material_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material type: %w", err)
	}
	return m, nil
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE NOWAIT).
// Si otra transacción tiene la fila, falla con domain.ErrConflict en lugar de esperar.
func (r *MaterialTypeRepo) GetForUpdate(ctx context.Context, id string) (*entity.MaterialType, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM material_types WHERE id = $1 FOR UPDATE NOWAIT`, id))
	found, err := lockError(err, "material "+id)
	if !found {
		return nil, err
	}
	return m, nil
}

// List lista los materiales por nombre.
func (r *MaterialTypeRepo) List(ctx context.Context) ([]*entity.MaterialType, error) {
	rows, err := r.q.Query(ctx, `SELECT `+materialColumns+` FROM material_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list material types: %w", err)
	}
	defer rows.Close()
	var list []*entity.MaterialType
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material type: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateBalance guarda existencia y reservado. Los CHECK de la tabla rechazan saldos negativos.
func (r *MaterialTypeRepo) UpdateBalance(ctx context.Context, m *entity.MaterialType) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE material_types SET on_hand = $2, reserved = $3, updated_at = $4
		WHERE id = $1`, m.ID, m.OnHand, m.Reserved, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update material balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, m.ID)
	}
	return nil
}
