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

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo implementación de CatalogRepository sobre PostgreSQL (usable con pool o tx).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// CreateLine persiste una línea de producto.
func (r *CatalogRepo) CreateLine(ctx context.Context, line *entity.Line) error {
	query := `
		INSERT INTO product_lines (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, line.ID, line.Name, line.Description, line.CreatedAt, line.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

// GetLine obtiene una línea por ID.
func (r *CatalogRepo) GetLine(ctx context.Context, id string) (*entity.Line, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM product_lines WHERE id = $1`
	var l entity.Line
	err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get line: %w", err)
	}
	return &l, nil
}

// ListLines lista las líneas por nombre.
func (r *CatalogRepo) ListLines(ctx context.Context) ([]*entity.Line, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM product_lines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.Line
	for rows.Next() {
		var l entity.Line
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// CreateSize persiste una talla. El código es único.
func (r *CatalogRepo) CreateSize(ctx context.Context, size *entity.Size) error {
	query := `
		INSERT INTO sizes (id, code, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, size.ID, size.Code, size.Description, size.CreatedAt, size.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert size: %w", err)
	}
	return nil
}

// GetSize obtiene una talla por ID.
func (r *CatalogRepo) GetSize(ctx context.Context, id string) (*entity.Size, error) {
	query := `SELECT id, code, description, created_at, updated_at FROM sizes WHERE id = $1`
	var s entity.Size
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.Code, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get size: %w", err)
	}
	return &s, nil
}

// ListSizes lista las tallas por código.
func (r *CatalogRepo) ListSizes(ctx context.Context) ([]*entity.Size, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, description, created_at, updated_at FROM sizes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Size
	for rows.Next() {
		var s entity.Size
		if err := rows.Scan(&s.ID, &s.Code, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// CreateProduct persiste el producto y su ficha técnica.
func (r *CatalogRepo) CreateProduct(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, line_id, size_id, name, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.LineID, p.SizeID, p.Name, p.UnitPrice, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	for _, m := range p.Materials {
		_, err := r.q.Exec(ctx, `
			INSERT INTO product_materials (product_id, material_type_id, quantity_per_unit)
			VALUES ($1, $2, $3)`, p.ID, m.MaterialTypeID, m.QuantityPerUnit)
		if err != nil {
			return fmt.Errorf("insert product material: %w", err)
		}
	}
	return nil
}

// GetProduct obtiene un producto con su ficha técnica.
func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, line_id, size_id, name, unit_price, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.LineID, &p.SizeID, &p.Name, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p.Materials, err = r.materials(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts lista productos por nombre, opcionalmente filtrados por línea.
func (r *CatalogRepo) ListProducts(ctx context.Context, lineID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, line_id, size_id, name, unit_price, created_at, updated_at
		FROM products
		WHERE ($1::text IS NULL OR line_id = $1::text)
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, nullable(lineID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.LineID, &p.SizeID, &p.Name, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range list {
		if p.Materials, err = r.materials(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *CatalogRepo) materials(ctx context.Context, productID string) ([]entity.MaterialRequirement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT material_type_id, quantity_per_unit
		FROM product_materials WHERE product_id = $1 ORDER BY material_type_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product materials: %w", err)
	}
	defer rows.Close()
	var list []entity.MaterialRequirement
	for rows.Next() {
		var m entity.MaterialRequirement
		if err := rows.Scan(&m.MaterialTypeID, &m.QuantityPerUnit); err != nil {
			return nil, fmt.Errorf("scan product material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
