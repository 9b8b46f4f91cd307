package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/domain/entity"
	"github.com/jhoicas/Confecciones-api/internal/domain/repository"
	"github.com/jhoicas/Confecciones-api/pkg/taxid"
)

// UseCase casos de uso para clientes.
type UseCase struct {
	repo repository.CustomerRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CustomerRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Create crea un nuevo cliente. El NIT/cédula se normaliza antes de comprobar que sea único.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.Invalid("name y tax_id son requeridos")
	}
	taxID, err := taxid.Normalize(in.TaxID)
	if err != nil {
		return nil, domain.Invalid("%v", err)
	}
	in.TaxID = taxID
	existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: cliente con tax_id %s", domain.ErrDuplicate, in.TaxID)
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(customer), nil
}

// GetByID obtiene un cliente.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return dto.NewCustomerResponse(c), nil
}

// List lista clientes.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NewCustomerResponse(c))
	}
	return out, nil
}
