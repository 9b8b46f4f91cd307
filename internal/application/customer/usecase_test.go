package customer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Confecciones-api/internal/application/customer"
	"github.com/jhoicas/Confecciones-api/internal/application/dto"
	"github.com/jhoicas/Confecciones-api/internal/domain"
	"github.com/jhoicas/Confecciones-api/internal/infrastructure/memory"
)

func newUseCase() *customer.UseCase {
	return customer.NewUseCase(memory.NewStore().Repos().Customers)
}

func TestCreate_NormalizaNITYRechazaDuplicados(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: " Colegio Mayor ", TaxID: "900.123.456-8"})
	require.NoError(t, err)
	assert.Equal(t, "Colegio Mayor", c.Name)
	assert.Equal(t, "900123456-8", c.TaxID)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Otro", TaxID: "900123456-8"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_DigitoDeVerificacionIncorrecto(t *testing.T) {
	_, err := newUseCase().Create(context.Background(), dto.CreateCustomerRequest{Name: "X", TaxID: "900123456-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_CamposRequeridos(t *testing.T) {
	_, err := newUseCase().Create(context.Background(), dto.CreateCustomerRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByIDYList(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()
	b, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Bravo", TaxID: "1020304050"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Alfa", TaxID: "1020304051"})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", got.Name)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alfa", list[0].Name)
}
