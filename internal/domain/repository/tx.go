package repository

import "context"

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Catalog      CatalogRepository
	Customers    CustomerRepository
	Materials    MaterialTypeRepository
	Ledger       LedgerRepository
	Reservations ReservationRepository
	Orders       OrderRepository
	Tasks        TaskRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
// Las implementaciones no son reentrantes: fn no debe abrir otra transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
