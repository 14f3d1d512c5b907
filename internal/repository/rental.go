package repository

import (
	"context"

	"github.com/blackrent/backoffice/internal/model"
	"github.com/blackrent/backoffice/pkg/db/transactor"
)

// RentalRepository exposes the rental operations the merge engine needs:
// ownership migration and the stats aggregate. Rental CRUD lives elsewhere.
type RentalRepository interface {
	ReassignOwner(ctx context.Context, sourceID string, targetID string) (int64, error)
	StatsByCustomerID(context.Context, string) (*model.CustomerStats, error)
}

type postgresRentalRepository struct {
	trx transactor.PgxTransactor
}

// NewPostgresRentalRepository builds postgres rental repository
func NewPostgresRentalRepository(trx transactor.PgxTransactor) RentalRepository {
	return &postgresRentalRepository{trx: trx}
}

// ReassignOwner repoints every rental of sourceID to targetID and reports
// how many records changed ownership
func (r *postgresRentalRepository) ReassignOwner(ctx context.Context, sourceID string, targetID string) (int64, error) {
	q := "UPDATE rentals SET customer_id = $1 WHERE customer_id = $2"
	comm, err := r.trx.Executor(ctx).Exec(ctx, q, targetID, sourceID)
	if err != nil {
		return 0, err
	}
	return comm.RowsAffected(), nil
}

func (r *postgresRentalRepository) StatsByCustomerID(ctx context.Context, id string) (*model.CustomerStats, error) {
	q := `SELECT COUNT(id), MIN(start_date), MAX(start_date), COALESCE(SUM(total_price), 0)
		  FROM rentals
		  WHERE customer_id = $1`

	var stats model.CustomerStats
	row := r.trx.Executor(ctx).QueryRow(ctx, q, id)
	if err := row.Scan(&stats.RentalCount, &stats.FirstRental, &stats.LastRental, &stats.TotalRevenue); err != nil {
		return nil, err
	}
	return &stats, nil
}
