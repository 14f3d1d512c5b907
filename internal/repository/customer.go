package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/blackrent/backoffice/internal/model"
	"github.com/blackrent/backoffice/pkg/db/transactor"
)

// CustomerRepository provides access to customer records
type CustomerRepository interface {
	FindAll(context.Context) ([]*model.Customer, error)
	FindAllWithStats(context.Context) ([]*model.CustomerWithStats, error)
	FindByID(context.Context, string) (*model.Customer, error)
	FindByIDForUpdate(context.Context, string) (*model.Customer, error)
	Create(context.Context, *model.Customer) error
	Update(context.Context, *model.Customer) error
	DeleteByID(context.Context, string) (bool, error)
}

type postgresCustomerRepository struct {
	trx transactor.PgxTransactor
}

// NewPostgresCustomerRepository builds postgres customer repository
func NewPostgresCustomerRepository(trx transactor.PgxTransactor) CustomerRepository {
	return &postgresCustomerRepository{trx: trx}
}

func (r *postgresCustomerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	q := "SELECT id, name, email, phone, created_at FROM customers WHERE id = $1"
	row := r.trx.Executor(ctx).QueryRow(ctx, q, id)
	return r.scanRow(row)
}

// FindByIDForUpdate locks the customer row for the rest of the surrounding
// transaction, serializing concurrent merges touching the same customer
func (r *postgresCustomerRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Customer, error) {
	q := "SELECT id, name, email, phone, created_at FROM customers WHERE id = $1 FOR UPDATE"
	row := r.trx.Executor(ctx).QueryRow(ctx, q, id)
	return r.scanRow(row)
}

func (r *postgresCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	q := "SELECT id, name, email, phone, created_at FROM customers ORDER BY created_at"

	rows, err := r.trx.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAllWithStats reads the whole customer population together with rental
// aggregates in a single query, so duplicate scans never fan out per customer
func (r *postgresCustomerRepository) FindAllWithStats(ctx context.Context) ([]*model.CustomerWithStats, error) {
	q := `SELECT c.id, c.name, c.email, c.phone, c.created_at,
				 COUNT(r.id) AS rental_count,
				 MIN(r.start_date) AS first_rental,
				 MAX(r.start_date) AS last_rental,
				 COALESCE(SUM(r.total_price), 0) AS total_revenue
		  FROM customers c
		  LEFT JOIN rentals r ON r.customer_id = c.id
		  GROUP BY c.id
		  ORDER BY c.created_at`

	rows, err := r.trx.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*model.CustomerWithStats, 0)
	for rows.Next() {
		var c model.CustomerWithStats
		err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
			&c.Stats.RentalCount, &c.Stats.FirstRental, &c.Stats.LastRental, &c.Stats.TotalRevenue,
		)
		if err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *postgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	q := "INSERT INTO customers(id, name, email, phone, created_at) VALUES($1, $2, $3, $4, $5)"
	if _, err := r.trx.Executor(ctx).Exec(ctx, q, c.ID, c.Name, c.Email, c.Phone, c.CreatedAt); err != nil {
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	q := "UPDATE customers SET name = $1, email = $2, phone = $3 WHERE id = $4"
	if _, err := r.trx.Executor(ctx).Exec(ctx, q, c.Name, c.Email, c.Phone, c.ID); err != nil {
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	q := "DELETE FROM customers WHERE id = $1"
	comm, err := r.trx.Executor(ctx).Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return comm.RowsAffected() > 0, nil
}

func (r *postgresCustomerRepository) scanRow(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
