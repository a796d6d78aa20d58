package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, nameFilter string, page, pageSize int) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

const productColumns = `id, name, description, author, price, image_url, booking_id, created_at, updated_at`

type PGProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &PGProductRepository{db: db}
}

func (r *PGProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.QueryRow(ctx, `INSERT INTO products (id, name, description, author, price, image_url, booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		product.ID, product.Name, product.Description, product.Author, product.Price, product.ImageURL, product.BookingID).
		Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *PGProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "Product", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of products plus the total match count computed
// before windowing. The ordering is stable so pages advance consistently.
func (r *PGProductRepository) List(ctx context.Context, nameFilter string, page, pageSize int) ([]domain.Product, int, error) {
	where := ""
	args := []any{}
	if nameFilter != "" {
		where = ` WHERE name ILIKE $1`
		args = append(args, "%"+nameFilter+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at, id OFFSET $%d LIMIT $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	args = append(args, (page-1)*pageSize, pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

// Update rewrites the product's own fields. The booking link is owned by the
// booking repository and is never touched here.
func (r *PGProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `UPDATE products SET name=$1, description=$2, author=$3, price=$4, image_url=$5, updated_at=now()
		WHERE id=$6 RETURNING `+productColumns,
		product.Name, product.Description, product.Author, product.Price, product.ImageURL, product.ID)
	updated, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "Product", ID: product.ID}
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a product even when it is linked, silently shrinking the
// owning booking's set.
func (r *PGProductRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Author, &p.Price, &p.ImageURL, &p.BookingID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ ProductRepository = (*PGProductRepository)(nil)
