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

type BookingRepository interface {
	CreateWithProducts(ctx context.Context, booking *domain.Booking, productIDs []uuid.UUID) error
	CreateWithNewProducts(ctx context.Context, booking *domain.Booking, products []domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, nameFilter string, page, pageSize int) ([]domain.Booking, int, error)
	Update(ctx context.Context, booking *domain.Booking, addProductIDs []uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListEmpty(ctx context.Context) ([]domain.Booking, error)
}

const bookingColumns = `id, name, delivery_address, customer_email, delivery_date, status, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateWithProducts inserts the booking and claims every listed product in a
// single transaction. A lost claim aborts the whole creation, so no partially
// linked state is ever visible.
func (r *PGBookingRepository) CreateWithProducts(ctx context.Context, booking *domain.Booking, productIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}
	if err := linkProducts(ctx, tx, booking.ID, productIDs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	products, err := loadProducts(ctx, r.db, booking.ID)
	if err != nil {
		return err
	}
	booking.Products = products
	return nil
}

// CreateWithNewProducts inserts the booking together with brand-new products
// already owned by it.
func (r *PGBookingRepository) CreateWithNewProducts(ctx context.Context, booking *domain.Booking, products []domain.Product) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}
	for i := range products {
		products[i].BookingID = &booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO products (id, name, description, author, price, image_url, booking_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at`,
			products[i].ID, products[i].Name, products[i].Description, products[i].Author,
			products[i].Price, products[i].ImageURL, products[i].BookingID).
			Scan(&products[i].CreatedAt, &products[i].UpdatedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	booking.Products = products
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "Booking", ID: id}
	}
	if err != nil {
		return nil, err
	}

	products, err := loadProducts(ctx, r.db, b.ID)
	if err != nil {
		return nil, err
	}
	b.Products = products
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, nameFilter string, page, pageSize int) ([]domain.Booking, int, error) {
	where := ""
	args := []any{}
	if nameFilter != "" {
		where = ` WHERE name ILIKE $1`
		args = append(args, "%"+nameFilter+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY created_at, id OFFSET $%d LIMIT $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)
	args = append(args, (page-1)*pageSize, pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := attachProducts(ctx, r.db, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Update rewrites the booking's mutable fields and claims any additional
// products in the same transaction. Status and created_at are never touched.
func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking, addProductIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET name=$1, delivery_address=$2, customer_email=$3, delivery_date=$4, updated_at=now()
		WHERE id=$5 RETURNING `+bookingColumns,
		booking.Name, booking.DeliveryAddress, booking.CustomerEmail, booking.DeliveryDate, booking.ID)
	updated, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Entity: "Booking", ID: booking.ID}
	}
	if err != nil {
		return err
	}

	if err := linkProducts(ctx, tx, booking.ID, addProductIDs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	*booking = *updated
	products, err := loadProducts(ctx, r.db, booking.ID)
	if err != nil {
		return err
	}
	booking.Products = products
	return nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "Booking", ID: id}
	}
	if err != nil {
		return nil, err
	}

	products, err := loadProducts(ctx, r.db, b.ID)
	if err != nil {
		return nil, err
	}
	b.Products = products
	return b, nil
}

// ListEmpty reports bookings whose product set has been emptied by product
// deletes. Used by the worker sweep.
func (r *PGBookingRepository) ListEmpty(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings b
		WHERE NOT EXISTS (SELECT 1 FROM products p WHERE p.booking_id = b.id)
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func insertBooking(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	return tx.QueryRow(ctx, `INSERT INTO bookings (id, name, delivery_address, customer_email, delivery_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Name, booking.DeliveryAddress, booking.CustomerEmail,
		booking.DeliveryDate, booking.Status, booking.CreatedAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

// linkProducts claims each product with a conditional write. A claim that
// affects no row lost the race or points at a missing product; either way the
// caller's transaction rolls back as a whole.
func linkProducts(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		cmd, err := tx.Exec(ctx, `UPDATE products SET booking_id=$1, updated_at=now()
			WHERE id=$2 AND (booking_id IS NULL OR booking_id=$1)`, bookingID, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() > 0 {
			continue
		}

		var owner *uuid.UUID
		err = tx.QueryRow(ctx, `SELECT booking_id FROM products WHERE id=$1`, id).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.NotFoundError{Entity: "Product", ID: id}
		}
		if err != nil {
			return err
		}
		if owner != nil {
			return &domain.AlreadyLinkedError{ProductID: id, OwnerID: *owner}
		}
		return fmt.Errorf("failed to link product '%s'", id)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadProducts(ctx context.Context, q querier, bookingID uuid.UUID) ([]domain.Product, error) {
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func attachProducts(ctx context.Context, q querier, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}

	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE booking_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byBooking := make(map[uuid.UUID][]domain.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return err
		}
		byBooking[*p.BookingID] = append(byBooking[*p.BookingID], *p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range bookings {
		bookings[i].Products = byBooking[bookings[i].ID]
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Name, &b.DeliveryAddress, &b.CustomerEmail, &b.DeliveryDate, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
