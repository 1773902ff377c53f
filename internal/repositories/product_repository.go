package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"

	"github.com/lib/pq"
)

// ProductRepository defines POS product and stock persistence.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(page, pageSize int, searchTerm *string, activeOnly bool) ([]models.Product, int, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, id int64) error
	// AdjustStock applies a delta guarded by the non-negative stock constraint.
	AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error)
	InsertStockHistory(executor SQLExecutor, entry *models.StockHistory) error
	GetStockHistory(productID int64, page, pageSize int) ([]models.StockHistory, int, error)
	CountLowStock() (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, sku, price, stock, low_stock_threshold, is_active, created_at, updated_at`

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, sku, price, stock, low_stock_threshold, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := executor.QueryRow(query,
		product.Name, product.SKU, product.Price, product.Stock,
		product.LowStockThreshold, product.IsActive, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func scanProductRow(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock,
		&p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
	}
	return &p, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProductRow(r.db.QueryRow(query, id))
}

func (r *productRepository) GetProducts(page, pageSize int, searchTerm *string, activeOnly bool) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + `, COUNT(*) OVER() as total_count FROM products`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) ILIKE $%d OR LOWER(COALESCE(sku, '')) ILIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	if activeOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			offset := (page - 1) * pageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock,
			&p.LowStockThreshold, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, totalCount, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET
	            name = $1, sku = $2, price = $3, low_stock_threshold = $4, is_active = $5, updated_at = $6
	          WHERE id = $7`

	product.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		product.Name, product.SKU, product.Price, product.LowStockThreshold,
		product.IsActive, product.UpdatedAt, product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: product ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies delta to the product's stock. For negative deltas the
// stock >= -delta guard ensures the constraint is hit as zero rows affected
// rather than a check violation. Returns the resulting stock level.
func (r *productRepository) AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error) {
	query := `UPDATE products SET stock = stock + $1, updated_at = $2
	          WHERE id = $3 AND stock + $1 >= 0
	          RETURNING stock`

	var newStock int
	err := executor.QueryRow(query, delta, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrGuardFailed
		}
		return 0, fmt.Errorf("%w: adjusting stock for product %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *productRepository) InsertStockHistory(executor SQLExecutor, entry *models.StockHistory) error {
	query := `INSERT INTO stock_history (product_id, change, reason, reference, recorded_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	entry.CreatedAt = time.Now()
	err := executor.QueryRow(query,
		entry.ProductID, entry.Change, entry.Reason, entry.Reference, entry.RecordedBy, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("%w: inserting stock history: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *productRepository) GetStockHistory(productID int64, page, pageSize int) ([]models.StockHistory, int, error) {
	entries := []models.StockHistory{}
	totalCount := 0

	query := `SELECT id, product_id, change, reason, reference, recorded_by, created_at,
	                 COUNT(*) OVER() as total_count
	          FROM stock_history WHERE product_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying stock history: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.StockHistory
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.Change, &e.Reason, &e.Reference,
			&e.RecordedBy, &e.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock history: %v", ErrDatabaseError, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock history rows: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}

func (r *productRepository) CountLowStock() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products
	          WHERE low_stock_threshold IS NOT NULL AND stock <= low_stock_threshold AND is_active = TRUE`
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting low stock products: %v", ErrDatabaseError, err)
	}
	return count, nil
}
