package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSKUExists  = errors.New("product SKU already exists")
	ErrProductValidation = errors.New("product data validation error")
	ErrProductInUse      = errors.New("product has stock or payment history and cannot be deleted")
	ErrInsufficientStock = errors.New("insufficient stock for sale")
	ErrSaleValidation    = errors.New("sale data validation error")
)

// --- Product DTOs ---

type CreateProductRequest struct {
	Name              string  `json:"name" binding:"required"`
	SKU               *string `json:"sku"`
	Price             float64 `json:"price" binding:"required"`
	Stock             int     `json:"stock"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	IsActive          *bool   `json:"is_active"`
}

type UpdateProductRequest struct {
	Name              *string  `json:"name"`
	SKU               *string  `json:"sku"`
	Price             *float64 `json:"price"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	IsActive          *bool    `json:"is_active"`
}

type AdjustStockRequest struct {
	Delta  int     `json:"delta" binding:"required"`
	Reason string  `json:"reason" binding:"required"`
	Notes  *string `json:"notes"`
}

// SaleLine is one product line of a POS sale.
type SaleLine struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type RecordSaleRequest struct {
	Lines         []SaleLine `json:"lines" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	MemberID      *int64     `json:"member_id"`
}

// RecordSaleResponse is the receipt of a completed POS sale.
type RecordSaleResponse struct {
	Payment *models.Payment `json:"payment"`
	Total   float64         `json:"total"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(req CreateProductRequest, userID int64) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(page, pageSize int, searchTerm *string, activeOnly bool) ([]models.Product, int, error)
	UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(id int64) error
	AdjustStock(id int64, req AdjustStockRequest, userID int64) (*models.Product, error)
	GetStockHistory(productID int64, page, pageSize int) ([]models.StockHistory, int, error)
	RecordSale(req RecordSaleRequest, cashierID int64) (*RecordSaleResponse, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	paymentRepo repositories.PaymentRepository
	shiftRepo   repositories.ShiftRepository
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(
	pr repositories.ProductRepository,
	payr repositories.PaymentRepository,
	sr repositories.ShiftRepository,
	db *sql.DB,
) ProductService {
	return &productService{
		productRepo: pr,
		paymentRepo: payr,
		shiftRepo:   sr,
		db:          db,
	}
}

func (s *productService) CreateProduct(req CreateProductRequest, userID int64) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrProductValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrProductValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: initial stock cannot be negative", ErrProductValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := &models.Product{
		Name:              name,
		SKU:               req.SKU,
		Price:             req.Price,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          isActive,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.productRepo.CreateProduct(tx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductSKUExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if product.Stock > 0 {
		entry := &models.StockHistory{
			ProductID:  product.ID,
			Change:     product.Stock,
			Reason:     models.StockReasonRestock,
			RecordedBy: &userID,
		}
		if err := s.productRepo.InsertStockHistory(tx, entry); err != nil {
			return nil, fmt.Errorf("failed to record initial stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}
	return product, nil
}

func (s *productService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(page, pageSize int, searchTerm *string, activeOnly bool) ([]models.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	products, totalCount, err := s.productRepo.GetProducts(page, pageSize, searchTerm, activeOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

func (s *productService) UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product for update: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrProductValidation)
		}
		product.Name = name
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrProductValidation)
		}
		product.Price = *req.Price
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.UpdateProduct(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductSKUExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(id int64) error {
	err := s.productRepo.DeleteProduct(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		if strings.Contains(err.Error(), "is referenced by other records") {
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// AdjustStock applies a manual correction and records it in the stock history.
func (s *productService) AdjustStock(id int64, req AdjustStockRequest, userID int64) (*models.Product, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrProductValidation)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason != models.StockReasonAdjustment && reason != models.StockReasonRestock {
		return nil, fmt.Errorf("%w: reason must be %s or %s", ErrProductValidation,
			models.StockReasonAdjustment, models.StockReasonRestock)
	}

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	newStock, err := s.productRepo.AdjustStock(tx, id, req.Delta)
	if err != nil {
		if errors.Is(err, repositories.ErrGuardFailed) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	entry := &models.StockHistory{
		ProductID:  id,
		Change:     req.Delta,
		Reason:     reason,
		Reference:  req.Notes,
		RecordedBy: &userID,
	}
	if err := s.productRepo.InsertStockHistory(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to record stock adjustment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	product.Stock = newStock
	return product, nil
}

func (s *productService) GetStockHistory(productID int64, page, pageSize int) ([]models.StockHistory, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, 0, err
	}
	entries, totalCount, err := s.productRepo.GetStockHistory(productID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock history: %w", err)
	}
	return entries, totalCount, nil
}

// RecordSale processes a multi-line POS sale atomically. Every line's stock
// decrement and history row, plus the single ledger payment, commit together
// or not at all. A sold-out line therefore aborts the whole sale.
func (s *productService) RecordSale(req RecordSaleRequest, cashierID int64) (*RecordSaleResponse, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: sale must contain at least one line", ErrSaleValidation)
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: invalid payment method %s", ErrSaleValidation, req.PaymentMethod)
	}
	seen := make(map[int64]bool, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %d", ErrSaleValidation, line.ProductID)
		}
		if seen[line.ProductID] {
			return nil, fmt.Errorf("%w: duplicate line for product %d", ErrSaleValidation, line.ProductID)
		}
		seen[line.ProductID] = true
	}

	var shiftID *int64
	if shift, serr := s.shiftRepo.GetOpenShiftByCashier(cashierID); serr == nil {
		shiftID = &shift.ID
	}

	receiptNo := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	total := 0.0
	lineNotes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, perr := s.productRepo.GetProductByID(line.ProductID)
		if perr != nil {
			if errors.Is(perr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("failed to load product %d for sale: %w", line.ProductID, perr)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is inactive", ErrSaleValidation, product.Name)
		}

		if _, aerr := s.productRepo.AdjustStock(tx, line.ProductID, -line.Quantity); aerr != nil {
			if errors.Is(aerr, repositories.ErrGuardFailed) {
				return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, aerr)
		}

		entry := &models.StockHistory{
			ProductID:  line.ProductID,
			Change:     -line.Quantity,
			Reason:     models.StockReasonSale,
			Reference:  &receiptNo,
			RecordedBy: &cashierID,
		}
		if herr := s.productRepo.InsertStockHistory(tx, entry); herr != nil {
			return nil, fmt.Errorf("failed to record sale stock history: %w", herr)
		}

		total += product.Price * float64(line.Quantity)
		lineNotes = append(lineNotes, fmt.Sprintf("%dx %s", line.Quantity, product.Name))
	}

	notes := strings.Join(lineNotes, ", ")
	payment := &models.Payment{
		ReceiptNo:     receiptNo,
		Amount:        total,
		PaymentType:   models.PaymentTypePOS,
		PaymentMethod: req.PaymentMethod,
		MemberID:      req.MemberID,
		ShiftID:       shiftID,
		Notes:         &notes,
	}
	if _, err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record sale payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return &RecordSaleResponse{Payment: payment, Total: total}, nil
}
