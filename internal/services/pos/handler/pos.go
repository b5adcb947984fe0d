package handler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"apotek-system/internal/database/models"
)

const (
	DATE_LAYOUT = "2006-01-02"
)

var (
	ErrCashierNotFound   = errors.New("cashier not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrBatchNotFound     = errors.New("batch not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// --- Helpers ---

func moneyToFloat(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func moneyToString(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

const numberAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = numberAlphabet[rand.Intn(len(numberAlphabet))]
	}
	return string(b)
}

// --- Domain types returned across the RPC boundary ---

type Transaction struct {
	ID                int64                  `json:"id"`
	TransactionNumber string                 `json:"transaction_number"`
	Type              models.TransactionType `json:"type"`
	CustomerID        *int64                 `json:"customer_id"`
	DoctorName        *string                `json:"doctor_name"`
	PatientName       *string                `json:"patient_name"`
	Subtotal          float64                `json:"subtotal"`
	DiscountAmount    float64                `json:"discount_amount"`
	TotalAmount       float64                `json:"total_amount"`
	PaymentMethod     models.PaymentMethod   `json:"payment_method"`
	CashierID         int64                  `json:"cashier_id"`
	TransactionDate   time.Time              `json:"transaction_date"`
	CreatedAt         time.Time              `json:"created_at"`
}

type TransactionItem struct {
	ID             int64     `json:"id"`
	TransactionID  int64     `json:"transaction_id"`
	DrugID         int64     `json:"drug_id"`
	BatchID        int64     `json:"batch_id"`
	Quantity       int32     `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	DiscountAmount float64   `json:"discount_amount"`
	Subtotal       float64   `json:"subtotal"`
	CreatedAt      time.Time `json:"created_at"`
}

type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Address       *string   `json:"address"`
	InsuranceInfo *string   `json:"insurance_info"`
	CreatedAt     time.Time `json:"created_at"`
}

type Expense struct {
	ID          int64              `json:"id"`
	Type        models.ExpenseType `json:"type"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	ExpenseDate time.Time          `json:"expense_date"`
	CreatedBy   int64              `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// DailySalesSummary buckets one calendar day of sales by payment method.
// Debit and credit card sales are merged into card_sales.
type DailySalesSummary struct {
	Date              time.Time `json:"date"`
	TotalTransactions int       `json:"total_transactions"`
	TotalRevenue      float64   `json:"total_revenue"`
	CashSales         float64   `json:"cash_sales"`
	CardSales         float64   `json:"card_sales"`
	QRISSales         float64   `json:"qris_sales"`
	ReceivableSales   float64   `json:"receivable_sales"`
}

// --- Inputs ---

type CreateTransactionInput struct {
	Type           models.TransactionType
	CustomerID     *int64
	DoctorName     *string
	PatientName    *string
	Subtotal       float64
	DiscountAmount float64
	TotalAmount    float64
	PaymentMethod  models.PaymentMethod
	CashierID      int64
}

type CreateTransactionItemInput struct {
	TransactionID  int64
	DrugID         int64
	BatchID        int64
	Quantity       int32
	UnitPrice      float64
	DiscountAmount float64
	Subtotal       float64
}

type CreateCustomerInput struct {
	Name          string
	Phone         *string
	Email         *string
	Address       *string
	InsuranceInfo *string
}

type CreateExpenseInput struct {
	Type        models.ExpenseType
	Description string
	Amount      float64
	ExpenseDate time.Time
	CreatedBy   int64
}

// --- Handler ---

type POSHandler struct {
	db *gorm.DB
}

func NewPOSHandler(db *gorm.DB) *POSHandler {
	return &POSHandler{db: db}
}

// --- Model to domain converters ---

func transactionToDomain(t models.Transaction) Transaction {
	return Transaction{
		ID:                t.ID,
		TransactionNumber: t.TransactionNumber,
		Type:              t.Type,
		CustomerID:        t.CustomerID,
		DoctorName:        t.DoctorName,
		PatientName:       t.PatientName,
		Subtotal:          moneyToFloat(t.Subtotal),
		DiscountAmount:    moneyToFloat(t.DiscountAmount),
		TotalAmount:       moneyToFloat(t.TotalAmount),
		PaymentMethod:     t.PaymentMethod,
		CashierID:         t.CashierID,
		TransactionDate:   t.TransactionDate,
		CreatedAt:         t.CreatedAt,
	}
}

func itemToDomain(item models.TransactionItem) TransactionItem {
	return TransactionItem{
		ID:             item.ID,
		TransactionID:  item.TransactionID,
		DrugID:         item.DrugID,
		BatchID:        item.BatchID,
		Quantity:       item.Quantity,
		UnitPrice:      moneyToFloat(item.UnitPrice),
		DiscountAmount: moneyToFloat(item.DiscountAmount),
		Subtotal:       moneyToFloat(item.Subtotal),
		CreatedAt:      item.CreatedAt,
	}
}

func customerToDomain(c models.Customer) Customer {
	return Customer{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		InsuranceInfo: c.InsuranceInfo,
		CreatedAt:     c.CreatedAt,
	}
}

func expenseToDomain(e models.Expense) Expense {
	expenseDate, _ := time.ParseInLocation(DATE_LAYOUT, e.ExpenseDate, time.Local)
	return Expense{
		ID:          e.ID,
		Type:        e.Type,
		Description: e.Description,
		Amount:      moneyToFloat(e.Amount),
		ExpenseDate: expenseDate,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// --- Transactions ---

func (s *POSHandler) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	var cashier models.User
	if err := s.db.WithContext(ctx).First(&cashier, input.CashierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cashier %d: %w", input.CashierID, ErrCashierNotFound)
		}
		return nil, fmt.Errorf("failed to verify cashier: %w", err)
	}

	if input.CustomerID != nil {
		var customer models.Customer
		if err := s.db.WithContext(ctx).First(&customer, *input.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("customer %d: %w", *input.CustomerID, ErrCustomerNotFound)
			}
			return nil, fmt.Errorf("failed to verify customer: %w", err)
		}
	}

	transaction := models.Transaction{
		TransactionNumber: fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), randomSuffix(9)),
		Type:              input.Type,
		CustomerID:        input.CustomerID,
		DoctorName:        input.DoctorName,
		PatientName:       input.PatientName,
		Subtotal:          moneyToString(input.Subtotal),
		DiscountAmount:    moneyToString(input.DiscountAmount),
		TotalAmount:       moneyToString(input.TotalAmount),
		PaymentMethod:     input.PaymentMethod,
		CashierID:         input.CashierID,
		TransactionDate:   time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	result := transactionToDomain(transaction)
	return &result, nil
}

// CreateTransactionItem records a sale line against a specific batch and
// deducts its stock. The deduction is a single conditional update guarded by
// the available quantity, so concurrent sales against the same batch cannot
// drive it negative. The decrement and the line-item insert commit together
// or not at all.
func (s *POSHandler) CreateTransactionItem(ctx context.Context, input CreateTransactionItemInput) (*TransactionItem, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&models.Batch{}).
		Where("id = ? AND quantity >= ?", input.BatchID, input.Quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", input.Quantity))
	if res.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to deduct stock: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		tx.Rollback()

		var batch models.Batch
		if err := s.db.WithContext(ctx).First(&batch, input.BatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("batch %d: %w", input.BatchID, ErrBatchNotFound)
			}
			return nil, fmt.Errorf("failed to get batch: %w", err)
		}
		return nil, fmt.Errorf("batch %d has %d available, requested %d: %w",
			input.BatchID, batch.Quantity, input.Quantity, ErrInsufficientStock)
	}

	item := models.TransactionItem{
		TransactionID:  input.TransactionID,
		DrugID:         input.DrugID,
		BatchID:        input.BatchID,
		Quantity:       input.Quantity,
		UnitPrice:      moneyToString(input.UnitPrice),
		DiscountAmount: moneyToString(input.DiscountAmount),
		Subtotal:       moneyToString(input.Subtotal),
	}

	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create transaction item: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction item: %w", err)
	}

	result := itemToDomain(item)
	return &result, nil
}

// --- Daily sales summary ---

func (s *POSHandler) GetDailySalesSummary(ctx context.Context, date time.Time) (*DailySalesSummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var records []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("transaction_date >= ? AND transaction_date < ?", dayStart, dayEnd).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load daily transactions: %w", err)
	}

	total := decimal.Zero
	cash := decimal.Zero
	card := decimal.Zero
	qris := decimal.Zero
	receivable := decimal.Zero

	for _, t := range records {
		amount, err := decimal.NewFromString(t.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid total amount on transaction %d: %w", t.ID, err)
		}

		total = total.Add(amount)

		switch t.PaymentMethod {
		case models.PaymentMethodCash:
			cash = cash.Add(amount)
		case models.PaymentMethodDebitCard, models.PaymentMethodCreditCard:
			card = card.Add(amount)
		case models.PaymentMethodQRIS:
			qris = qris.Add(amount)
		case models.PaymentMethodReceivable:
			receivable = receivable.Add(amount)
		}
	}

	return &DailySalesSummary{
		Date:              dayStart,
		TotalTransactions: len(records),
		TotalRevenue:      total.InexactFloat64(),
		CashSales:         cash.InexactFloat64(),
		CardSales:         card.InexactFloat64(),
		QRISSales:         qris.InexactFloat64(),
		ReceivableSales:   receivable.InexactFloat64(),
	}, nil
}

// --- Customers ---

func (s *POSHandler) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error) {
	customer := models.Customer{
		Name:          input.Name,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		InsuranceInfo: input.InsuranceInfo,
	}

	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	result := customerToDomain(customer)
	return &result, nil
}

// --- Expenses ---

func (s *POSHandler) CreateExpense(ctx context.Context, input CreateExpenseInput) (*Expense, error) {
	expense := models.Expense{
		Type:        input.Type,
		Description: input.Description,
		Amount:      moneyToString(input.Amount),
		ExpenseDate: input.ExpenseDate.Format(DATE_LAYOUT),
		CreatedBy:   input.CreatedBy,
	}

	if err := s.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	result := expenseToDomain(expense)
	return &result, nil
}
