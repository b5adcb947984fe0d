package handler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"apotek-system/internal/database"
	"apotek-system/internal/database/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedCashier(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	user := models.User{
		Username:     "kasir1",
		FullName:     "Kasir Satu",
		PasswordHash: "x",
		Role:         "cashier",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed cashier: %v", err)
	}
	return user.ID
}

func seedBatch(t *testing.T, db *gorm.DB, qty int32) int64 {
	t.Helper()

	drug := models.Drug{
		Name:              "Panadol",
		ActiveIngredient:  "paracetamol",
		Producer:          "Kimia Farma",
		Category:          models.DrugCategoryFree,
		Unit:              "strip",
		PurchasePrice:     "8500.00",
		PrescriptionPrice: "12000.00",
		GeneralPrice:      "10000.00",
		InsurancePrice:    "9000.00",
	}
	if err := db.Create(&drug).Error; err != nil {
		t.Fatalf("seed drug: %v", err)
	}

	supplier := models.Supplier{Name: "PT Sumber Sehat"}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}

	batch := models.Batch{
		DrugID:         drug.ID,
		BatchNumber:    "B1",
		ExpirationDate: "2027-06-01",
		Quantity:       qty,
		PurchasePrice:  "7500.00",
		SupplierID:     supplier.ID,
		ReceivedDate:   "2026-01-01",
	}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch.ID
}

func batchQuantity(t *testing.T, db *gorm.DB, batchID int64) int32 {
	t.Helper()

	var batch models.Batch
	if err := db.First(&batch, batchID).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	return batch.Quantity
}

func newTransaction(t *testing.T, h *POSHandler, cashierID int64, method models.PaymentMethod, total float64) *Transaction {
	t.Helper()

	txn, err := h.CreateTransaction(context.Background(), CreateTransactionInput{
		Type:          models.TransactionTypeNonPrescription,
		Subtotal:      total,
		TotalAmount:   total,
		PaymentMethod: method,
		CashierID:     cashierID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return txn
}

func TestCreateTransaction(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)
	ctx := context.Background()

	cashierID := seedCashier(t, db)

	txn := newTransaction(t, h, cashierID, models.PaymentMethodCash, 25000)
	if !strings.HasPrefix(txn.TransactionNumber, "TXN-") {
		t.Errorf("transaction number = %q, want TXN- prefix", txn.TransactionNumber)
	}
	if txn.TotalAmount != 25000 {
		t.Errorf("total = %v, want 25000", txn.TotalAmount)
	}

	if _, err := h.CreateTransaction(ctx, CreateTransactionInput{
		Type:          models.TransactionTypeNonPrescription,
		PaymentMethod: models.PaymentMethodCash,
		CashierID:     cashierID + 99,
	}); !errors.Is(err, ErrCashierNotFound) {
		t.Errorf("missing cashier: err = %v, want ErrCashierNotFound", err)
	}

	missingCustomer := int64(999)
	if _, err := h.CreateTransaction(ctx, CreateTransactionInput{
		Type:          models.TransactionTypeNonPrescription,
		CustomerID:    &missingCustomer,
		PaymentMethod: models.PaymentMethodCash,
		CashierID:     cashierID,
	}); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("missing customer: err = %v, want ErrCustomerNotFound", err)
	}
}

func TestCreateTransactionItemDeductsStock(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)
	ctx := context.Background()

	cashierID := seedCashier(t, db)
	batchID := seedBatch(t, db, 50)
	txn := newTransaction(t, h, cashierID, models.PaymentMethodCash, 30000)

	item, err := h.CreateTransactionItem(ctx, CreateTransactionItemInput{
		TransactionID: txn.ID,
		DrugID:        1,
		BatchID:       batchID,
		Quantity:      3,
		UnitPrice:     10000,
		Subtotal:      30000,
	})
	if err != nil {
		t.Fatalf("CreateTransactionItem: %v", err)
	}
	if item.Quantity != 3 || item.Subtotal != 30000 {
		t.Errorf("item = %+v, want quantity 3 and subtotal 30000", item)
	}

	if got := batchQuantity(t, db, batchID); got != 47 {
		t.Errorf("batch quantity = %d, want 47", got)
	}
}

func TestCreateTransactionItemInsufficientStock(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)
	ctx := context.Background()

	cashierID := seedCashier(t, db)
	batchID := seedBatch(t, db, 5)
	txn := newTransaction(t, h, cashierID, models.PaymentMethodCash, 60000)

	_, err := h.CreateTransactionItem(ctx, CreateTransactionItemInput{
		TransactionID: txn.ID,
		DrugID:        1,
		BatchID:       batchID,
		Quantity:      6,
		UnitPrice:     10000,
		Subtotal:      60000,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	if got := batchQuantity(t, db, batchID); got != 5 {
		t.Errorf("batch quantity after failed sale = %d, want 5 unchanged", got)
	}

	var count int64
	if err := db.Model(&models.TransactionItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Errorf("transaction item count = %d, want 0 after rollback", count)
	}
}

func TestCreateTransactionItemMissingBatch(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)

	cashierID := seedCashier(t, db)
	txn := newTransaction(t, h, cashierID, models.PaymentMethodCash, 10000)

	_, err := h.CreateTransactionItem(context.Background(), CreateTransactionItemInput{
		TransactionID: txn.ID,
		DrugID:        1,
		BatchID:       4242,
		Quantity:      1,
		UnitPrice:     10000,
		Subtotal:      10000,
	})
	if !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v, want ErrBatchNotFound", err)
	}
}

func TestGetDailySalesSummary(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)
	ctx := context.Background()

	cashierID := seedCashier(t, db)

	newTransaction(t, h, cashierID, models.PaymentMethodCash, 10000)
	newTransaction(t, h, cashierID, models.PaymentMethodDebitCard, 20000)
	newTransaction(t, h, cashierID, models.PaymentMethodCreditCard, 30000)
	newTransaction(t, h, cashierID, models.PaymentMethodQRIS, 40000)
	newTransaction(t, h, cashierID, models.PaymentMethodReceivable, 50000)

	summary, err := h.GetDailySalesSummary(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetDailySalesSummary: %v", err)
	}

	if summary.TotalTransactions != 5 {
		t.Errorf("total transactions = %d, want 5", summary.TotalTransactions)
	}
	if summary.TotalRevenue != 150000 {
		t.Errorf("total revenue = %v, want 150000", summary.TotalRevenue)
	}
	if summary.CashSales != 10000 {
		t.Errorf("cash = %v, want 10000", summary.CashSales)
	}
	if summary.CardSales != 50000 {
		t.Errorf("card = %v, want 50000 (debit + credit)", summary.CardSales)
	}
	if summary.QRISSales != 40000 {
		t.Errorf("qris = %v, want 40000", summary.QRISSales)
	}
	if summary.ReceivableSales != 50000 {
		t.Errorf("receivable = %v, want 50000", summary.ReceivableSales)
	}
}

func TestGetDailySalesSummaryEmptyDay(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)

	cashierID := seedCashier(t, db)
	newTransaction(t, h, cashierID, models.PaymentMethodCash, 10000)

	summary, err := h.GetDailySalesSummary(context.Background(), time.Now().AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("GetDailySalesSummary: %v", err)
	}

	if summary.TotalTransactions != 0 || summary.TotalRevenue != 0 ||
		summary.CashSales != 0 || summary.CardSales != 0 ||
		summary.QRISSales != 0 || summary.ReceivableSales != 0 {
		t.Errorf("summary for empty day = %+v, want all zero", summary)
	}
}

func TestCreateCustomerAndExpense(t *testing.T) {
	db := testDB(t)
	h := NewPOSHandler(db)
	ctx := context.Background()

	phone := "081234567890"
	customer, err := h.CreateCustomer(ctx, CreateCustomerInput{
		Name:  "Budi Santoso",
		Phone: &phone,
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if customer.Name != "Budi Santoso" || customer.Phone == nil || *customer.Phone != phone {
		t.Errorf("customer = %+v", customer)
	}

	expenseDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local)
	expense, err := h.CreateExpense(ctx, CreateExpenseInput{
		Type:        models.ExpenseTypeElectricity,
		Description: "Tagihan listrik Agustus",
		Amount:      750000.25,
		ExpenseDate: expenseDate,
		CreatedBy:   1,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if expense.Amount != 750000.25 {
		t.Errorf("amount = %v, want 750000.25", expense.Amount)
	}
	if !expense.ExpenseDate.Equal(expenseDate) {
		t.Errorf("expense date = %v, want %v", expense.ExpenseDate, expenseDate)
	}
}
