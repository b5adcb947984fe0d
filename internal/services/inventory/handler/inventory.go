package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"apotek-system/internal/database/models"
)

const (
	INVENTORY_DRUGS_CACHE_KEY     = "inventory:drugs"
	INVENTORY_SUPPLIERS_CACHE_KEY = "inventory:suppliers"

	CACHE_TTL_SHORT = 5 * time.Minute

	DATE_LAYOUT = "2006-01-02"

	DEFAULT_EXPIRY_MONTHS = 6
)

var (
	ErrDrugNotFound     = errors.New("drug not found")
	ErrBatchNotFound    = errors.New("batch not found")
	ErrSupplierNotFound = errors.New("supplier not found")
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

func dateToTime(s string) time.Time {
	t, _ := time.ParseInLocation(DATE_LAYOUT, s, time.Local)
	return t
}

// --- Domain types returned across the RPC boundary ---

type Drug struct {
	ID                int64               `json:"id"`
	Name              string              `json:"name"`
	ActiveIngredient  string              `json:"active_ingredient"`
	Producer          string              `json:"producer"`
	Category          models.DrugCategory `json:"category"`
	Unit              string              `json:"unit"`
	PurchasePrice     float64             `json:"purchase_price"`
	PrescriptionPrice float64             `json:"prescription_price"`
	GeneralPrice      float64             `json:"general_price"`
	InsurancePrice    float64             `json:"insurance_price"`
	Barcode           *string             `json:"barcode"`
	MinimumStock      int32               `json:"minimum_stock"`
	StorageLocation   *string             `json:"storage_location"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type Batch struct {
	ID             int64     `json:"id"`
	DrugID         int64     `json:"drug_id"`
	BatchNumber    string    `json:"batch_number"`
	ExpirationDate time.Time `json:"expiration_date"`
	Quantity       int32     `json:"quantity"`
	PurchasePrice  float64   `json:"purchase_price"`
	SupplierID     int64     `json:"supplier_id"`
	ReceivedDate   time.Time `json:"received_date"`
	CreatedAt      time.Time `json:"created_at"`
}

type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Address       *string   `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
}

type PurchaseOrder struct {
	ID               int64           `json:"id"`
	PONumber         string          `json:"po_number"`
	SupplierID       int64           `json:"supplier_id"`
	Status           models.POStatus `json:"status"`
	TotalAmount      float64         `json:"total_amount"`
	OrderDate        time.Time       `json:"order_date"`
	ExpectedDelivery *time.Time      `json:"expected_delivery"`
	CreatedBy        int64           `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// --- Inputs ---

type CreateDrugInput struct {
	Name              string
	ActiveIngredient  string
	Producer          string
	Category          models.DrugCategory
	Unit              string
	PurchasePrice     float64
	PrescriptionPrice float64
	GeneralPrice      float64
	InsurancePrice    float64
	Barcode           *string
	MinimumStock      int32
	StorageLocation   *string
}

type CreateBatchInput struct {
	DrugID         int64
	BatchNumber    string
	ExpirationDate time.Time
	Quantity       int32
	PurchasePrice  float64
	SupplierID     int64
	ReceivedDate   time.Time
}

type CreateSupplierInput struct {
	Name          string
	ContactPerson *string
	Phone         *string
	Email         *string
	Address       *string
}

type CreatePurchaseOrderInput struct {
	SupplierID       int64
	TotalAmount      float64
	OrderDate        time.Time
	ExpectedDelivery *time.Time
	CreatedBy        int64
}

// --- Handler ---

type InventoryHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewInventoryHandler(db *gorm.DB, redisClient *redis.Client) *InventoryHandler {
	return &InventoryHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *InventoryHandler) InvalidateInventoryCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, INVENTORY_DRUGS_CACHE_KEY, INVENTORY_SUPPLIERS_CACHE_KEY)
}

// --- Model to domain converters ---

func drugToDomain(d models.Drug) Drug {
	return Drug{
		ID:                d.ID,
		Name:              d.Name,
		ActiveIngredient:  d.ActiveIngredient,
		Producer:          d.Producer,
		Category:          d.Category,
		Unit:              d.Unit,
		PurchasePrice:     moneyToFloat(d.PurchasePrice),
		PrescriptionPrice: moneyToFloat(d.PrescriptionPrice),
		GeneralPrice:      moneyToFloat(d.GeneralPrice),
		InsurancePrice:    moneyToFloat(d.InsurancePrice),
		Barcode:           d.Barcode,
		MinimumStock:      d.MinimumStock,
		StorageLocation:   d.StorageLocation,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func batchToDomain(b models.Batch) Batch {
	return Batch{
		ID:             b.ID,
		DrugID:         b.DrugID,
		BatchNumber:    b.BatchNumber,
		ExpirationDate: dateToTime(b.ExpirationDate),
		Quantity:       b.Quantity,
		PurchasePrice:  moneyToFloat(b.PurchasePrice),
		SupplierID:     b.SupplierID,
		ReceivedDate:   dateToTime(b.ReceivedDate),
		CreatedAt:      b.CreatedAt,
	}
}

func supplierToDomain(sup models.Supplier) Supplier {
	return Supplier{
		ID:            sup.ID,
		Name:          sup.Name,
		ContactPerson: sup.ContactPerson,
		Phone:         sup.Phone,
		Email:         sup.Email,
		Address:       sup.Address,
		CreatedAt:     sup.CreatedAt,
	}
}

func poToDomain(po models.PurchaseOrder) PurchaseOrder {
	var expected *time.Time
	if po.ExpectedDelivery != nil {
		t := dateToTime(*po.ExpectedDelivery)
		expected = &t
	}

	return PurchaseOrder{
		ID:               po.ID,
		PONumber:         po.PONumber,
		SupplierID:       po.SupplierID,
		Status:           po.Status,
		TotalAmount:      moneyToFloat(po.TotalAmount),
		OrderDate:        dateToTime(po.OrderDate),
		ExpectedDelivery: expected,
		CreatedBy:        po.CreatedBy,
		CreatedAt:        po.CreatedAt,
	}
}

// --- Drugs ---

func (s *InventoryHandler) CreateDrug(ctx context.Context, input CreateDrugInput) (*Drug, error) {
	drug := models.Drug{
		Name:              input.Name,
		ActiveIngredient:  input.ActiveIngredient,
		Producer:          input.Producer,
		Category:          input.Category,
		Unit:              input.Unit,
		PurchasePrice:     moneyToString(input.PurchasePrice),
		PrescriptionPrice: moneyToString(input.PrescriptionPrice),
		GeneralPrice:      moneyToString(input.GeneralPrice),
		InsurancePrice:    moneyToString(input.InsurancePrice),
		Barcode:           input.Barcode,
		MinimumStock:      input.MinimumStock,
		StorageLocation:   input.StorageLocation,
	}

	if err := s.db.WithContext(ctx).Create(&drug).Error; err != nil {
		return nil, fmt.Errorf("failed to create drug: %w", err)
	}

	s.InvalidateInventoryCaches(ctx)

	result := drugToDomain(drug)
	return &result, nil
}

func (s *InventoryHandler) GetDrugs(ctx context.Context) ([]Drug, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, INVENTORY_DRUGS_CACHE_KEY).Result(); err == nil {
			var drugs []Drug
			if err := json.Unmarshal([]byte(cached), &drugs); err == nil {
				return drugs, nil
			}
		}
	}

	var records []models.Drug
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}

	drugs := make([]Drug, len(records))
	for i, d := range records {
		drugs[i] = drugToDomain(d)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(drugs); err == nil {
			_ = s.redis.Set(ctx, INVENTORY_DRUGS_CACHE_KEY, payload, CACHE_TTL_SHORT)
		}
	}

	return drugs, nil
}

func (s *InventoryHandler) SearchDrugs(ctx context.Context, query string) ([]Drug, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []Drug{}, nil
	}

	searchTerm := "%" + strings.ToLower(trimmed) + "%"

	var records []models.Drug
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(active_ingredient) LIKE ? OR LOWER(barcode) LIKE ?",
			searchTerm, searchTerm, searchTerm).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("drug search failed: %w", err)
	}

	drugs := make([]Drug, len(records))
	for i, d := range records {
		drugs[i] = drugToDomain(d)
	}
	return drugs, nil
}

// GetLowStockDrugs lists drugs whose summed batch quantity is below their
// configured minimum. A drug with no batches counts as zero stock.
func (s *InventoryHandler) GetLowStockDrugs(ctx context.Context) ([]Drug, error) {
	var records []models.Drug
	if err := s.db.WithContext(ctx).Model(&models.Drug{}).
		Select("drugs.*").
		Joins("LEFT JOIN batches ON batches.drug_id = drugs.id").
		Group("drugs.id").
		Having("COALESCE(SUM(batches.quantity), 0) < drugs.minimum_stock").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list low stock drugs: %w", err)
	}

	drugs := make([]Drug, len(records))
	for i, d := range records {
		drugs[i] = drugToDomain(d)
	}
	return drugs, nil
}

// --- Batches ---

func (s *InventoryHandler) CreateBatch(ctx context.Context, input CreateBatchInput) (*Batch, error) {
	var drug models.Drug
	if err := s.db.WithContext(ctx).First(&drug, input.DrugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("drug %d: %w", input.DrugID, ErrDrugNotFound)
		}
		return nil, fmt.Errorf("failed to verify drug: %w", err)
	}

	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, input.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %d: %w", input.SupplierID, ErrSupplierNotFound)
		}
		return nil, fmt.Errorf("failed to verify supplier: %w", err)
	}

	batch := models.Batch{
		DrugID:         input.DrugID,
		BatchNumber:    input.BatchNumber,
		ExpirationDate: input.ExpirationDate.Format(DATE_LAYOUT),
		Quantity:       input.Quantity,
		PurchasePrice:  moneyToString(input.PurchasePrice),
		SupplierID:     input.SupplierID,
		ReceivedDate:   input.ReceivedDate.Format(DATE_LAYOUT),
	}

	if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	result := batchToDomain(batch)
	return &result, nil
}

func (s *InventoryHandler) GetBatchesByDrug(ctx context.Context, drugID int64) ([]Batch, error) {
	var records []models.Batch
	if err := s.db.WithContext(ctx).
		Where("drug_id = ?", drugID).
		Order("expiration_date asc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	batches := make([]Batch, len(records))
	for i, b := range records {
		batches[i] = batchToDomain(b)
	}
	return batches, nil
}

func (s *InventoryHandler) GetBatchByID(ctx context.Context, batchID int64) (*Batch, error) {
	var record models.Batch
	if err := s.db.WithContext(ctx).First(&record, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("batch %d: %w", batchID, ErrBatchNotFound)
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	result := batchToDomain(record)
	return &result, nil
}

// GetExpiringBatches lists batches expiring between today and monthsAhead
// months from now, both ends inclusive. Already-expired batches are excluded.
func (s *InventoryHandler) GetExpiringBatches(ctx context.Context, monthsAhead int) ([]Batch, error) {
	if monthsAhead <= 0 {
		monthsAhead = DEFAULT_EXPIRY_MONTHS
	}

	now := time.Now()
	today := now.Format(DATE_LAYOUT)
	future := now.AddDate(0, monthsAhead, 0).Format(DATE_LAYOUT)

	var records []models.Batch
	if err := s.db.WithContext(ctx).
		Where("expiration_date >= ? AND expiration_date <= ?", today, future).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list expiring batches: %w", err)
	}

	batches := make([]Batch, len(records))
	for i, b := range records {
		batches[i] = batchToDomain(b)
	}
	return batches, nil
}

// --- Suppliers ---

func (s *InventoryHandler) CreateSupplier(ctx context.Context, input CreateSupplierInput) (*Supplier, error) {
	supplier := models.Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
	}

	if err := s.db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.InvalidateInventoryCaches(ctx)

	result := supplierToDomain(supplier)
	return &result, nil
}

func (s *InventoryHandler) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, INVENTORY_SUPPLIERS_CACHE_KEY).Result(); err == nil {
			var suppliers []Supplier
			if err := json.Unmarshal([]byte(cached), &suppliers); err == nil {
				return suppliers, nil
			}
		}
	}

	var records []models.Supplier
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	suppliers := make([]Supplier, len(records))
	for i, sup := range records {
		suppliers[i] = supplierToDomain(sup)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(suppliers); err == nil {
			_ = s.redis.Set(ctx, INVENTORY_SUPPLIERS_CACHE_KEY, payload, CACHE_TTL_SHORT)
		}
	}

	return suppliers, nil
}

// --- Purchase orders ---

func (s *InventoryHandler) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, input.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %d: %w", input.SupplierID, ErrSupplierNotFound)
		}
		return nil, fmt.Errorf("failed to verify supplier: %w", err)
	}

	var expected *string
	if input.ExpectedDelivery != nil {
		d := input.ExpectedDelivery.Format(DATE_LAYOUT)
		expected = &d
	}

	po := models.PurchaseOrder{
		PONumber:         fmt.Sprintf("PO-%d", time.Now().UnixMilli()),
		SupplierID:       input.SupplierID,
		Status:           models.POStatusPending,
		TotalAmount:      moneyToString(input.TotalAmount),
		OrderDate:        input.OrderDate.Format(DATE_LAYOUT),
		ExpectedDelivery: expected,
		CreatedBy:        input.CreatedBy,
	}

	if err := s.db.WithContext(ctx).Create(&po).Error; err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	result := poToDomain(po)
	return &result, nil
}
