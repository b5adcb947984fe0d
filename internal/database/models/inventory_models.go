package models

import "time"

type DrugCategory string

const (
	DrugCategoryHard                  DrugCategory = "hard"
	DrugCategoryFree                  DrugCategory = "free"
	DrugCategoryLimitedFree           DrugCategory = "limited_free"
	DrugCategoryNarcoticsPsychotropic DrugCategory = "narcotics_psychotropics"
)

type POStatus string

const (
	POStatusPending   POStatus = "pending"
	POStatusReceived  POStatus = "received"
	POStatusCancelled POStatus = "cancelled"
)

type Drug struct {
	ID               int64        `gorm:"primaryKey;autoIncrement"`
	Name             string       `gorm:"size:255;not null"`
	ActiveIngredient string       `gorm:"size:255;not null"`
	Producer         string       `gorm:"size:255;not null"`
	Category         DrugCategory `gorm:"size:32;not null"`
	Unit             string       `gorm:"size:50;not null"`

	PurchasePrice     string `gorm:"type:decimal(10,2);not null"`
	PrescriptionPrice string `gorm:"type:decimal(10,2);not null"`
	GeneralPrice      string `gorm:"type:decimal(10,2);not null"`
	InsurancePrice    string `gorm:"type:decimal(10,2);not null"`

	Barcode         *string `gorm:"size:100"`
	MinimumStock    int32   `gorm:"not null;default:0"`
	StorageLocation *string `gorm:"size:100"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Batches []Batch `gorm:"foreignKey:DrugID"`
}

type Batch struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	DrugID         int64  `gorm:"index;not null"`
	BatchNumber    string `gorm:"size:100;not null"`
	ExpirationDate string `gorm:"size:10;not null"`
	Quantity       int32  `gorm:"not null"`
	PurchasePrice  string `gorm:"type:decimal(10,2);not null"`
	SupplierID     int64  `gorm:"not null"`
	ReceivedDate   string `gorm:"size:10;not null"`
	CreatedAt      time.Time

	Drug     *Drug     `gorm:"foreignKey:DrugID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

type Supplier struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Name          string  `gorm:"size:255;not null"`
	ContactPerson *string `gorm:"size:100"`
	Phone         *string `gorm:"size:50"`
	Email         *string `gorm:"size:100"`
	Address       *string `gorm:"type:text"`
	CreatedAt     time.Time

	Batches []Batch `gorm:"foreignKey:SupplierID"`
}

type PurchaseOrder struct {
	ID               int64    `gorm:"primaryKey;autoIncrement"`
	PONumber         string   `gorm:"column:po_number;size:100;uniqueIndex;not null"`
	SupplierID       int64    `gorm:"not null"`
	Status           POStatus `gorm:"size:16;not null;default:'pending'"`
	TotalAmount      string   `gorm:"type:decimal(10,2);not null"`
	OrderDate        string   `gorm:"size:10;not null"`
	ExpectedDelivery *string  `gorm:"size:10"`
	CreatedBy        int64    `gorm:"not null"`
	CreatedAt        time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
