package models

import "time"

type TransactionType string

const (
	TransactionTypePrescription    TransactionType = "prescription"
	TransactionTypeNonPrescription TransactionType = "non_prescription"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodQRIS       PaymentMethod = "qris"
	PaymentMethodReceivable PaymentMethod = "receivable"
)

type ExpenseType string

const (
	ExpenseTypeSalary           ExpenseType = "salary"
	ExpenseTypeElectricity      ExpenseType = "electricity"
	ExpenseTypeRent             ExpenseType = "rent"
	ExpenseTypeOtherOperational ExpenseType = "other_operational"
)

type Customer struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Name          string  `gorm:"size:255;not null"`
	Phone         *string `gorm:"size:50"`
	Email         *string `gorm:"size:100"`
	Address       *string `gorm:"type:text"`
	InsuranceInfo *string `gorm:"type:text"`
	CreatedAt     time.Time
}

type Transaction struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	TransactionNumber string          `gorm:"size:100;uniqueIndex;not null"`
	Type              TransactionType `gorm:"size:32;not null"`
	CustomerID        *int64
	DoctorName        *string `gorm:"size:255"`
	PatientName       *string `gorm:"size:255"`

	Subtotal       string `gorm:"type:decimal(10,2);not null"`
	DiscountAmount string `gorm:"type:decimal(10,2);not null;default:'0'"`
	TotalAmount    string `gorm:"type:decimal(10,2);not null"`

	PaymentMethod   PaymentMethod `gorm:"size:32;not null"`
	CashierID       int64         `gorm:"not null"`
	TransactionDate time.Time     `gorm:"index;not null"`
	CreatedAt       time.Time

	Customer *Customer         `gorm:"foreignKey:CustomerID"`
	Items    []TransactionItem `gorm:"foreignKey:TransactionID"`
}

type TransactionItem struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	TransactionID  int64  `gorm:"index;not null"`
	DrugID         int64  `gorm:"not null"`
	BatchID        int64  `gorm:"not null"`
	Quantity       int32  `gorm:"not null"`
	UnitPrice      string `gorm:"type:decimal(10,2);not null"`
	DiscountAmount string `gorm:"type:decimal(10,2);not null;default:'0'"`
	Subtotal       string `gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time

	Drug  *Drug  `gorm:"foreignKey:DrugID"`
	Batch *Batch `gorm:"foreignKey:BatchID"`
}

type Expense struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	Type        ExpenseType `gorm:"size:32;not null"`
	Description string      `gorm:"type:text;not null"`
	Amount      string      `gorm:"type:decimal(10,2);not null"`
	ExpenseDate string      `gorm:"size:10;not null"`
	CreatedBy   int64       `gorm:"not null"`
	CreatedAt   time.Time
}
