package models

import "time"

// Transfer directions as reported by the gateway.
const (
	TransferIn  = "in"
	TransferOut = "out"
)

// Transaction represents one payment reported by the Sepay gateway.
// Rows are created exactly once per SepayID and never mutated.
type Transaction struct {
	ID              int64     `json:"id"`
	SepayID         int64     `json:"sepay_id"`
	Gateway         string    `json:"gateway"`
	TransactionDate time.Time `json:"transaction_date"`
	AccountNumber   string    `json:"account_number"`
	Content         string    `json:"content"`
	TransferType    string    `json:"transfer_type"`
	Amount          int64     `json:"amount"`
	ReferenceCode   string    `json:"reference_code"`
	Description     *string   `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}
