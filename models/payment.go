package models

import (
	"time"
)

type Payment struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"` // mock, qr_code, credit_card, bank_transfer
	Status    string    `json:"status"` // completed, failed
	TxRef     string    `json:"tx_ref"`
	Created   time.Time `json:"created"`
}
