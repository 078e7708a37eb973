package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptScanMessage asks the worker to analyze the receipt attached to an
// expense. It carries only the expense ID; the worker fetches the record
// and its image bytes from the store.
type ReceiptScanMessage struct {
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptScanMessage(expenseID string) *ReceiptScanMessage {
	return &ReceiptScanMessage{
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReceiptScanMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptScanMessageFromJSON creates a message from JSON bytes
func ReceiptScanMessageFromJSON(data []byte) (*ReceiptScanMessage, error) {
	var msg ReceiptScanMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
