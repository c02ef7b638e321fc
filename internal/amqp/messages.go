package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/core"
)

// Message types, carried in the AMQP Type header.
const (
	TypeTransactionCreated = "transaction.created"
	TypeTransactionDeleted = "transaction.deleted"
	TypeShoppingPurchased  = "shopping.purchased"
	TypeWishlistMerged     = "wishlist.merged"
	TypeResetApplied       = "ledger.reset"
)

// LedgerEventMessage announces a single committed ledger mutation.
type LedgerEventMessage struct {
	Type        string           `json:"type"`
	EntityID    int64            `json:"entity_id,omitempty"`
	Description string           `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Kind        string           `json:"kind,omitempty"`
	Inserted    int              `json:"inserted,omitempty"`
	Updated     int              `json:"updated,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewTransactionEvent builds an event for a transaction mutation.
func NewTransactionEvent(eventType string, t core.Transaction) *LedgerEventMessage {
	amount := t.Amount.Round(2)
	return &LedgerEventMessage{
		Type:        eventType,
		EntityID:    t.ID,
		Description: t.Description,
		Amount:      &amount,
		Kind:        string(t.Kind),
		Timestamp:   time.Now(),
	}
}

// NewMergeEvent summarizes a wishlist merge.
func NewMergeEvent(res core.MergeResult) *LedgerEventMessage {
	return &LedgerEventMessage{
		Type:      TypeWishlistMerged,
		Inserted:  res.Inserted,
		Updated:   res.Updated,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ArchivedTransaction is a transaction removed by a monthly reset.
// Amounts travel as decimal strings.
type ArchivedTransaction struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

// ResetAppliedMessage carries the rows a reset removed so they can be
// archived elsewhere.
type ResetAppliedMessage struct {
	Day       string                `json:"day"`
	NetWorth  decimal.Decimal       `json:"net_worth"`
	Archived  []ArchivedTransaction `json:"archived"`
	Timestamp time.Time             `json:"timestamp"`
}

func NewResetAppliedMessage(day string, netWorth decimal.Decimal, removed []core.Transaction) *ResetAppliedMessage {
	msg := &ResetAppliedMessage{
		Day:       day,
		NetWorth:  netWorth.Round(2),
		Archived:  make([]ArchivedTransaction, 0, len(removed)),
		Timestamp: time.Now(),
	}
	for _, t := range removed {
		msg.Archived = append(msg.Archived, ArchivedTransaction{
			ID:          t.ID,
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.Amount.Round(2),
			Kind:        string(t.Kind),
		})
	}
	return msg
}

func (m *ResetAppliedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ResetAppliedMessageFromJSON(data []byte) (*ResetAppliedMessage, error) {
	var msg ResetAppliedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Transactions converts archived rows back to domain transactions.
func (m *ResetAppliedMessage) Transactions() []core.Transaction {
	out := make([]core.Transaction, 0, len(m.Archived))
	for _, a := range m.Archived {
		out = append(out, core.Transaction{
			ID:          a.ID,
			Date:        a.Date,
			Description: a.Description,
			Amount:      a.Amount,
			Kind:        core.Kind(a.Kind),
		})
	}
	return out
}
