package storage

type Transaction struct {
	ID          int64
	OccurredAt  string
	Description string
	AmountCents int64
	Kind        string
}

type ShoppingItem struct {
	ID         int64
	Name       string
	PriceCents int64
}

type Setting struct {
	Name  string
	Value string
}

type ResetLog struct {
	ID            int64
	ResetDate     string
	NetWorthCents int64
	RemovedCount  int64
	AppliedAt     string
}

type Totals struct {
	IncomeCents  int64
	OutflowCents int64
}
