package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income   Kind = "Income"
	Expense  Kind = "Expense"
	Shopping Kind = "Shopping"
)

// Well-known setting names.
const (
	SettingResetDay        = "monthly_transactions_day"
	SettingTheme           = "theme"
	SettingWishlistAccount = "wishlist_account"
)

// OpeningBalanceDescription labels the carry-forward entry written by a reset.
const OpeningBalanceDescription = "Opening Balance"

const maxDescriptionLen = 200

type (
	Kind string

	Transaction struct {
		ID          int64
		Date        time.Time
		Description string
		Amount      decimal.Decimal // always >= 0, Kind gives the sign
		Kind        Kind
	}

	ShoppingItem struct {
		ID    int64
		Name  string
		Price decimal.Decimal
	}

	Setting struct {
		Name  string
		Value string
	}

	// Credentials for the linked wishlist account.
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// WishlistItem is a raw pair as produced by a fetcher. Price is still
	// currency-formatted text.
	WishlistItem struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}

	// MergeResult counts what a wishlist merge did.
	MergeResult struct {
		Inserted int `json:"inserted"`
		Updated  int `json:"updated"`
		Skipped  int `json:"skipped"`
		Invalid  int `json:"invalid"`
	}

	// Summary is derived from the transaction collection on every read.
	Summary struct {
		Income   decimal.Decimal `json:"income"`
		Expense  decimal.Decimal `json:"expense"`
		NetWorth decimal.Decimal `json:"net_worth"`
	}
)

// Kinds lists every valid transaction kind.
var Kinds = []Kind{Income, Expense, Shopping}

// Outflows are the kinds subtracted from net worth.
var Outflows = []Kind{Expense, Shopping}

// ParseKind accepts any casing of a known kind.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", ErrInvalidKind
}

func (k Kind) Valid() bool {
	switch k {
	case Income, Expense, Shopping:
		return true
	}
	return false
}

func (k Kind) IsOutflow() bool {
	return k == Expense || k == Shopping
}

// Signed returns the amount with the sign implied by the kind.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind.IsOutflow() {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return Invalid("date", "cannot be zero")
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return Invalid("description", fmt.Sprintf("too long (max %d characters)", maxDescriptionLen))
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := CheckAmount("amount", t.Amount); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (s ShoppingItem) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(s.Name) > maxDescriptionLen {
		return Invalid("name", fmt.Sprintf("too long (max %d characters)", maxDescriptionLen))
	}
	return CheckAmount("price", s.Price)
}

// Capitalize upper-cases the first letter of a manually entered item name.
func Capitalize(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// ValidateSetting checks values of the well-known settings. Unknown names
// are accepted as free-form text.
func ValidateSetting(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	switch name {
	case SettingResetDay:
		_, err := ParseResetDay(value)
		return err
	case SettingTheme:
		if strings.TrimSpace(value) == "" {
			return Invalid("theme", "cannot be empty")
		}
	case SettingWishlistAccount:
		if _, err := DecodeCredentials(value); err != nil {
			return err
		}
	}
	return nil
}

// ParseResetDay parses a day of month in [1,31].
func ParseResetDay(value string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || day < 1 || day > 31 {
		return 0, Invalid(SettingResetDay, "must be a day of month between 1 and 31")
	}
	return day, nil
}

func (c Credentials) IsZero() bool {
	return c.Email == "" && c.Password == ""
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return Invalid("email", "cannot be empty")
	}
	if c.Password == "" {
		return Invalid("password", "cannot be empty")
	}
	return nil
}

// EncodeCredentials serializes credentials for the wishlist_account setting.
func EncodeCredentials(c Credentials) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	return string(b), nil
}

// DecodeCredentials parses a stored wishlist_account value.
func DecodeCredentials(value string) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal([]byte(value), &c); err != nil {
		return Credentials{}, Invalid(SettingWishlistAccount, "malformed credentials")
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (r MergeResult) Total() int {
	return r.Inserted + r.Updated + r.Skipped + r.Invalid
}

// NewSummary derives net worth from income and outflow totals.
func NewSummary(income, expense decimal.Decimal) Summary {
	return Summary{Income: income, Expense: expense, NetWorth: income.Sub(expense)}
}
