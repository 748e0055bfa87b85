package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrInvalidEntryNumber = errors.New("invalid journal entry number")
	ErrInvalidPeriodCode  = errors.New("invalid financial period code")
	ErrTextTooLong        = errors.New("text exceeds maximum length")
)

// Validation constants
const (
	MinJournalLines      = 2
	MaxEntryNumberLength = 64
	MaxDescriptionLength = 1024
	MaxPeriodCodeLength  = 32
	MaxLineAmount        = "1000000000000" // 1 trillion
	MinLineAmount        = "0.01"

	// DefaultBalanceTolerance is the per-currency debit/credit difference
	// accepted when none is configured.
	DefaultBalanceTolerance = "0.01"
)

var (
	currencyRegex    = regexp.MustCompile(`^[A-Z]{3}$`)
	entryNumberRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)
	periodCodeRegex  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ValidateCurrency validates an ISO 4217 shaped currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("%w: %q is not a three letter ISO 4217 code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a journal line amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinLineAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinLineAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxLineAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxLineAmount)
	}

	return nil
}

// ValidateEntryNumber validates a human readable journal entry number.
func ValidateEntryNumber(number string) error {
	number = strings.TrimSpace(number)

	if number == "" {
		return fmt.Errorf("%w: number cannot be empty", ErrInvalidEntryNumber)
	}

	if len(number) > MaxEntryNumberLength {
		return fmt.Errorf("%w: number exceeds %d characters", ErrInvalidEntryNumber, MaxEntryNumberLength)
	}

	if !entryNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidEntryNumber, number)
	}

	return nil
}

// ValidatePeriodCode validates a financial period code such as "2024-03".
func ValidatePeriodCode(code string) error {
	code = strings.TrimSpace(code)

	if code == "" || len(code) > MaxPeriodCodeLength || !periodCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodCode, code)
	}

	return nil
}

// ValidateText checks an optional free text field against a maximum length.
func ValidateText(field, value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrTextTooLong, field, max)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
