/*
validate.go - Item validation for batch ingestion

PURPOSE:
  Normalizes and rejects malformed supply/sale records. Checks run in a
  fixed order and stop at the first failure; each message is part of the
  wire contract and is recorded verbatim on the resulting Issue.

CHECK ORDER:
  1. sku present            "SKU is required"
  2. sku is text            "SKU must be a string"
  3. when parses (UTC)      "Date is required"
  4. qty is numeric         "Quantity must be a number"
  5. price is numeric       "Price must be a number"
  6. price >= 0             "Price must be positive"
  7. qty >= 0               "Quantity must be positive"

  On success the item is enriched with a parsed UTC timestamp and a fresh
  unique id; original fields are preserved unchanged.
*/
package warehouse

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// validateItem runs the ordered checks and returns the enriched item.
func validateItem(item Item) (validItem, error) {
	if isFalsy(item.SKU) {
		return validItem{}, &ValidationError{Message: "SKU is required"}
	}
	sku, ok := item.SKU.(string)
	if !ok {
		return validItem{}, &ValidationError{Message: "SKU must be a string"}
	}
	when, ok := item.When.(string)
	if !ok {
		return validItem{}, &ValidationError{Message: "Date is required"}
	}
	at, err := parseTime(when)
	if err != nil {
		return validItem{}, &ValidationError{Message: "Date is required"}
	}
	qty, ok := toDecimal(item.Qty)
	if !ok {
		return validItem{}, &ValidationError{Message: "Quantity must be a number"}
	}
	price, ok := toDecimal(item.Price)
	if !ok {
		return validItem{}, &ValidationError{Message: "Price must be a number"}
	}
	if price.IsNegative() {
		return validItem{}, &ValidationError{Message: "Price must be positive"}
	}
	if qty.IsNegative() {
		return validItem{}, &ValidationError{Message: "Quantity must be positive"}
	}

	return validItem{
		ID:    uuid.NewString(),
		SKU:   sku,
		When:  when,
		At:    at,
		Qty:   qty,
		Price: price,
	}, nil
}

// isFalsy mirrors the "missing or falsy" check on wire values: absent,
// empty string, false, or numeric zero.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return err == nil && d.IsZero()
	default:
		return false
	}
}

// toDecimal converts the numeric representations a wire value (or a direct
// Go caller) may carry.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case decimal.Decimal:
		return t, true
	default:
		return decimal.Decimal{}, false
	}
}
