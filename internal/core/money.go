// Package core provides the household finance domain types.
//
// This file contains parsing helpers for monetary amounts supplied as
// strings by the HTTP layer and assistant tools.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to a monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading currency symbol. Negative values are rejected; zero is
// allowed (placeholder line items keep a zero amount).
//
// Examples:
//
//	ParseAmount("1205")    -> 1205
//	ParseAmount("12,34")   -> 12.34
//	ParseAmount("£450.00") -> 450
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePercent parses a share percentage, rejecting values outside [0,100].
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, ErrInvalidPercent
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPercent
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidPercent
	}
	return d, nil
}
