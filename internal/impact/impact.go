// Package impact computes the dollar impact figures used in bounty reports.
package impact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Solvency statuses.
const (
	StatusSolvent   = "SOLVENT"
	StatusInsolvent = "INSOLVENT"
)

// ErrMissingField is returned when a required input field is absent.
var ErrMissingField = errors.New("missing field")

// Money is a USD amount encoded as a JSON number with two decimals.
type Money decimal.Decimal

// MarshalJSON encodes m as an unquoted fixed-point number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// String returns m with two decimals.
func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

// Position is one holding at risk. Values may be JSON numbers or numeric strings.
type Position struct {
	Amount   *decimal.Decimal `json:"amount"`
	PriceUSD *decimal.Decimal `json:"price_usd"`
}

// FundsAtRisk returns Σ amount × price_usd.
func FundsAtRisk(positions []Position) (Money, error) {
	total := decimal.Zero
	for i, p := range positions {
		if p.Amount == nil {
			return Money{}, fmt.Errorf("position %d: %w: amount", i, ErrMissingField)
		}
		if p.PriceUSD == nil {
			return Money{}, fmt.Errorf("position %d: %w: price_usd", i, ErrMissingField)
		}
		total = total.Add(p.Amount.Mul(*p.PriceUSD))
	}
	return Money(total), nil
}

// ReadPositions decodes a JSON array of positions.
func ReadPositions(r io.Reader) ([]Position, error) {
	var positions []Position
	if err := json.NewDecoder(r).Decode(&positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

// BalanceSheet is the insolvency input. LossUSD defaults to zero.
type BalanceSheet struct {
	AssetsUSD      *decimal.Decimal `json:"assets_usd"`
	LiabilitiesUSD *decimal.Decimal `json:"liabilities_usd"`
	LossUSD        *decimal.Decimal `json:"loss_usd"`
}

// Solvency is the insolvency simulation result.
type Solvency struct {
	AssetsAfterLossUSD Money  `json:"assets_after_loss_usd"`
	LiabilitiesUSD     Money  `json:"liabilities_usd"`
	DeficitUSD         Money  `json:"deficit_usd"` // never negative
	Status             string `json:"status"`
}

// Insolvency applies the loss to assets and compares against liabilities.
func Insolvency(b BalanceSheet) (*Solvency, error) {
	if b.AssetsUSD == nil {
		return nil, fmt.Errorf("%w: assets_usd", ErrMissingField)
	}
	if b.LiabilitiesUSD == nil {
		return nil, fmt.Errorf("%w: liabilities_usd", ErrMissingField)
	}

	loss := decimal.Zero
	if b.LossUSD != nil {
		loss = *b.LossUSD
	}

	assets := b.AssetsUSD.Sub(loss)
	deficit := b.LiabilitiesUSD.Sub(assets)

	status := StatusSolvent
	if deficit.IsPositive() {
		status = StatusInsolvent
	}

	return &Solvency{
		AssetsAfterLossUSD: Money(assets),
		LiabilitiesUSD:     Money(*b.LiabilitiesUSD),
		DeficitUSD:         Money(decimal.Max(deficit, decimal.Zero)),
		Status:             status,
	}, nil
}

// ReadBalanceSheet decodes a JSON balance sheet object.
func ReadBalanceSheet(r io.Reader) (BalanceSheet, error) {
	var b BalanceSheet
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return BalanceSheet{}, fmt.Errorf("decode balance sheet: %w", err)
	}
	return b, nil
}
