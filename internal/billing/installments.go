package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanInstallments splits a purchase into its installments. Each share is
// rounded down to cents and the remainder goes to the first installment, so
// the shares always add up to the purchase amount. Invoice binding and due
// dates are left to the caller.
func PlanInstallments(p *Purchase) ([]*Installment, error) {
	if err := validatePurchase(p); err != nil {
		return nil, err
	}

	n := p.Installments
	share := p.Amount.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	remainder := p.Amount.Sub(share.Mul(decimal.NewFromInt(int64(n))))

	installments := make([]*Installment, n)
	for i := range installments {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}

		installments[i] = &Installment{
			ID:         uuid.New(),
			PurchaseID: p.ID,
			Purchase:   p,
			Number:     i + 1,
			Total:      n,
			Amount:     amount,
			DueDate:    p.Date,
		}
	}

	return installments, nil
}

func validatePurchase(p *Purchase) error {
	switch {
	case !p.PaymentMethod.Valid():
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPurchase, p.PaymentMethod)
	case !p.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPurchase)
	case p.Installments < 1:
		return fmt.Errorf("%w: at least one installment is required", ErrInvalidPurchase)
	case p.PaymentMethod != PaymentCredit && p.Installments != 1:
		return fmt.Errorf("%w: only credit purchases can be split", ErrInvalidPurchase)
	case p.PaymentMethod == PaymentCredit && p.CardID == uuid.Nil:
		return fmt.Errorf("%w: credit purchase without card", ErrInvalidPurchase)
	case p.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidPurchase)
	}

	return nil
}
