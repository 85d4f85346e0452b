package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cardcycle/internal/billing"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
)

//go:generate mockgen -source=service.go -destination=recorder_mock.go -package=importer
type Recorder interface {
	RecordPurchase(ctx context.Context, params billing.RecordParams) (*billing.Purchase, []*billing.Installment, error)
}

// Suggester maps a raw statement description to a preferred one, or "".
type Suggester interface {
	Suggest(ctx context.Context, rawDescription string) (string, error)
}

// Result counts what an import did with each statement line.
type Result struct {
	Imported      int
	Continuations int
	Credits       int
	Purchases     []*billing.Purchase
}

type Service struct {
	parser    Parser
	recorder  Recorder
	suggester Suggester
	log       zerolog.Logger
}

// NewService builds an importer. suggester may be nil, in which case
// descriptions are kept as exported.
func NewService(recorder Recorder, suggester Suggester, log zerolog.Logger) *Service {
	return &Service{
		parser:    statement.NewParser(),
		recorder:  recorder,
		suggester: suggester,
		log:       log,
	}
}

// Import records every charge of a statement as a credit purchase on cardID.
//
// A line marked "1/n" becomes an n-installment purchase of n times the line
// amount; later installments ("2/n" onwards) belong to purchases already
// recorded from earlier statements and are skipped, as are credits. Lines are
// recorded one by one: on error the purchases recorded so far are kept and
// returned in the Result.
func (s *Service) Import(ctx context.Context, cardID uuid.UUID, r io.Reader) (Result, error) {
	var res Result

	entries, err := s.parser.Parse(r)
	if err != nil {
		return res, fmt.Errorf("parsing statement: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		switch {
		case e.Credit():
			res.Credits++
			continue
		case e.Installment > 1:
			res.Continuations++
			continue
		}

		params := billing.RecordParams{
			CardID:        cardID,
			Description:   s.describe(ctx, e.Description),
			Amount:        e.Amount,
			Date:          e.Date,
			PaymentMethod: billing.PaymentCredit,
			Installments:  1,
		}

		if e.Installment == 1 {
			params.Installments = e.Installments
			params.Amount = e.Amount.Mul(decimal.NewFromInt(int64(e.Installments)))
		}

		p, _, err := s.recorder.RecordPurchase(ctx, params)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", e.Row, err)
		}

		res.Imported++
		res.Purchases = append(res.Purchases, p)
	}

	s.log.Info().
		Str("card_id", cardID.String()).
		Int("imported", res.Imported).
		Int("continuations", res.Continuations).
		Int("credits", res.Credits).
		Msg("statement imported")

	return res, nil
}

func (s *Service) describe(ctx context.Context, raw string) string {
	if s.suggester == nil {
		return raw
	}

	suggested, err := s.suggester.Suggest(ctx, raw)
	if err != nil {
		s.log.Warn().Err(err).Str("description", raw).Msg("description lookup failed")
		return raw
	}

	if suggested == "" {
		return raw
	}

	return suggested
}
