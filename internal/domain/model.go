package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Confidence tag for revenue figures: live extraction vs substituted fallback
type Confidence string

const (
	ConfidenceLive      Confidence = "live"
	ConfidenceEstimated Confidence = "estimated"
)

// One payout tier inside a draw. PayoutAmount is zero when WinnerCount
// is zero: an unpaid pool rolls over into the next draw.
type PrizeDivision struct {
	Label           string          `json:"label"` // "Jackpot", "Division 2".."Division 9"
	PrizePoolAmount decimal.Decimal `json:"prize_pool_amount"`
	WinnerCount     int             `json:"winner_count"`
	PayoutAmount    decimal.Decimal `json:"payout_amount"`
}

// Immutable result of one prize-page extraction. Zero divisions is a valid
// low-confidence outcome, not an error; callers check len(PrizeDivisions).
type DrawSnapshot struct {
	DrawNumber       int             `json:"draw_number"`
	PrizeDivisions   []PrizeDivision `json:"prize_divisions"`
	TotalPrizePool   decimal.Decimal `json:"total_prize_pool"`
	TotalPayouts     decimal.Decimal `json:"total_payouts"`
	TotalWinners     int             `json:"total_winners"`
	ExtractionMethod string          `json:"extraction_method,omitempty"` // "table"|"fulltext"|""
	ExtractedAt      time.Time       `json:"extracted_at"`
}

// NewDrawSnapshot builds a snapshot and derives the totals from the divisions.
func NewDrawSnapshot(drawNumber int, divisions []PrizeDivision, method string, at time.Time) DrawSnapshot {
	s := DrawSnapshot{
		DrawNumber:       drawNumber,
		PrizeDivisions:   divisions,
		TotalPrizePool:   decimal.Zero,
		TotalPayouts:     decimal.Zero,
		ExtractionMethod: method,
		ExtractedAt:      at,
	}
	for _, d := range divisions {
		s.TotalPrizePool = s.TotalPrizePool.Add(d.PrizePoolAmount)
		s.TotalPayouts = s.TotalPayouts.Add(d.PayoutAmount)
		s.TotalWinners += d.WinnerCount
	}
	return s
}

func (s DrawSnapshot) Empty() bool { return len(s.PrizeDivisions) == 0 }

// Net gaming revenue contributed by one draw, reconciled against the
// previous draw's rollover. NGRAdded may be negative when extraction noise
// inflates the previous rollover; it is flagged via Suspect, never clamped.
type NGRResult struct {
	DrawNumber       int             `json:"draw_number"`
	Success          bool            `json:"success"`
	NGRAdded         decimal.Decimal `json:"ngr_added"`
	PreviousRollover decimal.Decimal `json:"previous_rollover"`
	Formula          string          `json:"formula,omitempty"` // audit trace
	Suspect          bool            `json:"suspect,omitempty"` // negative NGR, likely partial capture
	Error            string          `json:"error,omitempty"`
}

// Weekly/annual revenue and token-holder earnings estimate for one token.
type RevenueSnapshot struct {
	TokenSymbol     string          `json:"token_symbol"`
	WeeklyRevenue   decimal.Decimal `json:"weekly_revenue"`
	AnnualRevenue   decimal.Decimal `json:"annual_revenue"`
	WeeklyEarnings  decimal.Decimal `json:"weekly_earnings"`
	AnnualEarnings  decimal.Decimal `json:"annual_earnings"`
	AccrualFraction decimal.Decimal `json:"accrual_fraction"` // 0..1, share flowing to the token
	Confidence      Confidence      `json:"confidence"`
	CapturedAt      time.Time       `json:"captured_at"`
}

// Combined response for all tracked tokens.
type RevenueReport struct {
	Snapshots []RevenueSnapshot `json:"snapshots"`
	LiveCount int               `json:"live_count"`
	ScrapedAt time.Time         `json:"scraped_at"`
}
