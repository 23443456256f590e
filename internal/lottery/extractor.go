package lottery

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"gitlab.com/nevasik7/alerting/logger"

	"drawstats/internal/domain"
	"drawstats/internal/extract"
)

// Canonical division set, in payout order. At most one extracted entry per
// label regardless of how often an alias appears on the page.
var divisionOrder = []string{
	"Jackpot",
	"Division 2", "Division 3", "Division 4", "Division 5",
	"Division 6", "Division 7", "Division 8", "Division 9",
}

var divisionAliases = map[string][]string{
	"Jackpot":    {"jackpot", "division 1", "div 1", "1st prize"},
	"Division 2": {"division 2", "div 2"},
	"Division 3": {"division 3", "div 3"},
	"Division 4": {"division 4", "div 4"},
	"Division 5": {"division 5", "div 5"},
	"Division 6": {"division 6", "div 6"},
	"Division 7": {"division 7", "div 7"},
	"Division 8": {"division 8", "div 8"},
	"Division 9": {"division 9", "div 9"},
}

type ExtractorConfig struct {
	// Amounts below this are rejected as stray numbers (row indices, ball
	// numbers) rather than prize pools.
	MinPrizeAmount float64 `yaml:"min_prize_amount"`
	// Integers above this cannot be winner counts.
	MaxWinnerCount int `yaml:"max_winner_count"`
	// How much page text after an alias is searched in the fulltext scan.
	TextWindow int `yaml:"text_window"`
}

// Extractor turns a rendered prize page into a DrawSnapshot. Strategies are
// tried in a fixed order and the one that produced the divisions is recorded
// on the snapshot; both failing yields a valid zero-division snapshot.
type Extractor struct {
	log      logger.Logger
	cfg      ExtractorConfig
	minPrize decimal.Decimal
}

func NewExtractor(log logger.Logger, cfg ExtractorConfig) *Extractor {
	if cfg.MinPrizeAmount <= 0 {
		cfg.MinPrizeAmount = 100
	}
	if cfg.MaxWinnerCount <= 0 {
		cfg.MaxWinnerCount = 100000
	}
	if cfg.TextWindow <= 0 {
		cfg.TextWindow = 200
	}
	return &Extractor{log: log, cfg: cfg, minPrize: decimal.NewFromFloat(cfg.MinPrizeAmount)}
}

type strategy struct {
	name string
	fn   func(doc *goquery.Document) []domain.PrizeDivision
}

// Snapshot extracts the prize breakdown for drawNumber out of rendered HTML.
func (e *Extractor) Snapshot(html string, drawNumber int, at time.Time) domain.DrawSnapshot {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.log.Warnf("prize page unparseable for draw %d: %v", drawNumber, err)
		return domain.NewDrawSnapshot(drawNumber, nil, "", at)
	}

	strategies := []strategy{
		{name: "table", fn: e.fromTables},
		{name: "fulltext", fn: e.fromText},
	}
	for _, s := range strategies {
		if divisions := s.fn(doc); len(divisions) > 0 {
			e.log.Debugf("draw %d: %d divisions via %s", drawNumber, len(divisions), s.name)
			return domain.NewDrawSnapshot(drawNumber, divisions, s.name, at)
		}
	}

	e.log.Warnf("draw %d: no prize divisions extracted", drawNumber)
	return domain.NewDrawSnapshot(drawNumber, nil, "", at)
}

// fromTables scans rendered tables for rows naming a known division. The
// first table with any hit is authoritative; later tables are ignored.
func (e *Extractor) fromTables(doc *goquery.Document) []domain.PrizeDivision {
	var result []domain.PrizeDivision

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		found := map[string]domain.PrizeDivision{}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td,th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}

			label, ok := matchDivision(strings.ToLower(strings.Join(cells, " ")))
			if !ok {
				return
			}
			if _, seen := found[label]; seen {
				return // first matching row per division wins
			}
			if d, ok := e.divisionFromCells(label, cells); ok {
				found[label] = d
			}
		})

		if len(found) == 0 {
			return true // keep scanning tables
		}
		result = ordered(found)
		return false
	})

	return result
}

// divisionFromCells classifies each cell as an amount or a winner count.
// The minimum-amount threshold cuts both ways: bare small integers cannot
// be pools, and large amounts cannot be winner counts.
func (e *Extractor) divisionFromCells(label string, cells []string) (domain.PrizeDivision, bool) {
	var amounts []decimal.Decimal
	winners := -1

	for _, cell := range cells {
		if _, isLabel := matchDivision(strings.ToLower(cell)); isLabel {
			continue // the "Division N" cell must not feed the winner count
		}
		if v, ok := extract.Money(cell); ok && v.GreaterThanOrEqual(e.minPrize) {
			amounts = append(amounts, v)
			continue
		}
		if winners < 0 {
			if n, ok := extract.Count(cell); ok && n <= e.cfg.MaxWinnerCount {
				winners = n
			}
		}
	}

	if len(amounts) == 0 {
		return domain.PrizeDivision{}, false
	}
	if winners < 0 {
		winners = 0
	}

	return buildDivision(label, amounts, winners), true
}

// fromText is the fallback: a whole-page scan applying the same
// alias-then-amount pattern over raw text.
func (e *Extractor) fromText(doc *goquery.Document) []domain.PrizeDivision {
	text := doc.Text()
	lower := strings.ToLower(text)
	found := map[string]domain.PrizeDivision{}

	for _, label := range divisionOrder {
		for _, alias := range divisionAliases[label] {
			idx := strings.Index(lower, alias)
			if idx < 0 {
				continue
			}
			end := idx + len(alias) + e.cfg.TextWindow
			if end > len(text) {
				end = len(text)
			}
			window := trimAtNextDivision(text[idx+len(alias):end], label)

			var amounts []decimal.Decimal
			for _, v := range extract.MoneyAll(window) {
				if v.GreaterThanOrEqual(e.minPrize) {
					amounts = append(amounts, v)
				}
			}
			if len(amounts) == 0 {
				continue
			}

			found[label] = buildDivision(label, amounts, winnersFromText(window, e.cfg.MaxWinnerCount))
			break
		}
	}

	return ordered(found)
}

// trimAtNextDivision stops a text window where the next division's copy
// starts, so one division's scan cannot pick up its neighbour's numbers.
func trimAtNextDivision(window, ownLabel string) string {
	lower := strings.ToLower(window)
	cut := len(window)
	for _, label := range divisionOrder {
		if label == ownLabel {
			continue
		}
		for _, alias := range divisionAliases[label] {
			if idx := strings.Index(lower, alias); idx >= 0 && idx < cut {
				cut = idx
			}
		}
	}
	return window[:cut]
}

var winnersRe = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s*winner`)

func winnersFromText(window string, maxCount int) int {
	m := winnersRe.FindStringSubmatch(window)
	if m == nil {
		return 0 // "no winners" or count not stated
	}
	if n, ok := extract.Count(m[1]); ok && n <= maxCount {
		return n
	}
	return 0
}

// buildDivision applies the rollover invariant: no winners means nothing
// paid. With winners, a second extracted amount is the payout; a single
// amount means the whole pool was paid.
func buildDivision(label string, amounts []decimal.Decimal, winners int) domain.PrizeDivision {
	payout := decimal.Zero
	if winners > 0 {
		if len(amounts) >= 2 {
			payout = amounts[1]
		} else {
			payout = amounts[0]
		}
	}
	return domain.PrizeDivision{
		Label:           label,
		PrizePoolAmount: amounts[0],
		WinnerCount:     winners,
		PayoutAmount:    payout,
	}
}

func matchDivision(rowText string) (string, bool) {
	for _, label := range divisionOrder {
		for _, alias := range divisionAliases[label] {
			if strings.Contains(rowText, alias) {
				return label, true
			}
		}
	}
	return "", false
}

func ordered(found map[string]domain.PrizeDivision) []domain.PrizeDivision {
	var out []domain.PrizeDivision
	for _, label := range divisionOrder {
		if d, ok := found[label]; ok {
			out = append(out, d)
		}
	}
	return out
}
