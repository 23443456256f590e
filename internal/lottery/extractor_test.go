package lottery

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prizeTableHTML = `
<html><body>
<h2>Draw #64</h2>
<table>
  <tr><th>Division</th><th>Prize Pool</th><th>Winners</th><th>Paid</th></tr>
  <tr><td>Jackpot</td><td>$1,200,000</td><td>0</td><td>-</td></tr>
  <tr><td>Division 2</td><td>$150,000</td><td>3</td><td>$45,000</td></tr>
  <tr><td>Division 3</td><td>$50K</td><td>12</td><td>$5,000</td></tr>
</table>
<table>
  <tr><td>Division 2</td><td>$999,999,999</td><td>1</td></tr>
</table>
</body></html>`

const prizeTextHTML = `
<html><body>
<div>Draw #64 results are in!</div>
<p>Jackpot of $2.5M rolled over, no winners this draw.</p>
<p>Division 2 paid out $120,000 to 4 winners.</p>
</body></html>`

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(newTestLogger(), ExtractorConfig{})
}

func TestExtractor_TableStrategy(t *testing.T) {
	t.Parallel()

	snap := testExtractor(t).Snapshot(prizeTableHTML, 64, time.Now())

	require.Len(t, snap.PrizeDivisions, 3)
	assert.Equal(t, "table", snap.ExtractionMethod)
	assert.Equal(t, 64, snap.DrawNumber)

	jackpot := snap.PrizeDivisions[0]
	assert.Equal(t, "Jackpot", jackpot.Label)
	assert.True(t, jackpot.PrizePoolAmount.Equal(decimal.RequireFromString("1200000")))
	assert.Equal(t, 0, jackpot.WinnerCount)
	assert.True(t, jackpot.PayoutAmount.IsZero(), "no winners means nothing paid")

	div2 := snap.PrizeDivisions[1]
	assert.Equal(t, "Division 2", div2.Label)
	assert.True(t, div2.PrizePoolAmount.Equal(decimal.RequireFromString("150000")),
		"first matching table is authoritative, second table ignored")
	assert.Equal(t, 3, div2.WinnerCount)
	assert.True(t, div2.PayoutAmount.Equal(decimal.RequireFromString("45000")))

	div3 := snap.PrizeDivisions[2]
	assert.True(t, div3.PrizePoolAmount.Equal(decimal.RequireFromString("50000")))
	assert.Equal(t, 12, div3.WinnerCount)
}

func TestExtractor_TableTotals(t *testing.T) {
	t.Parallel()

	snap := testExtractor(t).Snapshot(prizeTableHTML, 64, time.Now())

	assert.True(t, snap.TotalPrizePool.Equal(decimal.RequireFromString("1400000")))
	assert.True(t, snap.TotalPayouts.Equal(decimal.RequireFromString("50000")))
	assert.Equal(t, 15, snap.TotalWinners)
}

func TestExtractor_FulltextFallback(t *testing.T) {
	t.Parallel()

	snap := testExtractor(t).Snapshot(prizeTextHTML, 64, time.Now())

	require.Len(t, snap.PrizeDivisions, 2)
	assert.Equal(t, "fulltext", snap.ExtractionMethod)

	jackpot := snap.PrizeDivisions[0]
	assert.Equal(t, "Jackpot", jackpot.Label)
	assert.True(t, jackpot.PrizePoolAmount.Equal(decimal.RequireFromString("2500000")))
	assert.Equal(t, 0, jackpot.WinnerCount)
	assert.True(t, jackpot.PayoutAmount.IsZero())

	div2 := snap.PrizeDivisions[1]
	assert.True(t, div2.PrizePoolAmount.Equal(decimal.RequireFromString("120000")))
	assert.Equal(t, 4, div2.WinnerCount)
}

func TestExtractor_NothingExtractableIsNotAnError(t *testing.T) {
	t.Parallel()

	snap := testExtractor(t).Snapshot("<html><body><p>maintenance</p></body></html>", 9, time.Now())

	assert.True(t, snap.Empty())
	assert.Equal(t, "", snap.ExtractionMethod)
	assert.True(t, snap.TotalPrizePool.IsZero())
}

func TestExtractor_StrayNumbersRejected(t *testing.T) {
	t.Parallel()

	// row index 1 and ball number 7 are below the minimum plausible
	// amount; only the real pool survives
	html := `<html><body><table>
	<tr><td>1</td><td>Jackpot</td><td>7</td><td>$900,000</td><td>0</td></tr>
	</table></body></html>`

	snap := testExtractor(t).Snapshot(html, 5, time.Now())

	require.Len(t, snap.PrizeDivisions, 1)
	d := snap.PrizeDivisions[0]
	assert.True(t, d.PrizePoolAmount.Equal(decimal.RequireFromString("900000")))
}
