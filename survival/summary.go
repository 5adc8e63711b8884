package survival

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// SummaryRow condenses one covariate's coefficient curve into scalars: the
// time-averaged coefficient and confidence bounds, each weighted by the
// inverse cumulative variance so that precisely estimated steps dominate.
type SummaryRow struct {
	Covariate string
	AvgCoef   float64
	AvgLower  float64
	AvgUpper  float64
}

// Summary returns one row per covariate. With an empty time index every
// average is NaN.
func (f *AalenAdditiveFitter) Summary() ([]SummaryRow, error) {
	if err := f.checkFitted("Summary"); err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, len(f.columns_))
	if f.cumHazards_ == nil {
		for j, name := range f.columns_ {
			rows[j] = SummaryRow{Covariate: name, AvgCoef: math.NaN(), AvgLower: math.NaN(), AvgUpper: math.NaN()}
		}
		return rows, nil
	}

	steps, d := f.cumHazards_.Dims()
	for j := 0; j < d; j++ {
		var weightSum, coefSum, lowerSum, upperSum float64
		for i := 0; i < steps; i++ {
			variance := f.cumVariance_.At(i, j)
			weightSum += scierr.SafeDivide(1, variance)
			coefSum += scierr.SafeDivide(f.cumHazards_.At(i, j), variance)
			lowerSum += scierr.SafeDivide(f.ciLower_.At(i, j), variance)
			upperSum += scierr.SafeDivide(f.ciUpper_.At(i, j), variance)
		}
		rows[j] = SummaryRow{
			Covariate: f.columns_[j],
			AvgCoef:   scierr.SafeDivide(coefSum, weightSum),
			AvgLower:  scierr.SafeDivide(lowerSum, weightSum),
			AvgUpper:  scierr.SafeDivide(upperSum, weightSum),
		}
	}
	return rows, nil
}

// PrintSummary writes a human-readable description of the fit to w: the
// one-line model description, the column bindings and counts, the summary
// table and the concordance, with the given number of decimal places.
func (f *AalenAdditiveFitter) PrintSummary(w io.Writer, decimals int) error {
	rows, err := f.Summary()
	if err != nil {
		return err
	}

	events := 0
	for _, e := range f.eventObserved_ {
		if e {
			events++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", f.String())
	fmt.Fprintf(&b, "%s = '%s'\n", justify("duration col", 18), f.durationCol_)
	fmt.Fprintf(&b, "%s = '%s'\n", justify("event col", 18), f.eventCol_)
	if f.weightsCol_ != "" {
		fmt.Fprintf(&b, "%s = '%s'\n", justify("weights col", 18), f.weightsCol_)
	}
	fmt.Fprintf(&b, "%s = %d\n", justify("number of subjects", 18), f.nExamples_)
	fmt.Fprintf(&b, "%s = %d\n", justify("number of events", 18), events)
	fmt.Fprintf(&b, "%s = %s\n", justify("time fit was run", 18), f.timeFitWasCalled_)
	b.WriteString("\n---\n")

	writeSummaryTable(&b, rows, f.alpha, decimals)

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Concordance = %.*f\n", decimals, f.concordance_)

	_, err = io.WriteString(w, b.String())
	return err
}

func justify(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func writeSummaryTable(b *strings.Builder, rows []SummaryRow, alpha float64, decimals int) {
	headers := []string{
		"avg(coef)",
		fmt.Sprintf("avg(lower %.2f)", alpha),
		fmt.Sprintf("avg(upper %.2f)", alpha),
	}

	nameWidth := 0
	for _, row := range rows {
		if len(row.Covariate) > nameWidth {
			nameWidth = len(row.Covariate)
		}
	}

	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for k, h := range headers {
		widths[k] = len(h)
	}
	for i, row := range rows {
		cells[i] = []string{
			strconv.FormatFloat(row.AvgCoef, 'f', decimals, 64),
			strconv.FormatFloat(row.AvgLower, 'f', decimals, 64),
			strconv.FormatFloat(row.AvgUpper, 'f', decimals, 64),
		}
		for k, cell := range cells[i] {
			if len(cell) > widths[k] {
				widths[k] = len(cell)
			}
		}
	}

	b.WriteString(strings.Repeat(" ", nameWidth))
	for k, h := range headers {
		fmt.Fprintf(b, "  %*s", widths[k], h)
	}
	b.WriteByte('\n')

	for i, row := range rows {
		fmt.Fprintf(b, "%-*s", nameWidth, row.Covariate)
		for k, cell := range cells[i] {
			fmt.Fprintf(b, "  %*s", widths[k], cell)
		}
		b.WriteByte('\n')
	}
}
