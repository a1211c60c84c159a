package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"psp.com/kviz/backend/internal/quiz"
)

// The core fonts are cp1252; the Hungarian double acute letters are not,
// so they fall back to their umlaut forms.
var doubleAcute = strings.NewReplacer("ő", "ö", "Ő", "Ö", "ű", "ü", "Ű", "Ü")

// PDF renders res as a one-section certificate. name is printed under the
// title when given.
func PDF(res Result, name string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	utf := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string { return utf(doubleAcute.Replace(s)) }
	pdf.SetTitle(tr("Kvíz eredmény "+res.RoundID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, tr("Kvíz eredmény"), "", 1, "C", false, 0, "")

	if name != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(0, 10, tr(name), "", 1, "C", false, 0, "")
	}

	status := "NEM SIKERES"
	if res.Passed {
		status = "SIKERES"
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8,
		tr(fmt.Sprintf("Eredmény: %s | Helyes: %d/%d (%.0f%%) | Küszöb: %d | Dátum: %s",
			status, res.Correct, res.QuestionCount, pct(res.Correct, res.QuestionCount),
			res.Threshold, res.Timestamp.Format("2006-01-02"))),
		"", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(150, 7, tr("Kérdés"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, tr("Ítélet"), "1", 1, "C", false, 0, "")

	for i, d := range res.Details {
		pdf.SetFont("Helvetica", "", 10)
		lines := pdf.SplitText(tr(d.Question), 148)
		if len(lines) == 0 {
			lines = []string{""}
		}
		h := 6 * float64(len(lines))
		if pdf.GetY()+h > 280 {
			pdf.AddPage()
		}
		x, y := pdf.GetXY()
		pdf.CellFormat(10, h, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.MultiCell(150, 6, strings.Join(lines, "\n"), "1", "L", false)
		pdf.SetXY(x+160, y)
		pdf.CellFormat(30, h, tr(verdictLabel(d.Verdict)), "1", 1, "C", false, 0, "")

		if accepted := strings.TrimSpace(strings.Join(d.Answers, "; ")); accepted != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetX(x + 10)
			pdf.MultiCell(180, 5, tr("Elfogadott: "+accepted), "", "L", false)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr("Kör azonosító: "+res.RoundID), "", 1, "C", false, 0, "")

	return pdf.OutputBytes()
}

func verdictLabel(v quiz.Verdict) string {
	switch v {
	case quiz.Correct:
		return "helyes"
	case quiz.Incorrect:
		return "hibás"
	}
	return "-"
}

func pct(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) * 100 / float64(b)
}
