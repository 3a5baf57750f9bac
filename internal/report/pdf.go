package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"budgetgrader/internal/domain"
)

// A4 portrait in points, with a fixed left margin for every element.
const (
	pdfPageHeight  = 842.0
	pdfLeft        = 40.0
	pdfTableWidth  = 515.0
	pdfLineHeight  = 16
	pdfRowsPerPage = 38
)

var pdfColumns = []string{"Item", "Field", "Status", "Expected", "Actual"}

// pdfLayout mirrors the subset of the pdfcpu JSON page description used here.
type pdfLayout struct {
	Paper  string              `json:"paper"`
	Origin string              `json:"origin"`
	Header *pdfBand            `json:"header"`
	Footer *pdfBand            `json:"footer"`
	Pages  map[string]*pdfPage `json:"pages"`
}

type pdfBand struct {
	Left   string   `json:"left,omitempty"`
	Center string   `json:"center,omitempty"`
	Right  string   `json:"right,omitempty"`
	Height float64  `json:"height"`
	Dx     int      `json:"dx"`
	Dy     int      `json:"dy"`
	Font   *pdfFont `json:"font"`
}

type pdfFont struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col,omitempty"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text  []pdfText  `json:"text,omitempty"`
	Table []pdfTable `json:"table,omitempty"`
}

type pdfBorder struct {
	Width int    `json:"width"`
	Color string `json:"col,omitempty"`
}

type pdfPadding struct {
	Width float64 `json:"width"`
}

type pdfText struct {
	Value   string      `json:"value"`
	Pos     [2]float64  `json:"pos"`
	Width   float64     `json:"width,omitempty"`
	Font    *pdfFont    `json:"font"`
	BgColor string      `json:"bgCol,omitempty"`
	Border  *pdfBorder  `json:"border,omitempty"`
	Padding *pdfPadding `json:"padding,omitempty"`
	Align   string      `json:"align,omitempty"`
}

type pdfTableHeader struct {
	Values  []string `json:"values"`
	BgColor string   `json:"bgCol"`
	Font    *pdfFont `json:"font"`
}

type pdfTable struct {
	Values     [][]string      `json:"values"`
	Pos        [2]float64      `json:"pos"`
	Width      float64         `json:"width"`
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
	ColWidths  []int           `json:"colWidths"`
	ColAnchors []string        `json:"colAnchors"`
	LineHeight int             `json:"lheight"`
	Font       *pdfFont        `json:"font"`
	Grid       bool            `json:"grid"`
	OddColor   string          `json:"oddCol,omitempty"`
	Border     *pdfBorder      `json:"border,omitempty"`
	Padding    *pdfPadding     `json:"padding,omitempty"`
	Header     *pdfTableHeader `json:"header"`
}

// WritePDF renders the report as an A4 document: a header block with the
// student details, a score box coloured by PassThreshold, one validation
// table per section and the summary.
func WritePDF(w io.Writer, r *domain.ScoreReport) error {
	layout, err := BuildPDFLayout(r)
	if err != nil {
		return err
	}
	conf := model.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(layout), w, conf); err != nil {
		return fmt.Errorf("report.WritePDF: %w", err)
	}
	return nil
}

// BuildPDFLayout returns the pdfcpu JSON page description for r.
func BuildPDFLayout(r *domain.ScoreReport) ([]byte, error) {
	regular := func(size int) *pdfFont { return &pdfFont{Name: "Helvetica", Size: size} }
	bold := func(size int) *pdfFont { return &pdfFont{Name: "Helvetica-Bold", Size: size} }

	result, boxColor := "FAIL", failColor
	if Passed(r) {
		result, boxColor = "PASS", passColor
	}

	first := &pdfPage{}
	y := 70.0
	first.Content.Text = append(first.Content.Text,
		pdfText{
			Value: latin1("Student: " + orDash(r.StudentName) + "\nDepartment: " + orDash(r.Department)),
			Pos:   [2]float64{pdfLeft, y},
			Font:  regular(12),
		},
		pdfText{
			Value: fmt.Sprintf("Score: %d / %d  (%.1f%%)  %s",
				r.CorrectCount, r.TotalCalculations, r.Percentage, result),
			Pos:     [2]float64{pdfLeft, y + 60},
			Width:   pdfTableWidth,
			Font:    &pdfFont{Name: "Helvetica-Bold", Size: 16, Color: "#FFFFFF"},
			BgColor: boxColor,
			Border:  &pdfBorder{Width: 1, Color: boxColor},
			Padding: &pdfPadding{Width: 8},
			Align:   "Center",
		},
	)

	pages := []*pdfPage{first}
	page, top := first, y+90
	for _, sec := range pdfSections(r) {
		remaining := sec.rows
		for {
			free := int((pdfPageHeight-100-top)/pdfLineHeight) - 2
			if free < 3 {
				page = &pdfPage{}
				pages = append(pages, page)
				top, free = 60, pdfRowsPerPage
			}
			n := len(remaining)
			if n > free {
				n = free
			}
			page.Content.Text = append(page.Content.Text, pdfText{
				Value: sec.title,
				Pos:   [2]float64{pdfLeft, top + 14},
				Font:  bold(13),
			})
			chunk := remaining[:n]
			rows := len(chunk)
			if rows == 0 {
				chunk, rows = [][]string{{"No calculations"}}, 1
			}
			tableTop := top + 22
			page.Content.Table = append(page.Content.Table, pdfTable{
				Values:     chunk,
				Pos:        [2]float64{pdfLeft, tableTop + float64((rows+1)*pdfLineHeight)},
				Width:      pdfTableWidth,
				Rows:       rows,
				Cols:       len(pdfColumns),
				ColWidths:  []int{28, 26, 20, 13, 13},
				ColAnchors: []string{"Left", "Left", "Left", "Right", "Right"},
				LineHeight: pdfLineHeight,
				Font:       regular(8),
				Grid:       true,
				OddColor:   "#F5F7FA",
				Border:     &pdfBorder{Width: 1, Color: "#A0AEC0"},
				Padding:    &pdfPadding{Width: 2},
				Header: &pdfTableHeader{
					Values:  pdfColumns,
					BgColor: "#E2E8F0",
					Font:    bold(9),
				},
			})
			top = tableTop + float64((rows+1)*pdfLineHeight) + 10
			remaining = remaining[n:]
			if len(remaining) == 0 {
				break
			}
			top = pdfPageHeight
		}
	}

	summary := r.Summary
	if summary == "" {
		summary = fmt.Sprintf("%d of %d calculations correct (%.1f%%).",
			r.CorrectCount, r.TotalCalculations, r.Percentage)
	}
	if pdfPageHeight-100-top < 60 {
		page = &pdfPage{}
		pages = append(pages, page)
		top = 60
	}
	page.Content.Text = append(page.Content.Text,
		pdfText{Value: "Summary", Pos: [2]float64{pdfLeft, top + 14}, Font: bold(13)},
		pdfText{Value: latin1(wrap(summary, 95)), Pos: [2]float64{pdfLeft, top + 32}, Width: pdfTableWidth, Font: regular(10)},
	)

	layout := pdfLayout{
		Paper:  "A4",
		Origin: "UpperLeft",
		Header: &pdfBand{Center: "Budget Grading Report", Height: 40, Dy: 10, Font: bold(18)},
		Footer: &pdfBand{Left: "Generated %t", Right: "Page %p of %P", Height: 20, Dx: 10, Dy: 5, Font: regular(8)},
		Pages:  make(map[string]*pdfPage, len(pages)),
	}
	for i, p := range pages {
		layout.Pages[strconv.Itoa(i+1)] = p
	}
	return json.Marshal(layout)
}

type pdfSection struct {
	title string
	rows  [][]string
}

func pdfSections(r *domain.ScoreReport) []pdfSection {
	sections := []pdfSection{
		{title: "Fixed Expenses"},
		{title: "Variable Expenses"},
		{title: "Total Expenses"},
	}
	index := map[string]int{"Fixed": 0, "Variable": 1, "Total": 2}
	for _, d := range detailRows(r) {
		i := index[d.Section]
		sections[i].rows = append(sections[i].rows, []string{
			latin1(truncateCell(d.Description, 34)),
			d.Field,
			latin1(truncateCell(d.Result.Status, 26)),
			formatNumber(d.Result.Expected),
			formatOptional(d.Result.Actual),
		})
	}
	return sections
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// latin1 replaces runes the standard PDF fonts cannot encode.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return '?'
		}
		return r
	}, s)
}

func truncateCell(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit-3]) + "..."
}

// wrap breaks s into lines of at most width runes at word boundaries.
func wrap(s string, width int) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(s) {
		l := len([]rune(word))
		if n > 0 && n+1+l > width {
			b.WriteByte('\n')
			n = 0
		} else if n > 0 {
			b.WriteByte(' ')
			n++
		}
		b.WriteString(word)
		n += l
	}
	return b.String()
}
