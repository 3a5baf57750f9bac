package decoder

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budgetgrader/internal/domain"
)

// decodeDOCX reads word/document.xml. Body paragraphs form the text; each
// top-level w:tbl becomes a RawTable. Horizontally merged cells repeat their
// text across the spanned columns and vertically merged continuation cells
// copy the cell above.
func decodeDOCX(content []byte) (*domain.DecodedDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, errors.New("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	w := &docxWalker{}
	if err := w.walk(xml.NewDecoder(rc)); err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	return &domain.DecodedDocument{
		Tables: w.tables,
		Text:   strings.Join(w.paragraphs, "\n"),
	}, nil
}

type docxWalker struct {
	paragraphs []string
	tables     []domain.RawTable

	tblDepth int
	table    domain.RawTable
	row      []string
	prevRow  []string

	cellParas []string
	span      int
	vContinue bool

	para   strings.Builder
	inPara bool
	inRun  bool
	inText bool

	// txbxDepth > 0 while inside a text box; its paragraphs are skipped so
	// they cannot reset the paragraph that anchors the box.
	txbxDepth int
}

func (w *docxWalker) walk(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "txbxContent" {
				w.txbxDepth++
			}
			if w.txbxDepth == 0 {
				w.start(t)
			}
		case xml.CharData:
			if w.txbxDepth == 0 && w.inPara && w.inText {
				w.para.Write(t)
			}
		case xml.EndElement:
			if w.txbxDepth == 0 {
				w.end(t)
			}
			if t.Name.Local == "txbxContent" {
				w.txbxDepth--
			}
		}
	}
}

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (w *docxWalker) start(el xml.StartElement) {
	top := w.tblDepth == 1
	switch el.Name.Local {
	case "tbl":
		w.tblDepth++
		if w.tblDepth == 1 {
			w.table = nil
			w.prevRow = nil
		}
	case "tr":
		if top {
			w.row = nil
		}
	case "tc":
		if top {
			w.cellParas = nil
			w.span = 1
			w.vContinue = false
		}
	case "gridSpan":
		if top {
			if v, ok := attr(el, "val"); ok {
				if n, err := strconv.Atoi(v); err == nil && n > 1 {
					w.span = n
				}
			}
		}
	case "vMerge":
		if top {
			v, _ := attr(el, "val")
			w.vContinue = v == "" || v == "continue"
		}
	case "p":
		w.para.Reset()
		w.inPara = true
	case "r":
		w.inRun = true
	case "t":
		w.inText = true
	case "tab":
		if w.inPara && w.inRun {
			w.para.WriteByte('\t')
		}
	case "br", "cr":
		if w.inPara && w.inRun {
			w.para.WriteByte('\n')
		}
	}
}

func (w *docxWalker) end(el xml.EndElement) {
	top := w.tblDepth == 1
	switch el.Name.Local {
	case "r":
		w.inRun = false
	case "t":
		w.inText = false
	case "p":
		w.inPara = false
		switch w.tblDepth {
		case 0:
			w.paragraphs = append(w.paragraphs, w.para.String())
		case 1:
			w.cellParas = append(w.cellParas, w.para.String())
		}
	case "tc":
		if top {
			text := strings.TrimSpace(strings.Join(w.cellParas, " "))
			if w.vContinue && len(w.row) < len(w.prevRow) {
				text = w.prevRow[len(w.row)]
			}
			for i := 0; i < w.span; i++ {
				w.row = append(w.row, text)
			}
		}
	case "tr":
		if top {
			w.table = append(w.table, w.row)
			w.prevRow = w.row
		}
	case "tbl":
		if top {
			w.tables = append(w.tables, w.table)
		}
		w.tblDepth--
	}
}
