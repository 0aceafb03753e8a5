package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 9
	pdfTabWidth   = 4 // Number of spaces for a tab
	pdfStyle      = "github"
)

// treeASCII replaces the box-drawing characters of a printed tree, which
// the core fonts cannot show.
var treeASCII = strings.NewReplacer("├── ", "|-- ", "└── ", "`-- ", "│   ", "|   ")

// pdfSink renders the report as a syntax-highlighted PDF file.
type pdfSink struct {
	path string
}

func (s pdfSink) Emit(r Report) error {
	return generatePDF(r, s.path)
}

func (s pdfSink) String() string { return s.path }

// generatePDF writes the optional tree, one section per block and the
// summary to outputPath.
func generatePDF(r Report, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	style := styles.Get(pdfStyle)
	if style == nil {
		style = styles.Fallback
	}

	if r.Tree != "" {
		pdf.SetFont("Courier", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, treeASCII.Replace(r.Tree), "", "L", false)
		pdf.AddPage()
	}

	for i, b := range r.Blocks {
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, tr(b.Header()), "", "L", false)
		pdf.Ln(pdfLineHeight / 2)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if err := writeHighlightedCode(pdf, style, b, tr); err != nil {
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, tr(b.Content), "", "L", false)
		}
		if i < len(r.Blocks)-1 {
			pdf.AddPage()
		}
	}

	pdf.SetFont("Helvetica", "B", pdfFontSize+1)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(pdfLineHeight)
	pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, "--- Summary ---", "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	summary := fmt.Sprintf("Total files processed: %d\nTotal size: %d bytes", r.Summary.TotalFiles, r.Summary.TotalSize)
	if r.Summary.TotalTokens > 0 {
		summary += fmt.Sprintf("\nTotal tokens: %d", r.Summary.TotalTokens)
	}
	pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, summary, "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

// lexerFor picks a chroma lexer by file name, then by the block's language
// tag, then by analysing the content.
func lexerFor(b Block) chroma.Lexer {
	lexer := lexers.Match(path.Base(b.RelPath))
	if lexer == nil && b.Language != "" {
		lexer = lexers.Get(b.Language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(b.Content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// writeHighlightedCode tokenises a block and writes each token with the
// colour and weight the style assigns to it.
func writeHighlightedCode(pdf *gofpdf.Fpdf, style *chroma.Style, b Block, tr func(string) string) error {
	iterator, err := lexerFor(b).Tokenise(nil, b.Content)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	fg := style.Get(chroma.Text).Colour

	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)
		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		pdf.SetFontStyle(fontStyle)

		switch {
		case entry.Colour.IsSet():
			pdf.SetTextColor(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
		case fg.IsSet():
			pdf.SetTextColor(int(fg.Red()), int(fg.Green()), int(fg.Blue()))
		default:
			pdf.SetTextColor(0, 0, 0)
		}

		value := strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth))
		pdf.Write(pdfLineHeight, tr(value))
	}
	pdf.Ln(-1)
	return pdf.Error()
}
