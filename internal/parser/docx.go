package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files. Paragraphs are separated by blank lines;
// headings stay inline as their own paragraph.
type DOCXExtractor struct{}

func (p *DOCXExtractor) Extract(r io.ReadSeeker) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if t := docxParagraphText(it); t != "" {
				paragraphs = append(paragraphs, t)
			}
		case *docx.Table:
			if t := docxTableText(it); t != "" {
				paragraphs = append(paragraphs, t)
			}
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n")), nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// Financial statements in Word files are usually tables; each row becomes a
// " | " separated line.
func docxTableText(tbl *docx.Table) string {
	var rows []string
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		line := strings.TrimSpace(strings.Join(cells, " | "))
		if strings.Trim(line, " |") != "" {
			rows = append(rows, line)
		}
	}
	return strings.Join(rows, "\n")
}
