package parser

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// TextExtractor handles plain text files. Runs of blank lines collapse to a
// single paragraph break.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.ReadSeeker) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n")), nil
}
