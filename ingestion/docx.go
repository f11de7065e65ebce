package ingestion

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const docxBodyPart = "word/document.xml"

// docxLoader extracts plain text from a Word Open XML document.
// Paragraphs end with a newline. Tabs and breaks keep their whitespace.
type docxLoader struct {
	r    io.ReaderAt
	size int64
}

var _ documentloaders.Loader = docxLoader{}

func newDocx(r io.ReaderAt, size int64) docxLoader {
	return docxLoader{r: r, size: size}
}

// Load returns the document body as a single document.
func (l docxLoader) Load(_ context.Context) ([]schema.Document, error) {
	archive, err := zip.NewReader(l.r, l.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}

	for _, f := range archive.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
		}
		defer rc.Close()

		text, err := extractDocxText(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
		}
		return []schema.Document{{PageContent: text, Metadata: map[string]any{}}}, nil
	}
	return nil, fmt.Errorf("%w: missing %s", ErrUnreadableDocument, docxBodyPart)
}

// LoadAndSplit loads the document and splits it.
func (l docxLoader) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return textsplitter.SplitDocuments(splitter, docs)
}

func extractDocxText(r io.Reader) (string, error) {
	var sb strings.Builder
	decoder := xml.NewDecoder(r)
	inText, inTabStops := false, false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
