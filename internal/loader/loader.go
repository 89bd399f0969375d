// Package loader reads source documents from the filesystem for ingestion.
package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuitshoxrux/copilot/models"
)

// readers maps supported file extensions to their text extraction.
var readers = map[string]func(path string) (string, error){
	".docx": readDocx,
	".txt":  readPlain,
	".md":   readPlain,
}

// LoadDir walks dir recursively and returns one Document per supported file,
// identified by its path relative to dir and carrying that path as "source"
// metadata. An unreadable file fails the whole load: ingestion is
// all-or-nothing, so a partially loaded corpus is never returned.
func LoadDir(dir string) ([]models.Document, error) {
	var docs []models.Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		read, ok := readers[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		text, err := read(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		docs = append(docs, models.Document{
			ID:       rel,
			Text:     text,
			Metadata: map[string]interface{}{"source": rel},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, nil
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readDocx extracts the paragraph text of a docx file. A docx is a zip
// archive whose body text lives in word/document.xml as paragraphs of runs.
func readDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document part: %w", err)
		}
		return parseDocumentXML(data)
	}
	return "", fmt.Errorf("missing word/document.xml")
}

// documentXML mirrors the parts of word/document.xml the extraction needs.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// parseDocumentXML flattens the paragraph runs into plain text. Paragraphs
// become blank-line separated blocks so they survive as chunking boundaries.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse document xml: %w", err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				b.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
