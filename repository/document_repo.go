package repository

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/Regeleardealului/diabetes-agent/utils"
	"github.com/ledongthuc/pdf"
)

// DocumentRepo reads knowledge-source documents from a directory.
type DocumentRepo struct {
	dir string
}

func NewDocumentRepo(dir string) *DocumentRepo {
	return &DocumentRepo{
		dir: dir,
	}
}

// Dir returns the source directory the repo reads from.
func (r *DocumentRepo) Dir() string {
	return r.dir
}

// List returns the supported document paths under the source directory.
// Unsupported files are skipped with a warning. Order follows the
// directory listing, so repeated runs see the same sequence.
func (r *DocumentRepo) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w: %v", r.dir, types.ErrIngest, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		if !utils.IsSupportedFile(path) {
			log.Printf("Warning: skipping unsupported file %s (supported: %s)",
				path, strings.Join(utils.SupportedExtensions(), ", "))
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Load reads one document into pages. PDF pages keep their real page
// numbers; CSV and plain text load as a single page 1.
func (r *DocumentRepo) Load(path string) (types.Document, error) {
	doc := types.Document{
		Source: utils.SourceName(path),
		Path:   path,
	}

	var pages []types.Page
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err = loadPDFPages(path)
	case ".csv":
		pages, err = loadCSVPages(path)
	case ".txt", ".md":
		pages, err = loadTextPages(path)
	default:
		return doc, fmt.Errorf("load %s: %w: unsupported file type", path, types.ErrIngest)
	}
	if err != nil {
		return doc, err
	}

	doc.Pages = pages
	return doc, nil
}

func loadPDFPages(path string) ([]types.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w: %v", path, types.ErrIngest, err)
	}
	defer f.Close()

	var pages []types.Page
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("Warning: failed to extract text from %s page %d: %v", path, num, err)
			continue
		}
		pages = append(pages, types.Page{Number: num, Text: text})
	}
	return pages, nil
}

// loadCSVPages treats the first row as the header and renders every
// later row as one "header: value" line, keeping rows searchable as
// prose. CSV has no native pages, so the whole file is page 1.
func loadCSVPages(path string) ([]types.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w: %v", path, types.ErrIngest, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w: %v", path, types.ErrIngest, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	var b strings.Builder
	for _, row := range rows[1:] {
		var fields []string
		for i, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			name := fmt.Sprintf("column %d", i+1)
			if i < len(header) {
				name = strings.TrimSpace(header[i])
			}
			fields = append(fields, fmt.Sprintf("%s: %s", name, value))
		}
		if len(fields) > 0 {
			b.WriteString(strings.Join(fields, ", "))
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return nil, nil
	}
	return []types.Page{{Number: 1, Text: b.String()}}, nil
}

func loadTextPages(path string) ([]types.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", path, types.ErrIngest, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []types.Page{{Number: 1, Text: text}}, nil
}
