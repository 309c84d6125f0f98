// Package pdf pulls plain text out of PDF files with pdfcpu.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ai-digest-be/internal/pkg/logger"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrEmptyFile = errors.New("pdf file is empty")

// Result is the extracted text. LowConfidence flags output that is
// implausibly short for the file size, typically a scanned document.
type Result struct {
	Text          string `json:"-"`
	PageCount     int    `json:"pageCount"`
	LowConfidence bool   `json:"lowConfidence"`
}

const module = "PDF"

type Extractor struct {
	workDir string
	logger  logger.ILogger
}

func NewExtractor(workDir string, log logger.ILogger) *Extractor {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Extractor{workDir: workDir, logger: log}
}

var pageNumber = regexp.MustCompile(`(\d+)\.txt$`)

func (e *Extractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	dir, err := os.MkdirTemp(e.workDir, "pdf-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inFile := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContextFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir := filepath.Join(dir, "content")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	if err := api.ExtractContentFile(inFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract pdf content: %w", err)
	}

	text, err := e.readPages(outDir)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:          text,
		PageCount:     pdfCtx.PageCount,
		LowConfidence: IsLowConfidence(len(text), len(data)),
	}, nil
}

// readPages joins the decoded text of every page file in dir, in page
// order. Unreadable page files are skipped with a warning.
func (e *Extractor) readPages(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read content dir: %w", err)
	}

	type page struct {
		num  int
		text string
	}
	var pages []page
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		num := 0
		if m := pageNumber.FindStringSubmatch(entry.Name()); m != nil {
			num, _ = strconv.Atoi(m[1])
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.logger.Warn(module, "Skipping unreadable page content", map[string]interface{}{
				"file":  entry.Name(),
				"page":  num,
				"error": err.Error(),
			})
			continue
		}
		if text := strings.TrimSpace(DecodeContentStream(string(raw))); text != "" {
			pages = append(pages, page{num: num, text: text})
		}
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.text
	}
	return strings.Join(texts, "\n\n"), nil
}

// IsLowConfidence: under 50 characters overall, or under 100 per megabyte.
func IsLowConfidence(textLen, fileSize int) bool {
	if textLen < 50 {
		return true
	}
	mb := float64(fileSize) / (1024 * 1024)
	return mb >= 1 && float64(textLen)/mb < 100
}
