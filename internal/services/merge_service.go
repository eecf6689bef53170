package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"mcmerge/internal/dataprocessing"
	"mcmerge/internal/exporter"
	"mcmerge/internal/infrastructure"
	"mcmerge/pkg/contracts/domain"
)

// OutputFormat selects the serialization of the consolidated table.
type OutputFormat string

const (
	FormatXLSX OutputFormat = "xlsx"
	FormatCSV  OutputFormat = "csv"
)

// UploadedFile is one allocation export received from the web layer, in
// upload order.
type UploadedFile struct {
	Name string
	Data io.Reader
}

// MergeResult carries the consolidated artifact and its summary.
type MergeResult struct {
	Content     []byte
	Filename    string
	ContentType string
	Summary     domain.MergeSummary
}

// MergeService consolidates uploaded allocation exports into one workbook.
type MergeService struct {
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	now     func() time.Time
}

// NewMergeService creates a merge service with the injected logger.
// The metrics argument may be nil, for tests.
func NewMergeService(logger *slog.Logger, metrics *infrastructure.Metrics) *MergeService {
	return &MergeService{
		logger:  infrastructure.WithComponent(logger, "merge_service"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Merge parses each uploaded file in order, concatenates the tables under
// the unified schema, applies the store consolidation rule and serializes
// the result. Duplicate item references across files are dropped after the
// first occurrence and reported in the summary.
func (s *MergeService) Merge(ctx context.Context, files []UploadedFile, format OutputFormat) (*MergeResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := s.now()

	if len(files) == 0 {
		return nil, ErrNoFilesUploaded
	}
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	tables := make([]*domain.Table, 0, len(files))
	var sourceRows int
	for _, file := range files {
		table, err := dataprocessing.ParseAllocation(file.Data, file.Name)
		if err != nil {
			infrastructure.WithError(s.logger, err).ErrorContext(ctx, "allocation export rejected",
				slog.String("file", file.Name))
			s.observeOutcome("parse_error")
			return nil, &FileError{Filename: file.Name, Err: err}
		}
		s.logger.InfoContext(ctx, "parsed allocation export",
			slog.String("file", file.Name),
			slog.Int("rows", len(table.Rows)),
			slog.Int("item_columns", len(table.ItemColumns())))
		if s.metrics != nil {
			s.metrics.FilesParsed.Inc()
		}
		sourceRows += len(table.Rows)
		tables = append(tables, table)
	}

	duplicates := dropDuplicateItems(tables)
	if len(duplicates) > 0 {
		s.logger.WarnContext(ctx, "duplicate item references ignored",
			slog.Any("items", duplicates))
	}

	concat, err := dataprocessing.Concat(tables)
	if err != nil {
		s.observeOutcome("merge_error")
		return nil, err
	}

	consolidated := dataprocessing.ConsolidateByStore(concat)

	consolidatedOn := s.now()
	result := &MergeResult{
		Summary: domain.MergeSummary{
			Files:          len(files),
			Stores:         len(consolidated.Rows),
			ItemLines:      len(consolidated.ItemColumns()),
			DuplicateItems: duplicates,
			ConsolidatedOn: consolidatedOn,
		},
	}

	switch format {
	case FormatXLSX:
		content, err := exporter.BuildWorkbook(consolidated, consolidatedOn)
		if err != nil {
			s.observeOutcome("write_error")
			return nil, fmt.Errorf("%w: %v", ErrWorkbookWrite, err)
		}
		result.Content = content
		result.Filename = consolidatedFilename(consolidatedOn, "xlsx")
		result.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		var buf bytes.Buffer
		if err := exporter.WriteCSV(&buf, consolidated, exporter.CSVOptions{BOMPrefix: true}); err != nil {
			s.observeOutcome("write_error")
			return nil, fmt.Errorf("%w: %v", ErrWorkbookWrite, err)
		}
		result.Content = buf.Bytes()
		result.Filename = consolidatedFilename(consolidatedOn, "csv")
		result.ContentType = "text/csv; charset=utf-8"
	}

	if s.metrics != nil {
		s.metrics.RowsMerged.Add(float64(sourceRows))
		s.metrics.MergeDuration.Observe(s.now().Sub(start).Seconds())
	}
	s.observeOutcome("success")

	s.logger.InfoContext(ctx, "merge completed",
		slog.Int("files", result.Summary.Files),
		slog.Int("stores", result.Summary.Stores),
		slog.Int("item_lines", result.Summary.ItemLines),
		slog.Int("duplicates", len(duplicates)),
		slog.String("output", result.Filename))

	return result, nil
}

// observeOutcome records the merge outcome counter when metrics are wired.
func (s *MergeService) observeOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.MergeRequests.WithLabelValues(outcome).Inc()
	}
}

// dropDuplicateItems removes item columns already seen in an earlier file,
// mutating the tables in place. The first file to carry an item reference
// keeps it. Returns the sorted, de-duplicated list of ignored references.
func dropDuplicateItems(tables []*domain.Table) []string {
	seen := make(map[string]bool)
	dupSet := make(map[string]bool)

	for _, t := range tables {
		var kept []string
		for _, c := range t.Columns {
			if domain.IsKeyColumn(c) {
				kept = append(kept, c)
				continue
			}
			if seen[c] {
				dupSet[c] = true
				delete(t.Items, c)
				for _, row := range t.Rows {
					delete(row, c)
				}
				continue
			}
			seen[c] = true
			kept = append(kept, c)
		}
		t.Columns = kept
	}

	if len(dupSet) == 0 {
		return nil
	}
	duplicates := make([]string, 0, len(dupSet))
	for c := range dupSet {
		duplicates = append(duplicates, c)
	}
	sort.Strings(duplicates)
	return duplicates
}

// consolidatedFilename names the download artifact with the consolidation
// timestamp, matching the source system's convention.
func consolidatedFilename(ts time.Time, ext string) string {
	return fmt.Sprintf("Consolidated_Allocation_%s.%s", ts.Format("20060102_1504"), ext)
}
