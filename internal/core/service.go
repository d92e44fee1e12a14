package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/sheet"
)

// SuccessMessage is returned to the client after a completed import.
const SuccessMessage = "File uploaded and data saved to database successfully"

// DefaultImportTimeout bounds one import from slot acquisition to cleanup.
const DefaultImportTimeout = 2 * time.Minute

// Options tunes a Service. Zero values fall back to package defaults.
type Options struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
	Decode        DecodeFunc
}

// Service imports uploaded spreadsheets into a BookWriter.
type Service struct {
	books   BookWriter
	temp    TempStore
	limiter *UploadLimiter
	timeout time.Duration
	decode  DecodeFunc
}

// NewService wires the import pipeline. books and temp are owned by the
// caller, which opens them before and closes them after the service is used.
func NewService(books BookWriter, temp TempStore, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultImportTimeout
	}
	if opts.Decode == nil {
		opts.Decode = sheet.Decode
	}

	return &Service{
		books:   books,
		temp:    temp,
		limiter: NewUploadLimiter(opts.MaxConcurrent, opts.MaxWait),
		timeout: opts.Timeout,
		decode:  opts.Decode,
	}
}

// Upload is a file received from a client.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// ImportResult summarises a completed import.
type ImportResult struct {
	ImportID string        `json:"import_id"`
	FileName string        `json:"file_name"`
	Rows     int           `json:"rows"`
	Inserted int           `json:"inserted"`
	Duration time.Duration `json:"-"`
}

// Import stores, decodes, maps, validates and persists one upload.
//
// Errors:
//   - ErrMissingFile when u carries no content; nothing is written.
//   - ErrTooManyUploads or a context error when no slot frees up in time.
//   - *ProcessingError for failures after the file was accepted. The temp
//     file is kept and no books are written unless the store call itself
//     partially succeeded.
//
// Failing to remove the temp file after a successful insert is logged and
// does not fail the import.
func (s *Service) Import(ctx context.Context, u Upload) (*ImportResult, error) {
	if u.Content == nil {
		return nil, ErrMissingFile
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	importID := uuid.NewString()
	log := logging.ForImport(ctx, importID, u.FileName)
	if c, ok := ClientFromContext(ctx); ok {
		log = log.With("client_ip", c.IP)
	}
	log.Info("import started", "size", u.Size)

	key, err := s.temp.Save(ctx, u.FileName, u.Content)
	if err != nil {
		return nil, s.fail(log, StageStore, u.FileName, err)
	}
	log = log.With("temp_key", key)

	parsed, err := s.load(ctx, u.FileName, key)
	if err != nil {
		return nil, s.fail(log, StageDecode, u.FileName, err)
	}

	books := make([]Book, len(parsed.Rows))
	for i, row := range parsed.Rows {
		var badPrice string
		books[i], badPrice = mapRow(row)
		if badPrice != "" {
			log.Warn("unparseable price stored as 0", "row", i+1, "value", badPrice)
		}
	}

	if err := ValidateBooks(books); err != nil {
		return nil, s.fail(log, StageValidate, u.FileName, err)
	}

	inserted := 0
	if len(books) > 0 {
		inserted, err = s.books.InsertBooks(ctx, books)
		if err != nil {
			return nil, s.fail(log, StagePersist, u.FileName, err)
		}
	}

	if err := s.temp.Remove(ctx, key); err != nil {
		log.Warn("temp upload not removed", "error", err)
	}

	result := &ImportResult{
		ImportID: importID,
		FileName: u.FileName,
		Rows:     len(books),
		Inserted: inserted,
		Duration: time.Since(start),
	}
	log.Info("import completed",
		"sheet", parsed.Name,
		"rows", result.Rows,
		"inserted", result.Inserted,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *Service) load(ctx context.Context, fileName, key string) (*sheet.Sheet, error) {
	rc, err := s.temp.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open temp upload: %w", err)
	}
	defer rc.Close()

	return s.decode(fileName, rc)
}

func (s *Service) fail(log *slog.Logger, stage Stage, fileName string, err error) error {
	perr := &ProcessingError{Stage: stage, FileName: fileName, Err: err}
	msg := MapError(err)
	log.Error("import failed", "stage", stage, "error", err, "code", msg.Code)
	return perr
}

// LimiterStatus reports current import slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
