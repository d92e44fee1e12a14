// Package preview implements the client side of a book import: decode a
// spreadsheet locally, show its rows, and send the original file to the
// server once the user confirms.
//
// A Form moves through three states:
//
//	Empty --Select--> Parsed --Confirm--> Confirmed
//	  ^                  |                    |
//	  +------Restart-----+--------------------+
//
// Confirm only advances on a successful upload; on failure the form stays
// Parsed so the user can retry or restart.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/JonMunkholm/bookimport/internal/sheet"
)

// State is the form's position in the import flow.
type State int

const (
	StateEmpty State = iota
	StateParsed
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateParsed:
		return "parsed"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Uploader sends a raw file to the import endpoint.
type Uploader interface {
	Upload(ctx context.Context, fileName string, data []byte) (*UploadResult, error)
}

// Form holds one preview session. It is safe for concurrent use, so a UI
// can read it while an upload is in flight.
type Form struct {
	uploader Uploader
	log      *slog.Logger

	mu       sync.Mutex
	gen      uint64 // bumped by every Select and Restart
	state    State
	fileName string
	data     []byte
	columns  []string
	rows     []sheet.Row
	result   *UploadResult
}

// NewForm returns an empty form. A nil logger uses slog.Default.
func NewForm(u Uploader, log *slog.Logger) *Form {
	if log == nil {
		log = slog.Default()
	}
	return &Form{uploader: u, log: log}
}

// Select decodes data for preview without contacting the server. Selecting
// a new file discards any previous one, including a confirmed import.
//
// On a decode failure the file name is kept for display, columns and rows
// are cleared, the form is Empty and a *ParseError is returned.
func (f *Form) Select(fileName string, data []byte) error {
	if len(data) == 0 {
		f.log.Error("no file selected", "file", fileName)
		return ErrNoFile
	}

	parsed, err := sheet.DecodeBytes(fileName, data)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.gen++
	f.fileName = fileName
	f.result = nil
	if err != nil {
		perr := &ParseError{FileName: fileName, Err: err}
		f.log.Error("error parsing file", "file", fileName, "error", err)
		f.state = StateEmpty
		f.data, f.columns, f.rows = nil, nil, nil
		return perr
	}

	f.state = StateParsed
	f.data = data
	f.columns = parsed.Columns
	f.rows = parsed.Rows
	f.log.Info("file parsed", "file", fileName, "sheet", parsed.Name, "columns", len(parsed.Columns), "rows", len(parsed.Rows))
	return nil
}

// Confirm uploads the original file. The form becomes Confirmed only when
// the server accepts it; any failure is logged, returned, and leaves the
// form Parsed.
func (f *Form) Confirm(ctx context.Context) (*UploadResult, error) {
	f.mu.Lock()
	if f.state != StateParsed || len(f.rows) == 0 {
		f.mu.Unlock()
		return nil, ErrNothingToConfirm
	}
	fileName, data, gen := f.fileName, f.data, f.gen
	f.mu.Unlock()

	result, err := f.uploader.Upload(ctx, fileName, data)
	if err != nil {
		var terr *TransportError
		if !errors.As(err, &terr) {
			err = &TransportError{Err: err}
		}
		f.log.Error("error uploading file", "file", fileName, "error", err)
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// A Restart or Select during the upload wins.
	if f.gen == gen {
		f.state = StateConfirmed
		f.result = result
	}
	f.log.Info("file uploaded and data saved", "file", fileName, "message", result.Message, "inserted", result.Inserted)
	return result, nil
}

// Restart clears the file, columns, rows and result unconditionally.
func (f *Form) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gen++
	f.state = StateEmpty
	f.fileName = ""
	f.data = nil
	f.columns = nil
	f.rows = nil
	f.result = nil
}

// Snapshot is a copy of the form's visible state.
type Snapshot struct {
	State    State
	FileName string
	Columns  []string
	Rows     []sheet.Row
	Result   *UploadResult
}

// Snapshot returns the current state. Slices are copies; rows are shared
// and must not be modified.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		State:    f.state,
		FileName: f.fileName,
		Columns:  slices.Clone(f.columns),
		Rows:     slices.Clone(f.rows),
		Result:   f.result,
	}
}

// State returns the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
