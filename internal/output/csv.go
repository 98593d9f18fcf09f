/*
PURPOSE:
  Writes trial rows to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Same columns as the console table.

  Implementation-discovered:
  - Overwrites the file on every run; nothing is carried across runs.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Trial

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).

USAGE:
  w, err := output.NewCSVWriter("cep_results.csv")
  w.Write(trial)
  w.Close()

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/cep-bench/internal/model"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{
	"trial", "timestamp",
	"viacep_ms", "viacep_logradouro",
	"brasilapi_ms", "brasilapi_logradouro",
}

// CSVWriter handles writing trials to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single trial to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(t model.Trial) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		strconv.Itoa(t.Number),
		t.ViaCEP.Timestamp.Format(time.RFC3339),
		strconv.Itoa(t.ViaCEP.LatencyMS),
		t.ViaCEP.Result,
		strconv.Itoa(t.BrasilAPI.LatencyMS),
		t.BrasilAPI.Result,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
