/*
PURPOSE:
  Writes trials to a JSON Lines file (NDJSON), one trial per line.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("cep_results.jsonl")
  w.Write(trial)
  w.Close()
*/

package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/cep-bench/internal/model"
)

// JSONWriter handles writing trials to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single trial as a JSON line.
func (jw *JSONWriter) Write(t model.Trial) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(t)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
