/*
PURPOSE:
  Defines the core data structures used throughout cep-bench.
  These models represent timed lookups, trials and the final report.

REQUIREMENTS:
  User-specified:
  - Record latency (ms) and the address line returned by each API.
  - Pair one ViaCEP call and one BrasilAPI call per trial.
  - Mean latency per API, or "no data" when there are no samples.

  Implementation-discovered:
  - Need JSON tags for the JSON Lines export.
  - Latency is an int in ms; failures still carry a latency.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs). Failures are data: Outcome.Result holds "Erro: ...".

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Sentinels live here so every writer renders them the same way.

USAGE:
  o := model.Outcome{API: model.ViaCEP, LatencyMS: 42, Result: "Rua X"}

RELATED FILES:
  - internal/output/table.go
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update writers when adding fields.
*/

package model

import (
	"strconv"
	"time"
)

// API identifies one of the benchmarked lookup services.
type API string

const (
	ViaCEP    API = "viacep"
	BrasilAPI API = "brasilapi"
)

// APIs is the fixed, ordered set of benchmarked services.
var APIs = []API{ViaCEP, BrasilAPI}

// Label is the human readable name used in reports.
func (a API) Label() string {
	switch a {
	case ViaCEP:
		return "ViaCEP"
	case BrasilAPI:
		return "BrasilAPI"
	default:
		return string(a)
	}
}

const (
	// NotAvailable is recorded when none of the candidate fields is present.
	NotAvailable = "N/A"
	// ErrorPrefix starts every failure description.
	ErrorPrefix = "Erro: "
	// TimeoutResult is recorded when the timeout governor cancelled the call.
	TimeoutResult = ErrorPrefix + "Timeout"
	// NoData is rendered for a mean without samples.
	NoData = "no data"
)

// Outcome is the normalized result of one timed call.
type Outcome struct {
	API       API       `json:"api"`
	LatencyMS int       `json:"latency_ms"`
	Result    string    `json:"result"`
	Failed    bool      `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// Trial pairs one call to each API.
type Trial struct {
	Number    int     `json:"trial"`
	ViaCEP    Outcome `json:"viacep"`
	BrasilAPI Outcome `json:"brasilapi"`
}

// Outcome returns the outcome recorded for api.
func (t Trial) Outcome(api API) Outcome {
	if api == BrasilAPI {
		return t.BrasilAPI
	}
	return t.ViaCEP
}

// Mean is a rounded average latency. Valid is false when no samples existed.
type Mean struct {
	Value int
	Valid bool
}

func (m Mean) String() string {
	if !m.Valid {
		return NoData
	}
	return strconv.Itoa(m.Value)
}

// MarshalJSON renders an invalid mean as the NoData sentinel.
func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte(strconv.Quote(NoData)), nil
	}
	return []byte(strconv.Itoa(m.Value)), nil
}

// Stats summarizes the latencies of one API across a run.
type Stats struct {
	API      API  `json:"api"`
	Mean     Mean `json:"mean_ms"`
	Min      Mean `json:"min_ms"`
	Max      Mean `json:"max_ms"`
	Median   Mean `json:"median_ms"`
	Samples  int  `json:"samples"`
	Failures int  `json:"failures"`
}

// Report is the full ordered result of a run.
type Report struct {
	PostalCode string  `json:"postal_code"`
	Trials     []Trial `json:"trials"`
	ViaCEP     Stats   `json:"viacep"`
	BrasilAPI  Stats   `json:"brasilapi"`
}
