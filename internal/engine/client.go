/*
PURPOSE:
  Timed request executor. Performs one bounded GET against a CEP API and
  normalizes whatever happens into a model.Outcome.

REQUIREMENTS:
  User-specified:
  - Per-call timeout governor (default 3000 ms).
  - Latency in whole ms, always present, even on failure.
  - Address line from "logradouro" then "street", else "N/A".
  - "Erro: Timeout" on governor cancellation, "Erro: <msg>" otherwise.

  Implementation-discovered:
  - The governor is a context deadline; cancel is deferred so no timer
    outlives the call.
  - End timestamp is taken when the response arrives; body decoding is
    not part of the measured latency unless it fails.
  - HTTP status is not inspected. ViaCEP answers unknown CEPs with
    {"erro": true}, which yields "N/A".

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli
  - Uses: internal/config, internal/model

ERROR HANDLING:
  - Never returns an error. Failures become Outcome.Result strings.
  - Panics inside a call are recovered and reported the same way.

IMPLEMENTATION RULES:
  - No retries.
  - One outbound request per Execute.

USAGE:
  e := engine.New(cfg)
  out := e.Execute(ctx, "69023003", model.ViaCEP)

RELATED FILES:
  - internal/engine/runner.go
  - internal/model/types.go

MAINTENANCE:
  - Update endpoint templates if the providers move.
*/

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/context/ctxhttp"

	"github.com/daryltucker/cep-bench/internal/config"
	"github.com/daryltucker/cep-bench/internal/model"
)

// URLTemplates maps each API to its endpoint; %s is the postal code.
var URLTemplates = map[model.API]string{
	model.ViaCEP:    "https://viacep.com.br/ws/%s/json/",
	model.BrasilAPI: "https://brasilapi.com.br/api/cep/v2/%s",
}

// ResultFields are the candidate address-line fields, in priority order.
var ResultFields = []string{"logradouro", "street"}

// Engine executes timed lookups.
type Engine struct {
	Config    *config.Config
	Client    *http.Client
	Templates map[model.API]string
	// Now is the clock used for latency. Defaults to time.Now.
	Now func() time.Time

	tracer trace.Tracer
}

// New creates a new Engine.
func New(cfg *config.Config) *Engine {
	templates := make(map[model.API]string, len(URLTemplates))
	for api, tmpl := range URLTemplates {
		templates[api] = tmpl
	}

	return &Engine{
		Config:    cfg,
		Client:    &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		Templates: templates,
		Now:       time.Now,
		tracer:    otel.GetTracerProvider().Tracer("cep-bench/engine"),
	}
}

// URL resolves the endpoint for api. The postal code is not validated.
func (e *Engine) URL(postalCode string, api model.API) (string, error) {
	tmpl, ok := e.Templates[api]
	if !ok {
		return "", errors.Errorf("unknown api %q", api)
	}
	return fmt.Sprintf(tmpl, postalCode), nil
}

// Execute performs one timed lookup and always returns a populated Outcome.
func (e *Engine) Execute(ctx context.Context, postalCode string, api model.API) (out model.Outcome) {
	ctx, span := e.tracer.Start(ctx, "cep.lookup", trace.WithAttributes(
		attribute.String("cep.api", string(api)),
		attribute.String("cep.postal_code", postalCode),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.Config.Timeout())
	defer cancel()

	start := e.Now()
	out = model.Outcome{API: api, Timestamp: start}

	defer func() {
		if r := recover(); r != nil {
			out.LatencyMS = elapsedMS(start, e.Now())
			out.Failed = true
			out.Result = model.ErrorPrefix + fmt.Sprint(r)
			span.SetStatus(codes.Error, out.Result)
		}
	}()

	result, end, err := e.lookup(ctx, postalCode, api)
	if err != nil {
		end = e.Now()
	}
	out.LatencyMS = elapsedMS(start, end)

	if err != nil {
		out.Failed = true
		out.Result = describe(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, out.Result)
	} else {
		out.Result = result
	}

	span.SetAttributes(
		attribute.Int("cep.latency_ms", out.LatencyMS),
		attribute.String("cep.result", out.Result),
	)
	return out
}

// lookup returns the extracted field and the time the response arrived.
func (e *Engine) lookup(ctx context.Context, postalCode string, api model.API) (string, time.Time, error) {
	url, err := e.URL(postalCode, api)
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if e.Config.UserAgent != "" {
		req.Header.Set("User-Agent", e.Config.UserAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := ctxhttp.Do(ctx, e.Client, req)
	if err != nil {
		return "", time.Time{}, err
	}
	end := e.Now()
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, errors.Wrap(err, "decode response")
	}

	return ExtractField(payload, ResultFields), end, nil
}

// ExtractField returns the first non-empty string value among fields,
// or model.NotAvailable.
func ExtractField(payload map[string]interface{}, fields []string) string {
	for _, name := range fields {
		v, ok := payload[name].(string)
		if ok && v != "" {
			return v
		}
	}
	return model.NotAvailable
}

// describe classifies a failed call.
func describe(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.TimeoutResult
	}
	return model.ErrorPrefix + strings.TrimSpace(err.Error())
}

// elapsedMS rounds half up and never goes negative.
func elapsedMS(start, end time.Time) int {
	ms := float64(end.Sub(start)) / float64(time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return int(math.Floor(ms + 0.5))
}
