package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/daryltucker/cep-bench/internal/model"
)

// RenderReport writes the trial table followed by the latency summary.
func RenderReport(w io.Writer, r model.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Trial\t%s (ms)\t%s - Logradouro\t%s (ms)\t%s - Logradouro\n",
		model.ViaCEP.Label(), model.ViaCEP.Label(),
		model.BrasilAPI.Label(), model.BrasilAPI.Label())
	for _, t := range r.Trials {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n",
			t.Number,
			t.ViaCEP.LatencyMS, t.ViaCEP.Result,
			t.BrasilAPI.LatencyMS, t.BrasilAPI.Result)
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "render trial table")
	}

	fmt.Fprintf(w, "\nMean latency (CEP %s):\n", r.PostalCode)
	for _, st := range []model.Stats{r.ViaCEP, r.BrasilAPI} {
		if _, err := fmt.Fprintf(w, "- %s: %s ms\n", st.API.Label(), st.Mean); err != nil {
			return errors.Wrap(err, "render summary")
		}
	}

	fmt.Fprintln(w)
	for _, st := range []model.Stats{r.ViaCEP, r.BrasilAPI} {
		fmt.Fprintf(w, "  %s: min %s / median %s / max %s ms, %d failed of %d\n",
			st.API.Label(), st.Min, st.Median, st.Max, st.Failures, len(r.Trials))
	}
	return nil
}
