package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/bayespart"
	"github.com/hupe1980/bayespart/codec"
	"github.com/hupe1980/bayespart/sample"
)

// summary is the printable digest of a run result.
type summary struct {
	RunID      string             `json:"run_id"`
	Phase      string             `json:"phase"`
	Elapsed    time.Duration      `json:"elapsed"`
	Samples    int                `json:"samples"`
	Integral   sample.Measurement `json:"integral"`
	Subspaces  []subspaceSummary  `json:"subspaces"`
	ArchivedAs string             `json:"archived_as,omitempty"`
}

type subspaceSummary struct {
	ID          int                `json:"id"`
	WorkerID    int                `json:"worker_id"`
	Samples     int                `json:"samples"`
	Integral    sample.Measurement `json:"integral"`
	SamplingCPU time.Duration      `json:"sampling_cpu"`
	Wall        time.Duration      `json:"wall"`
}

func summarize(res *bayespart.Result) summary {
	s := summary{
		RunID:    res.RunID,
		Phase:    res.Phase.String(),
		Elapsed:  res.Elapsed,
		Samples:  res.Samples.Len(),
		Integral: res.Integral,
	}
	for _, p := range res.Info {
		s.Subspaces = append(s.Subspaces, subspaceSummary{
			ID:          p.ID,
			WorkerID:    p.WorkerID,
			Samples:     p.NumSamples,
			Integral:    p.Integral,
			SamplingCPU: p.SamplingCPU,
			Wall:        p.SamplingWall.Duration() + p.IntegrationWall.Duration(),
		})
	}
	return s
}

func (s summary) writeJSON(w io.Writer) error {
	data, err := codec.Default.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (s summary) writeText(w io.Writer) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "RUN SUMMARY")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "Run:       %s\n", s.RunID)
	fmt.Fprintf(w, "Phase:     %s\n", s.Phase)
	fmt.Fprintf(w, "Elapsed:   %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Samples:   %d\n", s.Samples)
	fmt.Fprintf(w, "Integral:  %s\n", s.Integral)
	if s.ArchivedAs != "" {
		fmt.Fprintf(w, "Archive:   %s\n", s.ArchivedAs)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSPACE\tWORKER\tSAMPLES\tINTEGRAL\tCPU\tWALL")
	for _, sub := range s.Subspaces {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			sub.ID, sub.WorkerID, sub.Samples, sub.Integral,
			sub.SamplingCPU.Round(time.Microsecond), sub.Wall.Round(time.Microsecond))
	}
	return tw.Flush()
}
