// Package runner sequences the accelerator test driver: initialize,
// load, verify, search, repeated across a probe set and timed,
// matching original_source/client/runner.cpp's Runner::run orchestration.
package runner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/approxmatch/hostctl/pkg/accel"
)

func logger() *slog.Logger {
	return slog.Default().With("component", "runner")
}

// SearchOutcome is one probe's result plus how long the accelerator
// took to produce it.
type SearchOutcome struct {
	Probe    string
	Result   accel.Result
	Duration time.Duration
	Err      error
}

// Run performs the canonical init, load, (optional) verify, search
// sequence against client for each probe in order, stopping at the
// first error from Init/LoadDictionary/VerifyDictionary (a setup
// failure invalidates every subsequent search), but continuing past
// individual Search errors so a timeout or bad probe doesn't hide the
// results of the rest of the run.
func Run(client *accel.Client, words []string, probes []string, verify bool) ([]SearchOutcome, error) {
	if err := client.Init(); err != nil {
		return nil, fmt.Errorf("runner: init: %w", err)
	}
	if err := client.LoadDictionary(words); err != nil {
		return nil, fmt.Errorf("runner: load dictionary: %w", err)
	}
	logger().Info("dictionary loaded", "words", len(words))
	if verify {
		if err := client.VerifyDictionary(words); err != nil {
			return nil, fmt.Errorf("runner: verify dictionary: %w", err)
		}
		logger().Info("dictionary verified", "words", len(words))
	}

	outcomes := make([]SearchOutcome, 0, len(probes))
	for _, probe := range probes {
		start := time.Now()
		res, err := client.Search([]byte(probe))
		dur := time.Since(start)
		if err != nil {
			logger().Warn("search failed", "probe", probe, "err", err, "duration", dur)
		} else {
			logger().Debug("search complete", "probe", probe, "index", res.Index, "distance", res.Distance, "duration", dur)
		}
		outcomes = append(outcomes, SearchOutcome{
			Probe:    probe,
			Result:   res,
			Duration: dur,
			Err:      err,
		})
	}
	return outcomes, nil
}

// OracleFunc computes the expected best match for a probe against a
// dictionary, independent of the accelerator. pkg/runner never imports
// a concrete oracle so it stays usable against any reference
// implementation a caller supplies (internal/oracle.BestMatch for
// tests, or a different one entirely).
type OracleFunc func(dictionary []string, probe string) (index, distance int)

// Disagreement describes one probe where the accelerator's reported
// distance did not match the oracle's, or where the search itself
// failed. Index is deliberately not
// compared: the protocol does not guarantee which of several
// equidistant dictionary entries wins, so only the distance is a
// meaningful correctness signal for an arbitrary random corpus.
type Disagreement struct {
	Probe        string
	Got          accel.Result
	WantIndex    int
	WantDistance int
}

// RunRandomized drives Run against words/probes and cross-checks every
// outcome's distance against oracle, returning every disagreement
// found.
func RunRandomized(client *accel.Client, words []string, probes []string, oracle OracleFunc) ([]Disagreement, error) {
	outcomes, err := Run(client, words, probes, false)
	if err != nil {
		return nil, err
	}

	var disagreements []Disagreement
	for _, o := range outcomes {
		wantIndex, wantDistance := oracle(words, o.Probe)
		if o.Err != nil || int(o.Result.Distance) != wantDistance {
			logger().Warn("oracle disagreement", "probe", o.Probe, "got", o.Result, "want_distance", wantDistance)
			disagreements = append(disagreements, Disagreement{
				Probe: o.Probe, Got: o.Result, WantIndex: wantIndex, WantDistance: wantDistance,
			})
		}
	}
	return disagreements, nil
}
