package main

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type runOptions struct {
	BaseURL    string
	SID        string
	Profile    string
	OutPath    string
	P99LimitMS int
	ThinkMS    int
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run --profile <name> --base-url <url> --sid <cookie> --out <path>",
		Short: "Run a load profile against the console and write a JSON report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for flag, value := range map[string]string{
				"--base-url": opts.BaseURL,
				"--sid":      opts.SID,
				"--profile":  opts.Profile,
				"--out":      opts.OutPath,
			} {
				if strings.TrimSpace(value) == "" {
					return errors.New(flag + " is required")
				}
			}

			p, err := builtinProfile(opts.Profile)
			if err != nil {
				return err
			}

			client := newHTTPClient()
			if err := healthCheck(cmd.Context(), client, opts.BaseURL); err != nil {
				return err
			}

			startedAt := time.Now().UTC()
			collected := runWorkers(cmd.Context(), client, opts, p)
			finishedAt := time.Now().UTC()

			report := buildReport(opts, p, collected, startedAt, finishedAt)
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(opts.OutPath, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "profile name (console_read_small|console_read_large|console_read_reload)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:3200", "console base URL")
	cmd.Flags().StringVar(&opts.SID, "sid", "", "session cookie value (sid)")
	cmd.Flags().StringVar(&opts.OutPath, "out", "", "output report path")
	cmd.Flags().IntVar(&opts.P99LimitMS, "p99-limit-ms", 0, "p99 latency threshold in milliseconds (default per profile)")
	cmd.Flags().IntVar(&opts.ThinkMS, "think-ms", 0, "pause between requests per virtual user, in milliseconds")

	return cmd
}

// runWorkers drives p.VUs goroutines against the weighted targets until
// the profile duration elapses, each with its own rand source so the
// target mix does not synchronize across workers.
func runWorkers(parent context.Context, client *http.Client, opts runOptions, p profile) *collector {
	ctx, cancel := context.WithTimeout(parent, p.Duration)
	defer cancel()

	collected := newCollector()
	var wg sync.WaitGroup
	wg.Add(p.VUs)
	for i := 0; i < p.VUs; i++ {
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + seed))
			for ctx.Err() == nil {
				collected.record(fire(ctx, client, opts, pickTarget(r, p.Targets)))
				if opts.ThinkMS > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(time.Duration(opts.ThinkMS) * time.Millisecond):
					}
				}
			}
		}(int64(i))
	}
	wg.Wait()
	return collected
}

func buildReport(opts runOptions, p profile, collected *collector, startedAt, finishedAt time.Time) runReport {
	p99Limit := opts.P99LimitMS
	if p99Limit <= 0 {
		p99Limit = p.DefaultP99MS
	}
	observedP99 := collected.overallP99()

	return runReport{
		SchemaVersion: 1,
		RunID:         uuid.NewString(),
		StartedAt:     startedAt.Format(time.RFC3339),
		FinishedAt:    finishedAt.Format(time.RFC3339),
		Target:        reportTarget{BaseURL: opts.BaseURL},
		Profile: reportProfile{
			Name:            p.Name,
			VUs:             p.VUs,
			DurationSeconds: int(p.Duration.Seconds()),
		},
		Results: collected.summaries(),
		Thresholds: []thresholdCheck{
			{
				Name:     "p99_ms",
				Limit:    p99Limit,
				Observed: observedP99,
				OK:       observedP99 <= p99Limit,
			},
		},
	}
}

func healthCheck(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("health check failed: status " + resp.Status)
	}
	return nil
}

type sample struct {
	Endpoint   string
	DurationMS int
	StatusCode int
	Err        error
}

func fire(ctx context.Context, client *http.Client, opts runOptions, t target) sample {
	url := strings.TrimRight(opts.BaseURL, "/") + t.Path

	req, err := http.NewRequestWithContext(ctx, t.Method, url, nil)
	if err != nil {
		return sample{Endpoint: t.Endpoint, Err: err}
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: opts.SID})
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := int(time.Since(start).Milliseconds())
	if err != nil {
		return sample{Endpoint: t.Endpoint, DurationMS: elapsed, Err: err}
	}
	_ = resp.Body.Close()
	return sample{Endpoint: t.Endpoint, DurationMS: elapsed, StatusCode: resp.StatusCode}
}

func pickTarget(r *rand.Rand, targets []target) target {
	total := 0
	for _, t := range targets {
		total += t.Weight
	}
	x := r.Intn(total)
	for _, t := range targets {
		x -= t.Weight
		if x < 0 {
			return t
		}
	}
	return targets[len(targets)-1]
}

type endpointSamples struct {
	count     int
	errors    int
	latencies []int
}

type collector struct {
	mu        sync.Mutex
	endpoints map[string]*endpointSamples
}

func newCollector() *collector {
	return &collector{endpoints: map[string]*endpointSamples{}}
}

func (c *collector) record(s sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	es := c.endpoints[s.Endpoint]
	if es == nil {
		es = &endpointSamples{latencies: make([]int, 0, 1024)}
		c.endpoints[s.Endpoint] = es
	}
	es.count++
	if s.Err != nil || s.StatusCode >= 400 {
		es.errors++
	}
	if s.DurationMS > 0 {
		es.latencies = append(es.latencies, s.DurationMS)
	}
}

func (c *collector) summaries() []endpointSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]endpointSummary, 0, len(c.endpoints))
	for endpoint, es := range c.endpoints {
		p50, p95, p99 := percentiles(es.latencies)
		rate := 0.0
		if es.count > 0 {
			rate = float64(es.errors) / float64(es.count) * 100
		}
		out = append(out, endpointSummary{
			Endpoint:     endpoint,
			Count:        es.count,
			Errors:       es.errors,
			ErrorRatePct: rate,
			P50MS:        p50,
			P95MS:        p95,
			P99MS:        p99,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

func (c *collector) overallP99() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]int, 0, 4096)
	for _, es := range c.endpoints {
		all = append(all, es.latencies...)
	}
	_, _, p99 := percentiles(all)
	return p99
}

func percentiles(ms []int) (p50, p95, p99 int) {
	if len(ms) == 0 {
		return 0, 0, 0
	}
	cp := append([]int(nil), ms...)
	sort.Ints(cp)
	rank := func(q float64) int { return cp[int(float64(len(cp)-1)*q)] }
	return rank(0.50), rank(0.95), rank(0.99)
}
