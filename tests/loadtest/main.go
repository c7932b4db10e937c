package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const numWorkers = 50

var statuses = []string{"", "active", "expired", "unknown"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type request struct {
	method string
	path   string
	label  string
	ok     func(status int) bool
}

type result struct {
	endpoint string
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8090", "shiftwatch base URL")
	duration := flag.Duration("duration", 10*time.Second, "duration of each phase")
	flag.Parse()

	fmt.Println("=== ShiftWatch Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Phase: %s\n", *baseURL, numWorkers, *duration)

	fmt.Print("Waiting for server... ")
	if !waitHealthy(*baseURL) {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Warm-up run (POST /runs) ---")
	r := do(*baseURL, triggerRun())
	fmt.Printf("  trigger: %s err=%v\n", fmtDur(r.latency), r.err)
	time.Sleep(2 * time.Second)

	fmt.Println("\n--- Phase 2: Read-heavy load ---")
	runPhase(*duration, func(rng *rand.Rand) result {
		x := rng.Float64()
		switch {
		case x < 0.50:
			return do(*baseURL, listCodes(rng))
		case x < 0.70:
			return do(*baseURL, latestRun())
		case x < 0.90:
			return do(*baseURL, listDeliveries(rng))
		default:
			return do(*baseURL, health())
		}
	})

	fmt.Println("\n--- Phase 3: Reads with concurrent triggers ---")
	runPhase(*duration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.05 {
			return do(*baseURL, triggerRun())
		}
		return do(*baseURL, listCodes(rng))
	})
}

func waitHealthy(baseURL string) bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func is(codes ...int) func(int) bool {
	return func(status int) bool {
		for _, c := range codes {
			if status == c {
				return true
			}
		}
		return false
	}
}

func listCodes(rng *rand.Rand) request {
	path := "/codes"
	if s := statuses[rng.Intn(len(statuses))]; s != "" {
		path += "?status=" + s
	}
	return request{http.MethodGet, path, "GET /codes", is(http.StatusOK)}
}

func latestRun() request {
	return request{http.MethodGet, "/runs/latest", "GET /runs/latest", is(http.StatusOK, http.StatusNotFound)}
}

func listDeliveries(rng *rand.Rand) request {
	path := fmt.Sprintf("/deliveries?limit=%d", rng.Intn(200)+1)
	return request{http.MethodGet, path, "GET /deliveries", is(http.StatusOK)}
}

func health() request {
	return request{http.MethodGet, "/health", "GET /health", is(http.StatusOK)}
}

func triggerRun() request {
	return request{http.MethodPost, "/runs", "POST /runs", is(http.StatusAccepted, http.StatusConflict)}
}

func do(baseURL string, r request) result {
	req, err := http.NewRequest(r.method, baseURL+r.path, nil)
	if err != nil {
		return result{r.label, 0, true}
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{r.label, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{r.label, lat, !r.ok(resp.StatusCode)}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var stopped atomic.Bool

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for !stopped.Load() {
				results <- workFn(rng)
			}
		}(rand.Int63() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	stopped.Store(true)
	wg.Wait()
	close(results)
	<-done

	printResults(all, duration)
}

func printResults(all map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-20s %8s %6s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, ep := range endpoints {
		s := all[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		fmt.Printf("  %-20s %8d %6d %10s %10s %10s\n", ep, s.count, s.errors,
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 70))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
