//go:build ignore

// Run: go run ./build-tools/loadgen.go -base http://localhost:8080 -rps 50 -duration 60s -draws 60,61,62,63,64

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	var (
		base     = flag.String("base", "http://localhost:8080", "server base URL")
		rps      = flag.Int("rps", 50, "requests per second target")
		duration = flag.Duration("duration", 30*time.Second, "how long to run")
		draws    = flag.String("draws", "60,61,62,63,64", "draw numbers to query")
	)
	flag.Parse()

	drawList := splitTrim(*draws)
	if len(drawList) == 0 {
		fmt.Println("no draws provided")
		os.Exit(1)
	}

	// cached endpoints dominate real traffic, so weight them accordingly
	paths := []string{
		"/api/revenue",
		"/api/revenue",
		"/api/lottery-ngr?draws=" + strings.Join(drawList, ","),
		"/api/lottery-prizes?draw=" + drawList[mrand.Intn(len(drawList))],
		"/api/health",
	}

	cli := &http.Client{Timeout: 60 * time.Second}

	fmt.Printf("loadgen base=%s rps=%d duration=%s\n", *base, *rps, duration.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	end := start.Add(*duration)

	var (
		wg     sync.WaitGroup
		sent   atomic.Int64
		failed atomic.Int64
	)

	// steady pace with a little drift
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	perTick := float64(*rps) / 10.0 // 10 ticks in sec
	accum := 0.0

loop:
	for {
		select {
		case <-ctx.Done():
			fmt.Println("signal received, stopping")
			break loop
		case now := <-tick.C:
			if now.After(end) {
				break loop
			}

			accum += perTick
			batch := int(math.Floor(accum))
			if batch <= 0 {
				continue
			}
			accum -= float64(batch)

			for i := 0; i < batch; i++ {
				url := *base + paths[mrand.Intn(len(paths))]
				wg.Add(1)
				go func() {
					defer wg.Done()
					sent.Add(1)
					resp, err := cli.Get(url)
					if err != nil {
						failed.Add(1)
						fmt.Printf("request error: %v\n", err)
						return
					}
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					if resp.StatusCode >= 500 {
						failed.Add(1)
					}
				}()
			}
		}
	}

	wg.Wait()
	fmt.Printf("done: sent=%d failed=%d elapsed=%s\n", sent.Load(), failed.Load(), time.Since(start).Round(time.Millisecond))
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
