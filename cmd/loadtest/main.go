// Standalone load generator for the gateway webhook endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type result struct {
	statusCode int
	latency    time.Duration
	err        error
}

func main() {
	var (
		targetURL   string
		method      string
		requests    int
		concurrency int
		timeoutSec  int
		payload     string
		contentType string
	)
	flag.StringVar(&targetURL, "url", "http://localhost:8080/twilio/sms", "Target URL")
	flag.StringVar(&method, "method", "POST", "HTTP method (GET|POST|...)")
	flag.IntVar(&requests, "requests", 1000, "Total number of requests to send")
	flag.IntVar(&concurrency, "concurrency", 50, "Number of concurrent workers")
	flag.IntVar(&timeoutSec, "timeout", 30, "Per-request timeout seconds")
	flag.StringVar(&payload, "payload", "From=%2B15551234567&Body=load+test", "Inline payload string (for POST/PUT)")
	flag.StringVar(&contentType, "content-type", "application/x-www-form-urlencoded", "Content-Type header")
	flag.Parse()

	if requests <= 0 || concurrency <= 0 {
		fmt.Println("requests and concurrency must be > 0")
		os.Exit(1)
	}
	if concurrency > requests {
		concurrency = requests
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        concurrency,
		MaxIdleConnsPerHost: concurrency,
		MaxConnsPerHost:     concurrency,
		IdleConnTimeout:     90 * time.Second,
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(timeoutSec) * time.Second,
	}

	jobs := make(chan int, requests)
	results := make(chan result, requests)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	testStart := time.Now()
	worker := func() {
		defer wg.Done()
		for range jobs {
			var body io.Reader
			if payload != "" && strings.ToUpper(method) != "GET" {
				body = strings.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, targetURL, body)
			if err != nil {
				results <- result{err: err}
				continue
			}
			if body != nil && contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}

			start := time.Now()
			resp, err := client.Do(req)
			lat := time.Since(start)

			if err != nil {
				results <- result{latency: lat, err: err}
				continue
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			results <- result{statusCode: resp.StatusCode, latency: lat}
		}
	}

	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker()
	}

	for i := 0; i < requests; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	totalElapsed := time.Since(testStart)
	close(results)

	var (
		latencies      []time.Duration
		successCount   int
		errorCount     int
		statusCounters = make(map[int]int)
	)
	for r := range results {
		if r.err != nil {
			errorCount++
			latencies = append(latencies, r.latency)
			continue
		}
		statusCounters[r.statusCode]++
		if r.statusCode >= 200 && r.statusCode < 400 {
			successCount++
		} else {
			errorCount++
		}
		latencies = append(latencies, r.latency)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	p := func(percent float64) time.Duration {
		if len(latencies) == 0 {
			return 0
		}
		idx := int(percent*float64(len(latencies))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(latencies) {
			idx = len(latencies) - 1
		}
		return latencies[idx]
	}

	var avg time.Duration
	for _, d := range latencies {
		avg += d
	}
	if len(latencies) > 0 {
		avg /= time.Duration(len(latencies))
	}

	fmt.Println("=== Load Test Summary ===")
	fmt.Printf("URL:            %s\n", targetURL)
	fmt.Printf("Method:         %s\n", method)
	fmt.Printf("Requests:       %d\n", requests)
	fmt.Printf("Concurrency:    %d\n", concurrency)
	fmt.Printf("Success:        %d\n", successCount)
	fmt.Printf("Errors:         %d\n", errorCount)
	fmt.Printf("Total Elapsed:  %v\n", totalElapsed)
	fmt.Printf("Status Counts:  %v\n", statusCounters)
	if len(latencies) > 0 {
		fmt.Printf("Avg Latency:    %v\n", avg)
		fmt.Printf("P50 Latency:    %v\n", p(0.50))
		fmt.Printf("P90 Latency:    %v\n", p(0.90))
		fmt.Printf("P99 Latency:    %v\n", p(0.99))
	}
}
