package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Simulates a busy register: bulk-registers staff through the admin API,
// then fires sign-in and sign-out events at the open kiosk endpoint. Also
// useful for exercising the duplicate-insert race on (staff_id, date).
func main() {
	// Configuration
	baseURL := "http://localhost:8080/api/v1"
	adminPassword := "admin"
	contentType := "application/json"

	numStaff := 500
	eventsPerStaff := 3 // sign-in, sign-out, then an idempotent third event
	totalRequests := numStaff * eventsPerStaff
	concurrency := 50 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Registering %d staff, then sending %d attendance events with concurrency %d\n",
		numStaff, totalRequests, concurrency)

	client := &http.Client{Timeout: 10 * time.Second}

	// Roster setup is sequential; conflicts (409) from reruns are fine.
	for i := 0; i < numStaff; i++ {
		payload := []byte(fmt.Sprintf(
			`{"staffId": "sim%04d", "name": "Sim Staffer %d", "department": "Simulation"}`, i, i))
		req, err := http.NewRequest(http.MethodPost, baseURL+"/staff", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Printf("Failed to build register request: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Admin-Password", adminPassword)

		resp, err := client.Do(req)
		if err != nil {
			fmt.Printf("Registration error: %v\n", err)
			return
		}
		resp.Body.Close()
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numStaff; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		staffID := fmt.Sprintf("sim%04d", i)

		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			payload := []byte(fmt.Sprintf(`{"staffId": "%s"}`, id))

			for j := 0; j < eventsPerStaff; j++ {
				resp, err := client.Post(baseURL+"/attendance", contentType, bytes.NewBuffer(payload))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(staffID)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Kiosk Simulation Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
