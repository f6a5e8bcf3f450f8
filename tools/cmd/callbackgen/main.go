// stkpush-relay/tools/cmd/callbackgen/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"time"
)

var statuses = []string{"SUCCESS", "Completed", "FAILED", "Cancelled", "PENDING", "QUEUED", "REVERSED"}

var reasons = []string{"Request cancelled by user", "Insufficient funds", "DS timeout user cannot be reached"}

// buildCallback returns the i-th synthetic gateway notification.
func buildCallback(i int, rnd *rand.Rand, prefix string) map[string]any {
	status := statuses[rnd.IntN(len(statuses))]
	cb := map[string]any{
		"status":             status,
		"reference":          fmt.Sprintf("%s%d%d", prefix, time.Now().UnixMilli(), i),
		"amount":             10 + rnd.IntN(5000),
		"phone_number":       fmt.Sprintf("2547%08d", rnd.IntN(100000000)),
		"external_reference": fmt.Sprintf("CB-%06d", i+1),
		"metadata":           map[string]any{"customer_name": fmt.Sprintf("Customer %d", i+1)},
	}
	switch status {
	case "SUCCESS", "Completed":
		cb["receipt_number"] = fmt.Sprintf("S%09d", rnd.IntN(1000000000))
	case "FAILED", "Cancelled", "REVERSED":
		cb["failure_reason"] = reasons[rnd.IntN(len(reasons))]
	}
	return cb
}

func main() {
	url := flag.String("url", "http://localhost:8080/api/callback", "relay callback endpoint")
	n := flag.Int("n", 10, "number of callbacks to send")
	prefix := flag.String("prefix", "NYOTA", "reference prefix")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	flag.Parse()

	rnd := rand.New(rand.NewPCG(*seed, *seed>>1))
	client := &http.Client{Timeout: 10 * time.Second}

	for i := 0; i < *n; i++ {
		cb := buildCallback(i, rnd, *prefix)
		body, err := json.Marshal(cb)
		if err != nil {
			log.Fatal(err)
		}
		resp, err := client.Post(*url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("post callback %d: %v", i+1, err)
		}
		ack, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Printf("%-10s %s -> %d %s", cb["status"], cb["reference"], resp.StatusCode, bytes.TrimSpace(ack))
	}
	log.Printf("sent %d callbacks to %s", *n, *url)
}
