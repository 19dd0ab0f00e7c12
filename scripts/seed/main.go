// Seeds a running claimdesk API with sample claims from a JSON file.
//
//	go run ./scripts/seed testdata/sample-claims.json
//
// Set API_URL to target a non-local instance.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type seedBill struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type seedClaim struct {
	PatientName  string     `json:"patientName"`
	PolicyNumber string     `json:"policyNumber"`
	ClaimDate    string     `json:"claimDate"`
	Bills        []seedBill `json:"bills"`
	AdvancePaid  float64    `json:"advancePaid"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/seed <claims-file.json>")
		fmt.Println("Example: go run ./scripts/seed testdata/sample-claims.json")
		os.Exit(1)
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("error reading file: %v\n", err)
		os.Exit(1)
	}
	var seeds []seedClaim
	if err := json.Unmarshal(data, &seeds); err != nil {
		fmt.Printf("error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeding %d claims into %s\n", len(seeds), apiURL)
	client := &http.Client{Timeout: 10 * time.Second}

	created := 0
	for _, seed := range seeds {
		payload, err := json.Marshal(seed)
		if err != nil {
			fmt.Printf("  skip %s: %v\n", seed.PatientName, err)
			continue
		}
		resp, err := client.Post(apiURL+"/claims", "application/json", bytes.NewReader(payload))
		if err != nil {
			fmt.Printf("  skip %s: %v\n", seed.PatientName, err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			fmt.Printf("  skip %s: %d %s\n", seed.PatientName, resp.StatusCode, string(body))
			continue
		}
		created++
		fmt.Printf("  created claim for %s (%s)\n", seed.PatientName, seed.PolicyNumber)
	}

	fmt.Printf("Done: %d/%d claims created\n", created, len(seeds))
}
