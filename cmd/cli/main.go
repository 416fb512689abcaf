package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter a host to monitor (e.g., gw.example.net or 192.0.2.10): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") || strings.ContainsAny(raw, " \t") {
		fmt.Println("Invalid host; give a bare hostname or IP address.")
		return
	}

	body, _ := json.Marshal(map[string]string{"host": raw})
	req, _ := http.NewRequest(http.MethodPost, api+"/api/targets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Check the API logs and GET /api/results/latest.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}
