//go:build e2e
// +build e2e

// End-to-end flow against a running server. Start the server (file pool
// source is fine), then:
//
//	go test -tags e2e ./test/e2e/ -v
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL string
	client  *http.Client
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// The session travels in a cookie, so the client needs a jar.
	jar, err := cookiejar.New(nil)
	if err != nil {
		fmt.Printf("cookie jar: %v\n", err)
		os.Exit(1)
	}
	client = &http.Client{Jar: jar}

	os.Exit(m.Run())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, method, path string, body interface{}, wantStatus int) json.RawMessage {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d (error: %+v)", method, path, resp.StatusCode, wantStatus, env.Error)
	}
	return env.Data
}

func TestExamFlow_EarlyFailure(t *testing.T) {
	// Start a standard exam; the session cookie comes back on this call.
	var started struct {
		SessionID string `json:"session_id"`
		Total     int    `json:"total"`
	}
	data := call(t, http.MethodPost, "/exams", nil, http.StatusCreated)
	if err := json.Unmarshal(data, &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.SessionID == "" || started.Total == 0 {
		t.Fatalf("bad start payload: %+v", started)
	}

	// Answer everything wrong. With a 30-question exam the run must
	// terminate FAILED after the 7th mistake.
	var outcome struct {
		Status   string `json:"status"`
		Position int    `json:"position"`
		Score    int    `json:"score"`
		Total    int    `json:"total"`
	}
	answered := 0
	for outcome.Status == "" || outcome.Status == "IN_PROGRESS" {
		var question struct {
			ID       int      `json:"id"`
			Question string   `json:"question"`
			Options  []string `json:"options"`
			Number   int      `json:"number"`
		}
		qData := call(t, http.MethodGet, "/exams/current", nil, http.StatusOK)
		if err := json.Unmarshal(qData, &question); err != nil {
			t.Fatalf("decode question: %v", err)
		}
		if len(question.Options) < 2 {
			t.Fatalf("question %d has too few options", question.ID)
		}

		aData := call(t, http.MethodPost, "/exams/answers",
			map[string]string{"option": "not one of the options"}, http.StatusOK)
		if err := json.Unmarshal(aData, &outcome); err != nil {
			t.Fatalf("decode outcome: %v", err)
		}
		answered++
		if answered > started.Total {
			t.Fatalf("exam did not terminate after %d answers", answered)
		}
	}

	if outcome.Status != "FAILED" {
		t.Fatalf("status = %s, want FAILED", outcome.Status)
	}
	if answered != 7 {
		t.Errorf("terminated after %d answers, want 7", answered)
	}

	// Once failed, the question and answer endpoints refuse.
	call(t, http.MethodGet, "/exams/current", nil, http.StatusConflict)
	call(t, http.MethodPost, "/exams/answers",
		map[string]string{"option": "anything"}, http.StatusConflict)

	// The result carries one review entry per mistake.
	var result struct {
		Score  int  `json:"score"`
		Total  int  `json:"total"`
		Passed bool `json:"passed"`
		Review []struct {
			Question  string `json:"question"`
			Submitted string `json:"submitted"`
			Correct   string `json:"correct"`
		} `json:"review"`
	}
	rData := call(t, http.MethodGet, "/exams/result", nil, http.StatusOK)
	if err := json.Unmarshal(rData, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Passed || result.Score != 0 {
		t.Errorf("result = %+v, want failed with score 0", result)
	}
	if len(result.Review) != 7 {
		t.Errorf("review entries = %d, want 7", len(result.Review))
	}
	for _, entry := range result.Review {
		if entry.Correct == "" {
			t.Errorf("review entry %q missing correct answer", entry.Question)
		}
	}
}

func TestResultBeforeTermination(t *testing.T) {
	call(t, http.MethodPost, "/exams", nil, http.StatusCreated)
	call(t, http.MethodGet, "/exams/result", nil, http.StatusConflict)
}

func TestCustomExamUnknownPool(t *testing.T) {
	call(t, http.MethodPost, "/exams/custom",
		map[string]string{"pool_id": "3b8aee42-0000-4000-8000-000000000000"}, http.StatusNotFound)
}
