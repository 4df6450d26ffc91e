package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	svc "LenaAI/pkg/services"
)

const (
	modeBaseline = "baseline"
	modePersona  = "persona"
)

type evalOptions struct {
	QueriesPath string
	OutDir      string
	Only        string
	Timeout     time.Duration
	Sleep       time.Duration
}

type resultItem struct {
	Query      string `json:"query"`
	Mode       string `json:"mode"` // baseline | persona
	Response   string `json:"response"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Model      string `json:"model"`
	Timestamp  string `json:"timestamp"`
}

type runSummary struct {
	RunID        string       `json:"run_id"`
	StartedAt    string       `json:"started_at"`
	EndedAt      string       `json:"ended_at"`
	Env          string       `json:"env"`
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	Persona      string       `json:"persona"`
	Only         string       `json:"only,omitempty"`
	TotalQueries int          `json:"total_queries"`
	Results      []resultItem `json:"results"`
}

func readQueries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read queries: %w", err)
	}

	var arrAny []any
	if err := json.Unmarshal(data, &arrAny); err != nil {
		return nil, fmt.Errorf("invalid queries file: %w", err)
	}
	out := make([]string, 0, len(arrAny))
	for _, v := range arrAny {
		var q string
		switch t := v.(type) {
		case string:
			q = t
		case map[string]any:
			q, _ = t["q"].(string)
		}
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("queries file is empty or malformed")
	}
	return out, nil
}

// filterQueries keeps queries picked by 1-based index or by case-insensitive
// substring, in file order. An empty selection returns all queries.
func filterQueries(queries []string, only string) []string {
	wantedIdx := map[int]bool{}
	var subs []string
	for _, tok := range strings.Split(only, ",") {
		v := strings.ToLower(strings.TrimSpace(tok))
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil {
			if n >= 1 && n <= len(queries) {
				wantedIdx[n-1] = true
			}
			continue
		}
		subs = append(subs, v)
	}

	var filtered []string
	for i, q := range queries {
		if wantedIdx[i] {
			filtered = append(filtered, q)
			continue
		}
		ql := strings.ToLower(q)
		for _, sub := range subs {
			if strings.Contains(ql, sub) {
				filtered = append(filtered, q)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return queries
	}
	return filtered
}

func runOnce(ctx context.Context, completer svc.Completer, builder *svc.ContextBuilder, q, mode string, timeout time.Duration) resultItem {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chat := []svc.ChatMessage{{Role: svc.RoleUser, Text: q}}
	if mode == modePersona {
		chat = builder.Assemble(nil, q)
	}

	t0 := time.Now()
	resp, err := completer.Complete(ctx, chat)
	r := resultItem{
		Query:      q,
		Mode:       mode,
		Response:   resp,
		DurationMs: time.Since(t0).Milliseconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func writeResults(dir string, stamp time.Time, summary runSummary) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create results dir: %w", err)
	}
	base := filepath.Join(dir, "personaeval-"+stamp.Format("20060102-150405"))
	jsonPath, csvPath := base+".json", base+".csv"
	if err := writeJSON(jsonPath, summary); err != nil {
		return "", "", fmt.Errorf("write JSON: %w", err)
	}
	if err := writeCSV(csvPath, summary.Results); err != nil {
		return "", "", fmt.Errorf("write CSV: %w", err)
	}
	return jsonPath, csvPath, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []resultItem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"query", "mode", "duration_ms", "model", "error", "response"})
	for _, it := range items {
		_ = w.Write([]string{
			it.Query,
			it.Mode,
			strconv.FormatInt(it.DurationMs, 10),
			it.Model,
			it.Error,
			it.Response,
		})
	}
	w.Flush()
	return w.Error()
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
