package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/docstore/vector"
)

// topicServer embeds text onto one of two axes depending on whether it
// mentions fractions.
func topicServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		vec := "[0,1]"
		if strings.Contains(strings.ToLower(req.Input), "fraction") {
			vec = "[1,0.1]"
		}
		fmt.Fprintf(w, `{"data":[{"embedding":%s}]}`, vec)
	}))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_IngestSearchRemove(t *testing.T) {
	srv := topicServer(t)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docstore.yaml")
	cfg := fmt.Sprintf("store:\n  dsn: %s\nembedder:\n  type: ollama\n  base_url: %s\nlog:\n  level: error\n",
		filepath.Join(dir, "data", "docs.db"), srv.URL)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	content := filepath.Join(dir, "lessons.yaml")
	body := `
- id: frac
  content: Adding fractions with like denominators.
  subject: MATH
- id: cells
  content: Plant cells have walls.
  subject: SCI
- id: empty
  content: ""
`
	if err := os.WriteFile(content, []byte(body), 0o644); err != nil {
		t.Fatalf("write content failed: %v", err)
	}

	out, err := run(t, "--config", cfgPath, "ingest", content)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.Contains(out, "ingested 2, skipped 1, failed 0") {
		t.Fatalf("ingest output = %q", out)
	}

	out, err = run(t, "--config", cfgPath, "search", "fractions", "-k", "1", "--json")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	var hits []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatalf("search output not JSON: %v\n%s", err, out)
	}
	if len(hits) != 1 || hits[0].ID != "frac" {
		t.Fatalf("hits = %+v, want [frac]", hits)
	}

	out, err = run(t, "--config", cfgPath, "search", "fractions", "--filter", "subject=SCI")
	if err != nil || !strings.Contains(out, "1. cells") || strings.Contains(out, "frac") {
		t.Fatalf("filtered search = %q, %v", out, err)
	}

	if _, err := run(t, "--config", cfgPath, "remove", "frac"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	out, err = run(t, "--config", cfgPath, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "documents: 1") || !strings.Contains(out, "dimension: 2") {
		t.Fatalf("stats output = %q", out)
	}
}

func TestCLI_BadFilter(t *testing.T) {
	if _, err := run(t, "--dsn", "memory", "search", "x", "--filter", "novalue"); err == nil {
		t.Fatalf("search with bad filter succeeded; want error")
	}
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter([]string{"subject=MATH", "grade=7=8"})
	if err != nil {
		t.Fatalf("parseFilter failed: %v", err)
	}
	if f["subject"] != "MATH" || f["grade"] != "7=8" {
		t.Fatalf("parseFilter = %v", f)
	}
	if f, _ := parseFilter(nil); f != nil {
		t.Fatalf("parseFilter(nil) = %v, want nil", f)
	}
}

func TestWriteMatches(t *testing.T) {
	matches := []vector.Match{
		{Document: vector.Document{ID: "frac", Content: "Adding fractions.", Metadata: map[string]string{"subject": "MATH"}}, Score: 0.995},
		{Document: vector.Document{ID: "cells", Content: "Plant cells."}, Score: 0.1},
	}

	var buf bytes.Buffer
	if err := writeMatches(&buf, matches, false); err != nil {
		t.Fatalf("writeMatches(text) failed: %v", err)
	}
	want := "1. frac (0.9950) Adding fractions.\n2. cells (0.1000) Plant cells.\n"
	if buf.String() != want {
		t.Fatalf("text output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := writeMatches(&buf, matches, true); err != nil {
		t.Fatalf("writeMatches(json) failed: %v", err)
	}
	var hits []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Content  string            `json:"content"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &hits); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "frac" || hits[0].Content != "Adding fractions." || hits[0].Metadata["subject"] != "MATH" || hits[1].Metadata != nil {
		t.Fatalf("hits = %+v", hits)
	}

	buf.Reset()
	_ = writeMatches(&buf, nil, false)
	if buf.String() != "no matches\n" {
		t.Fatalf("empty output = %q", buf.String())
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := loadEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("loadEnv(missing) failed: %v", err)
	}

	good := filepath.Join(dir, "good.env")
	_ = os.WriteFile(good, []byte("DOCSTORE_TEST_ENV_VALUE=loaded\n"), 0o644)
	t.Setenv("DOCSTORE_TEST_ENV_VALUE", "")
	os.Unsetenv("DOCSTORE_TEST_ENV_VALUE")
	if err := loadEnv(good); err != nil {
		t.Fatalf("loadEnv(good) failed: %v", err)
	}
	if got := os.Getenv("DOCSTORE_TEST_ENV_VALUE"); got != "loaded" {
		t.Fatalf("DOCSTORE_TEST_ENV_VALUE = %q, want loaded", got)
	}

	bad := filepath.Join(dir, "bad.env")
	_ = os.WriteFile(bad, []byte("BAD-KEY=1\n"), 0o644)
	if err := loadEnv(bad); err == nil {
		t.Fatalf("loadEnv(malformed) succeeded; want error")
	}
}
