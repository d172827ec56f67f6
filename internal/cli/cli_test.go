package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAssess_ReferenceDefaults(t *testing.T) {
	t.Parallel()
	out, err := run(t, "assess", "--uncertainty=false")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !strings.Contains(out, "R:          0.281 (low)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "p05") {
		t.Errorf("expected no uncertainty block, got:\n%s", out)
	}
}

func TestAssess_JSONWithUncertainty(t *testing.T) {
	t.Parallel()
	out, err := run(t, "assess", "--json", "--samples", "200", "--seed", "7")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	var a struct {
		Result struct {
			R    float64 `json:"R_score"`
			RP05 float64 `json:"R_p05"`
			RP95 float64 `json:"R_p95"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if a.Result.RP05 > a.Result.RP95 {
		t.Errorf("expected p05 <= p95, got %v > %v", a.Result.RP05, a.Result.RP95)
	}
}

func TestAssess_RejectsOutOfRange(t *testing.T) {
	t.Parallel()
	_, err := run(t, "assess", "--lith", "9")
	if err == nil || !strings.Contains(err.Error(), "lith_class") {
		t.Fatalf("expected lith_class error, got %v", err)
	}
}

func TestAssess_SiteWithoutDatabase(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "georisk.yaml")
	if err := os.WriteFile(cfgPath, []byte("storage_root: "+dir+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "--config", cfgPath, "assess", "--site", "nowhere", "--uncertainty=false")
	if err == nil || !strings.Contains(err.Error(), "site not found") {
		t.Fatalf("expected site not found, got %v", err)
	}
}

func TestLoreScore_YAMLList(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lore.yaml")
	doc := `
- event_narrative: The river rose over the mill
  years_ago: 80
  source_type: oral_tradition
- event_narrative: Gauge record of the flood
  years_ago: 1
  source_type: scientific
  distance_to_report: 0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "lore", "score", "--json", path)
	if err != nil {
		t.Fatalf("lore score: %v", err)
	}
	var body struct {
		Records []struct {
			LScore float64 `json:"l_score"`
		} `json:"records"`
		Policy     string  `json:"policy"`
		LoreSignal float64 `json:"lore_signal"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(body.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(body.Records))
	}
	want := max(body.Records[0].LScore, body.Records[1].LScore)
	if body.Policy != "max" || body.LoreSignal != want {
		t.Errorf("expected max policy signal %v, got %s %v", want, body.Policy, body.LoreSignal)
	}
}

func TestLoreScore_SingleJSONRecord(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lore.json")
	if err := os.WriteFile(path, []byte(`{"event_narrative":"Rocks fell","years_ago":10,"source_type":"eyewitness"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "lore", "score", path)
	if err != nil {
		t.Fatalf("lore score: %v", err)
	}
	if !strings.Contains(out, "eyewitness") || !strings.Contains(out, "lore_signal (max)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLoreScore_InvalidRecord(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "lore.yaml")
	if err := os.WriteFile(path, []byte("years_ago: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "lore", "score", path)
	if err == nil || !strings.Contains(err.Error(), "record 0") {
		t.Fatalf("expected record 0 error, got %v", err)
	}
}
