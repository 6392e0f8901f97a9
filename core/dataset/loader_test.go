package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLoader(t *testing.T, cfg Config) *Loader {
	t.Helper()
	l, err := NewLoader(cfg)
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	return l
}

func TestLoadBasic(t *testing.T) {
	data := "id,score,default\nA1,0.25,0\nA2,0.55,1\nA3,NA,0\n"
	l := newTestLoader(t, Config{IDColumn: "id"})
	ds, err := l.Load("apps", strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Records) != 3 || ds.Skipped != 0 {
		t.Fatalf("bad dataset %+v", ds)
	}
	if ds.Records[0].ID != "A1" || ds.Records[0].Score != 0.25 || ds.Records[0].Default {
		t.Fatalf("bad first record %+v", ds.Records[0])
	}
	if !ds.Records[1].Default {
		t.Fatalf("outcome not parsed: %+v", ds.Records[1])
	}
	if !math.IsNaN(ds.Records[2].Score) {
		t.Fatalf("NA should load as NaN: %+v", ds.Records[2])
	}
}

func TestLoadCustomColumnsAndTokens(t *testing.T) {
	data := "risk_score,defaulted\n0.8,yes\nnull,no\n"
	l := newTestLoader(t, Config{ScoreColumn: "risk_score", OutcomeColumn: "defaulted"})
	ds, err := l.Load("x", strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ds.Records[0].Default || ds.Records[0].Score != 0.8 {
		t.Fatalf("bad record %+v", ds.Records[0])
	}
	if !ds.Records[1].ScoreMissing() {
		t.Fatalf("null should map to missing score")
	}
}

func TestLoadCovariates(t *testing.T) {
	data := "id,score,default,income,age,region\nA1,0.25,0,42000,31,north\nA2,0.55,1,NA,44,south\n"
	l := newTestLoader(t, Config{IDColumn: "id"})
	ds, err := l.Load("apps", strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first := ds.Records[0]
	if v, ok := first.Covariate("income"); !ok || v != 42000 {
		t.Fatalf("income not retained: %+v", first.Covariates)
	}
	if v, ok := first.Covariate("age"); !ok || v != 31 {
		t.Fatalf("age not retained: %+v", first.Covariates)
	}
	// non-numeric columns carry no covariate value
	if _, ok := first.Covariate("region"); ok {
		t.Fatalf("region should not be retained: %+v", first.Covariates)
	}
	second := ds.Records[1]
	if _, ok := second.Covariate("income"); ok {
		t.Fatalf("NA covariate should be dropped: %+v", second.Covariates)
	}
	if v, ok := second.Covariate("age"); !ok || v != 44 {
		t.Fatalf("age not retained on second row: %+v", second.Covariates)
	}
}

func TestLoadNoCovariateColumns(t *testing.T) {
	data := "score,default\n0.5,1\n"
	l := newTestLoader(t, Config{})
	ds, err := l.Load("x", strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Records[0].Covariates != nil {
		t.Fatalf("expected nil covariates, got %+v", ds.Records[0].Covariates)
	}
}

func TestLoadSkipMalformed(t *testing.T) {
	data := "score,default\n0.5,1\nnot-a-number,0\n0.2,maybe\n0.9,0\n"
	l := newTestLoader(t, Config{})
	ds, err := l.Load("x", strings.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Records) != 2 || ds.Skipped != 2 {
		t.Fatalf("expected 2 kept / 2 skipped, got %d/%d", len(ds.Records), ds.Skipped)
	}
}

func TestLoadFailPolicy(t *testing.T) {
	data := "score,default\nbogus,1\n"
	l := newTestLoader(t, Config{OnMalformed: "fail"})
	if _, err := l.Load("x", strings.NewReader(data)); err == nil {
		t.Fatalf("expected error with fail policy")
	}
}

func TestLoadMissingColumns(t *testing.T) {
	l := newTestLoader(t, Config{})
	if _, err := l.Load("x", strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatalf("expected error for absent score column")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.csv")
	if err := os.WriteFile(path, []byte("score,default\n0.1,0\n0.9,1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := newTestLoader(t, Config{})
	ds, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if ds.Name != "portfolio" || len(ds.Records) != 2 {
		t.Fatalf("bad dataset %+v", ds)
	}
}

func TestConfigValidate(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.ScoreColumn != "score" || cfg.OnMalformed != "skip" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty path")
	}
	cfg.Path = "data.csv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cfg.OnMalformed = "explode"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for bad policy")
	}
}
