package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creditlab/riskband/core/model"
)

// Dataset bundles the loaded records with ingestion counters.
type Dataset struct {
	Name    string
	Records []model.ScoreRecord
	Skipped int
}

// Config defines CSV ingestion settings loaded from configuration.
type Config struct {
	Path          string   `json:"path" yaml:"path"`
	ScoreColumn   string   `json:"score_column" yaml:"score_column"`
	OutcomeColumn string   `json:"outcome_column" yaml:"outcome_column"`
	IDColumn      string   `json:"id_column" yaml:"id_column"`
	MissingTokens []string `json:"missing_tokens" yaml:"missing_tokens"`
	// OnMalformed selects the policy for unparseable rows: "skip" or "fail".
	OnMalformed string `json:"on_malformed" yaml:"on_malformed"`
	// IntervalMinutes re-runs the analysis on the (refreshed) file when
	// positive. Zero means a single run.
	IntervalMinutes int `json:"interval_minutes" yaml:"interval_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ScoreColumn == "" {
		c.ScoreColumn = "score"
	}
	if c.OutcomeColumn == "" {
		c.OutcomeColumn = "default"
	}
	if len(c.MissingTokens) == 0 {
		c.MissingTokens = []string{"", "NA", "NaN", "null"}
	}
	if c.OnMalformed == "" {
		c.OnMalformed = "skip"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("dataset path is required")
	}
	if c.OnMalformed != "skip" && c.OnMalformed != "fail" {
		return fmt.Errorf("unknown malformed-row policy %s", c.OnMalformed)
	}
	if c.IntervalMinutes < 0 {
		return fmt.Errorf("interval_minutes must not be negative")
	}
	return nil
}

// Loader reads score records from CSV input.
type Loader struct {
	cfg Config
}

// NewLoader builds a Loader from a validated Config.
func NewLoader(cfg Config) (*Loader, error) {
	cfg.SetDefaults()
	if cfg.OnMalformed != "skip" && cfg.OnMalformed != "fail" {
		return nil, fmt.Errorf("unknown malformed-row policy %s", cfg.OnMalformed)
	}
	return &Loader{cfg: cfg}, nil
}

// LoadFile loads the configured CSV file. The dataset name is the file base
// name without extension.
func (l *Loader) LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer func() { _ = f.Close() }()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return l.Load(name, f)
}

// Load reads records from r. The first row must be a header containing the
// configured score and outcome columns.
func (l *Loader) Load(name string, r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Dataset{}, fmt.Errorf("read header: %w", err)
	}
	scoreIdx, outcomeIdx, idIdx := -1, -1, -1
	covariates := map[int]string{}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch name {
		case strings.ToLower(l.cfg.ScoreColumn):
			scoreIdx = i
		case strings.ToLower(l.cfg.OutcomeColumn):
			outcomeIdx = i
		case strings.ToLower(l.cfg.IDColumn):
			if l.cfg.IDColumn != "" {
				idIdx = i
			}
		default:
			if name != "" {
				covariates[i] = name
			}
		}
	}
	if scoreIdx < 0 {
		return Dataset{}, fmt.Errorf("score column %q not found", l.cfg.ScoreColumn)
	}
	if outcomeIdx < 0 {
		return Dataset{}, fmt.Errorf("outcome column %q not found", l.cfg.OutcomeColumn)
	}

	ds := Dataset{Name: name}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if l.cfg.OnMalformed == "fail" {
				return Dataset{}, fmt.Errorf("line %d: %w", line, err)
			}
			ds.Skipped++
			continue
		}
		rec, perr := l.parseRow(row, scoreIdx, outcomeIdx, idIdx, covariates, line)
		if perr != nil {
			if l.cfg.OnMalformed == "fail" {
				return Dataset{}, perr
			}
			ds.Skipped++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func (l *Loader) parseRow(row []string, scoreIdx, outcomeIdx, idIdx int, covariates map[int]string, line int) (model.ScoreRecord, error) {
	if scoreIdx >= len(row) || outcomeIdx >= len(row) {
		return model.ScoreRecord{}, fmt.Errorf("line %d: too few fields", line)
	}
	var rec model.ScoreRecord
	if idIdx >= 0 && idIdx < len(row) {
		rec.ID = strings.TrimSpace(row[idIdx])
	}
	if rec.ID == "" {
		rec.ID = strconv.Itoa(line - 1)
	}

	raw := strings.TrimSpace(row[scoreIdx])
	if l.isMissing(raw) {
		rec.Score = math.NaN()
	} else {
		s, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.ScoreRecord{}, fmt.Errorf("line %d: bad score %q", line, raw)
		}
		rec.Score = s
	}

	outcome, err := parseOutcome(strings.TrimSpace(row[outcomeIdx]))
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("line %d: %w", line, err)
	}
	rec.Default = outcome

	// Non-numeric and missing covariate cells are dropped, not errors.
	for idx, name := range covariates {
		if idx >= len(row) {
			continue
		}
		raw := strings.TrimSpace(row[idx])
		if l.isMissing(raw) {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if rec.Covariates == nil {
			rec.Covariates = make(map[string]float64, len(covariates))
		}
		rec.Covariates[name] = v
	}
	return rec, nil
}

func (l *Loader) isMissing(raw string) bool {
	for _, tok := range l.cfg.MissingTokens {
		if strings.EqualFold(raw, tok) {
			return true
		}
	}
	return false
}

func parseOutcome(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("bad outcome %q", raw)
}
