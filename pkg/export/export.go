// Package export writes banded records and band summaries to CSV or JSON
// for downstream reporting tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/creditlab/riskband/core/model"
)

// bandedRow mirrors model.BandedRecord with a nullable score so missing
// values encode as JSON null instead of an invalid NaN literal.
type bandedRow struct {
	ID         string             `json:"id"`
	Score      *float64           `json:"score"`
	Default    bool               `json:"default"`
	Band       string             `json:"band"`
	Covariates map[string]float64 `json:"covariates,omitempty"`
}

func toRow(r model.BandedRecord) bandedRow {
	row := bandedRow{ID: r.ID, Default: r.Default, Band: r.Band.String(), Covariates: r.Covariates}
	if !r.ScoreMissing() {
		s := r.Score
		row.Score = &s
	}
	return row
}

// covariateNames returns the sorted union of covariate names across records.
func covariateNames(recs []model.BandedRecord) []string {
	seen := map[string]bool{}
	for _, r := range recs {
		for name := range r.Covariates {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteRecordsJSON writes banded records to w as a JSON array.
func WriteRecordsJSON(w io.Writer, recs []model.BandedRecord) error {
	rows := make([]bandedRow, len(recs))
	for i, r := range recs {
		rows[i] = toRow(r)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteRecordsCSV writes banded records to w in CSV format. Missing scores
// and absent covariates are written as empty fields; covariate columns
// follow the fixed columns in name order.
func WriteRecordsCSV(w io.Writer, recs []model.BandedRecord) error {
	names := covariateNames(recs)
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"id", "score", "default", "band"}, names...)); err != nil {
		return err
	}
	for _, r := range recs {
		score := ""
		if !r.ScoreMissing() {
			score = strconv.FormatFloat(r.Score, 'f', -1, 64)
		}
		rec := []string{r.ID, score, strconv.FormatBool(r.Default), r.Band.String()}
		for _, name := range names {
			field := ""
			if v, ok := r.Covariates[name]; ok {
				field = strconv.FormatFloat(v, 'f', -1, 64)
			}
			rec = append(rec, field)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummariesJSON writes band summaries to w in JSON format.
func WriteSummariesJSON(w io.Writer, sums []model.BandSummary) error {
	enc := json.NewEncoder(w)
	return enc.Encode(sums)
}

// WriteSummariesCSV writes band summaries to w in CSV format.
func WriteSummariesCSV(w io.Writer, sums []model.BandSummary) error {
	cw := csv.NewWriter(w)
	header := []string{"band", "count", "share", "defaults", "default_rate",
		"score_mean", "score_stddev", "score_min", "score_max"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sums {
		rec := []string{
			s.Band.String(),
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Share, 'f', -1, 64),
			strconv.Itoa(s.Defaults),
			strconv.FormatFloat(s.DefaultRate, 'f', -1, 64),
			strconv.FormatFloat(s.ScoreMean, 'f', -1, 64),
			strconv.FormatFloat(s.ScoreStdDev, 'f', -1, 64),
			strconv.FormatFloat(s.ScoreMin, 'f', -1, 64),
			strconv.FormatFloat(s.ScoreMax, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
