package scraper

import (
	"strings"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/dom"
	"go-jobposting-collector/internal/models"
)

// Extractor builds a JobRecord from a rendered job page.
type Extractor struct {
	table SelectorTable
	log   logrus.FieldLogger
}

func NewExtractor(table SelectorTable, log logrus.FieldLogger) *Extractor {
	return &Extractor{table: table, log: log}
}

// Table returns the selector table the extractor runs with.
func (e *Extractor) Table() SelectorTable {
	return e.table
}

// Extract never fails. Fields that no probe resolves are left empty; when
// every lookup misses the record still carries posting_url and origin.
func (e *Extractor) Extract(doc dom.Document, pageURL string) models.JobRecord {
	e.log.Debug("🔍 Starting job page extraction...")
	rec := models.NewJobRecord(pageURL)

	if text, probe, ok := firstText(doc, e.table.Title); ok {
		rec.Position = strings.TrimSpace(text)
		e.trace("position", probe)
	}
	if text, probe, ok := firstText(doc, e.table.Company); ok {
		rec.Company = strings.TrimSpace(text)
		e.trace("company", probe)
	}
	if text, probe, ok := firstText(doc, e.table.Description); ok {
		// line structure is kept for the record store
		rec.JobDescription = text
		e.trace("job_description", probe)
	}

	if el, ok := doc.First(e.table.WorkPreferences); ok {
		if arrangement, ok := ClassifyWorkArrangement(el.Text()); ok {
			rec.WorkArrangement = arrangement
			e.trace("work_arrangement", e.table.WorkPreferences)
		}
	}

	if el, ok := doc.First(e.table.ApplicantCount); ok {
		if demand, ok := ClassifyDemand(el.Text()); ok {
			rec.Demand = demand
			e.trace("demand", e.table.ApplicantCount)
		}
	}

	rec.City, rec.Country = ResolveLocation(doc, e.table)
	if rec.City != "" || rec.Country != "" {
		e.log.WithFields(logrus.Fields{"city": rec.City, "country": rec.Country}).Debug("📍 Location resolved")
	}

	e.log.WithFields(logrus.Fields{
		"position":         found(rec.Position),
		"company":          found(rec.Company),
		"posting_url":      rec.PostingURL,
		"job_description":  len(rec.JobDescription),
		"work_arrangement": found(string(rec.WorkArrangement)),
		"demand":           found(string(rec.Demand)),
		"city":             found(rec.City),
		"country":          found(rec.Country),
	}).Info("📋 Extraction complete")

	return rec
}

func (e *Extractor) trace(field, probe string) {
	e.log.WithFields(logrus.Fields{"field": field, "selector": probe}).Debug("✅ Field resolved")
}

func found(v string) string {
	if v == "" {
		return "not found"
	}
	return "found"
}
