package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/browser"
	"go-jobposting-collector/internal/review"
	"go-jobposting-collector/internal/scraper"
	"go-jobposting-collector/internal/scraper/linkedin"
)

// navigator brings a posting on screen and reports the address it ended on.
type navigator interface {
	Open(url string) (string, error)
	Capture(name, message string)
}

type collector struct {
	session *review.Session
	nav     navigator
	prompt  *prompter
	out     io.Writer
	log     logrus.FieldLogger
	saves   sync.WaitGroup
}

func (c *collector) review(ctx context.Context, target string) error {
	current, err := c.nav.Open(target)
	if err != nil {
		return err
	}

	run := c.session.Navigate(current)
	prefill, err := run.Start(ctx)
	if errors.Is(err, review.ErrWrongPage) {
		fmt.Fprintln(c.out, "⚠️ Navigate to a LinkedIn job posting first.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n📋 %s posting\n", prefill.Mode.Label())
	printRecord(c.out, prefill.Record)
	if prefill.Existing != nil {
		fmt.Fprintf(c.out, "  Stored at:   %s\n", prefill.Existing.URL)
	}
	if prefill.ExtractionError != nil {
		fmt.Fprintln(c.out, "⚠️ Could not extract job data. You can still fill in the form manually.")
		c.nav.Capture("extraction_failed", prefill.ExtractionError.Error())
	}
	if len(prefill.Failures) > 0 {
		fmt.Fprintf(c.out, "⚠️ Could not extract: %s. Please fill them in.\n", strings.Join(prefill.Failures, ", "))
		c.nav.Capture("missing_fields", "Extraction missed "+strings.Join(prefill.Failures, ", "))
	}
	if !prefill.AutoSave {
		fmt.Fprintln(c.out, "ℹ️ The posting will not be saved on LinkedIn.")
	}
	if prefill.Existing != nil {
		if open, err := c.prompt.confirm("Open the stored record?"); err == nil && open {
			if err := run.OpenExisting(ctx); err != nil {
				c.log.WithError(err).Warn("⚠️ Could not open stored record")
			}
		}
	}

	rec := prefill.Record
	for {
		rec, err = c.prompt.edit(rec)
		if err != nil {
			return err
		}

		result, err := run.Submit(ctx, rec)
		if err == nil {
			verb := "Updated"
			if result.Created {
				verb = "Saved"
			}
			fmt.Fprintf(c.out, "✅ %s: %s\n", verb, result.Existing.URL)
			c.watchSave(result.Save)
			return nil
		}

		var subErr *backend.SubmitError
		switch {
		case errors.Is(err, review.ErrIncomplete):
			fmt.Fprintf(c.out, "❌ %v\n", err)
			continue
		case errors.As(err, &subErr):
			fmt.Fprintf(c.out, "❌ %s\n", subErr.UserMessage())
		default:
			return err
		}

		again, promptErr := c.prompt.confirm(fmt.Sprintf("%s again?", run.Mode().Label()))
		if promptErr != nil || !again {
			return nil
		}
	}
}

// watchSave reports the background save once it settles.
func (c *collector) watchSave(outcomes <-chan scraper.SaveOutcome) {
	if outcomes == nil {
		return
	}
	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		for outcome := range outcomes {
			if outcome.Saved() {
				fmt.Fprintln(c.out, "💾 Saved to LinkedIn")
				continue
			}
			fmt.Fprintf(c.out, "⚠️ LinkedIn save: %s %s\n", outcome.Status, outcome.Detail)
		}
	}()
}

func (c *collector) waitForSaves() {
	c.saves.Wait()
}

type staticNavigator struct {
	address string
}

func (n staticNavigator) Open(string) (string, error) { return n.address, nil }
func (n staticNavigator) Capture(string, string)      {}

type liveNavigator struct {
	page   playwright.Page
	doc    *browser.PageDocument
	loader *linkedin.Loader
	shots  *browser.ScreenshotDebugger
	log    logrus.FieldLogger
}

func (n *liveNavigator) Open(url string) (string, error) {
	err := n.loader.Open(n.page, url)
	if errors.Is(err, linkedin.ErrJobDetailsNotFound) {
		n.log.Warn("⚠️ Job details did not render, extracting what is there")
	} else if err != nil {
		return "", err
	}
	return n.doc.URL(), nil
}

func (n *liveNavigator) Capture(name, message string) {
	_, _ = n.shots.CaptureAndLog(n.page, name, message)
}
