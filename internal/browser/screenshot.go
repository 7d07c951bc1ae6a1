package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// ScreenshotDebugger saves full-page screenshots when extraction misses
// required fields, so selector drift can be diagnosed later.
type ScreenshotDebugger struct {
	outputDir string
	log       logrus.FieldLogger
}

func NewScreenshotDebugger(outputDir string, log logrus.FieldLogger) *ScreenshotDebugger {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.WithError(err).Warn("⚠️ Failed to create screenshot directory")
	}
	return &ScreenshotDebugger{outputDir: outputDir, log: log}
}

// CaptureAndLog writes <name>_<timestamp>.png and returns its path.
func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Warnf("📸 %s", message)

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.WithError(err).Warn("⚠️ Failed to capture screenshot")
		return "", err
	}

	s.log.WithField("path", path).Info("   Screenshot saved")
	return path, nil
}
