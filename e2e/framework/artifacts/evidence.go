package artifacts

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
	"github.com/splunk/ui-e2e/e2e/framework/results"
)

// Evidence captures diagnostic attachments from the driver and records
// them on the current test result.
type Evidence struct {
	writer *Writer
	driver driver.Driver
	logger *logging.Logger

	mu     sync.Mutex
	result *results.TestResult
}

// NewEvidence returns an Evidence writing through w.
func NewEvidence(w *Writer, d driver.Driver, logger *logging.Logger) *Evidence {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Evidence{writer: w, driver: d, logger: logger}
}

// Attach directs subsequent captures to result. Pass nil to detach.
func (e *Evidence) Attach(result *results.TestResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = result
}

func (e *Evidence) record(name, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result != nil {
		e.result.AddArtifact(name, path)
	}
}

// CaptureScreenshot writes the current screen and returns its path.
func (e *Evidence) CaptureScreenshot(name string) (string, error) {
	png, err := e.driver.Screenshot()
	if err != nil {
		return "", fmt.Errorf("capture screenshot %s: %w", name, err)
	}
	path, err := e.writer.Screenshot(name, png)
	if err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", name, err)
	}
	e.record("screenshot:"+name, path)
	e.logger.Debug("screenshot captured", zap.String("name", name), zap.String("path", path))
	return path, nil
}

// CaptureHierarchy writes the current element tree and returns its path.
func (e *Evidence) CaptureHierarchy(name string) (string, error) {
	tree, err := e.driver.Hierarchy()
	if err != nil {
		return "", fmt.Errorf("capture hierarchy %s: %w", name, err)
	}
	path, err := e.writer.WriteBytes(filepath.Join("hierarchy", SanitizeName(name)+".json"), tree)
	if err != nil {
		return "", fmt.Errorf("write hierarchy %s: %w", name, err)
	}
	e.record("hierarchy:"+name, path)
	return path, nil
}

// CaptureFailure grabs a screenshot and the element tree. Errors are logged
// and never returned.
func (e *Evidence) CaptureFailure(name string) {
	if _, err := e.CaptureScreenshot(name); err != nil {
		e.logger.Warning("failure screenshot not captured", zap.String("name", name), zap.Error(err))
	}
	if _, err := e.CaptureHierarchy(name); err != nil {
		e.logger.Warning("failure hierarchy not captured", zap.String("name", name), zap.Error(err))
	}
}
