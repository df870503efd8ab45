package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/ginkgo/v2/reporters"
	"github.com/onsi/ginkgo/v2/types"
	. "github.com/onsi/gomega"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/splunk/ui-e2e/e2e/framework/config"
	"github.com/splunk/ui-e2e/e2e/framework/lifecycle"
	"github.com/splunk/ui-e2e/e2e/framework/logging"
)

var (
	suite       *lifecycle.Suite
	artifactDir string
)

func TestScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UI scenarios")
}

var _ = BeforeSuite(func() {
	var err error
	artifactDir, err = os.MkdirTemp("", "ui-e2e-scenarios-")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, artifactDir)

	cfg := config.Default().Configure(
		config.WithArtifactDir(artifactDir),
		config.WithRetry(2, time.Second),
		config.WithScreenshots(true, false),
	)
	cfg.RunID = "scenarios"
	cfg.TestSuite = "scenarios"
	cfg.Fixtures = ""
	cfg.MetricsPath = ""

	fake := testingclock.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	suite, err = lifecycle.NewSuite(context.Background(), cfg,
		lifecycle.WithClock(fake),
		lifecycle.WithLogger(logging.NewNop()),
	)
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if suite == nil {
		return
	}
	summary, err := suite.Finish(context.Background())
	Expect(err).NotTo(HaveOccurred())
	Expect(summary.Failed).To(BeZero(), "recorded failures")
	Expect(filepath.Join(suite.Artifacts.RunDir, "results.json")).To(BeAnExistingFile())
})

var _ = ReportAfterSuite("junit", func(report types.Report) {
	if artifactDir == "" {
		return
	}
	Expect(reporters.GenerateJUnitReport(report, filepath.Join(artifactDir, "junit.xml"))).To(Succeed())
})
