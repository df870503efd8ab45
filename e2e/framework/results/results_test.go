package results

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionIsSafeForConcurrentAdds(t *testing.T) {
	var c Collection
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(TestResult{Name: "t", Status: StatusPassed})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Results())
}

func TestSummary(t *testing.T) {
	var c Collection
	c.Add(TestResult{Name: "testLogin", Status: StatusPassed, Duration: time.Second})
	c.Add(TestResult{Name: "testCheckout", Status: StatusFailed, Duration: 2 * time.Second, Error: "exists failed for id=checkout.title\nstack"})
	c.Add(TestResult{Name: "testBasket", Status: StatusFailed, Duration: time.Second})
	c.Add(TestResult{Name: "testStaging", Status: StatusSkipped})

	s := c.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4*time.Second, s.Duration)
	assert.InDelta(t, 33.3, s.PassRate(), 0.1)
	require.Len(t, s.Failures, 2)
	assert.Equal(t, "testBasket", s.Failures[0].Name)

	text := RenderSummary(s)
	assert.Contains(t, text, "Failed:   2")
	assert.Contains(t, text, "FAILED TESTS:\n  - testBasket\n  - testCheckout: exists failed for id=checkout.title\n")
	assert.NotContains(t, text, "stack")
}

func TestRenderSummaryOmitsFailedBlockWhenGreen(t *testing.T) {
	text := RenderSummary(Summarize([]TestResult{{Name: "a", Status: StatusPassed}}))
	assert.NotContains(t, text, "FAILED TESTS")
	assert.Contains(t, text, "Pass rate: 100.0%")
	assert.Zero(t, Summary{}.PassRate())
}

func TestAddArtifact(t *testing.T) {
	var r TestResult
	r.AddArtifact("screenshot", "/tmp/a.png")
	assert.Equal(t, map[string]string{"screenshot": "/tmp/a.png"}, r.Artifacts)
}
