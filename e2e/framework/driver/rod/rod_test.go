package rod

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splunk/ui-e2e/e2e/framework/driver"
)

func TestSelector(t *testing.T) {
	tests := []struct {
		name string
		loc  driver.Locator
		want string
	}{
		{name: "id", loc: driver.ByID("login.submitButton"), want: `[data-testid="login.submitButton"]`},
		{name: "kind", loc: driver.ByKind("drinkCell"), want: `[data-kind="drinkCell"]`},
		{name: "kind and label", loc: driver.ByKind("drinkCell").WithLabel("Flat White"), want: `[data-kind="drinkCell"][aria-label="Flat White"]`},
		{name: "escapes quotes", loc: driver.ByLabel(`say "hi"`), want: `[aria-label="say \"hi\""]`},
		{name: "index is not a selector", loc: driver.ByKind("basketRow").At(3), want: `[data-kind="basketRow"]`},
		{name: "empty", loc: driver.Locator{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Selector(tt.loc))
		})
	}
}

func TestAppURL(t *testing.T) {
	got, err := AppURL("http://localhost:8080/app?theme=dark", driver.LaunchConfig{
		Arguments:   []string{"--uitesting", "--environment=staging"},
		Environment: map[string]string{"UI_TEST_RUNNING": "1"},
	})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/app", u.Path)
	q := u.Query()
	assert.Equal(t, "dark", q.Get("theme"))
	assert.Equal(t, []string{"--uitesting", "--environment=staging"}, q["arg"])
	assert.Equal(t, "1", q.Get("env.UI_TEST_RUNNING"))

	_, err = AppURL("", driver.LaunchConfig{})
	assert.Error(t, err)
}

func TestUnlaunchedDriverReportsNothing(t *testing.T) {
	d := New(Options{})
	el := d.Find(driver.ByID("catalog.title"))

	assert.False(t, el.Exists())
	assert.ErrorIs(t, el.Tap(), driver.ErrNotLaunched)
	assert.Zero(t, d.Count(driver.ByKind("drinkCell")))
	assert.False(t, d.WaitForExistence(driver.ByID("catalog.title"), time.Millisecond))
	assert.False(t, d.Alert().Exists())
	assert.ErrorIs(t, d.Alert().Tap("OK"), driver.ErrNoAlert)
	_, err := d.Screenshot()
	assert.ErrorIs(t, err, driver.ErrNotLaunched)
	assert.NoError(t, d.Terminate(context.Background()))
	assert.NoError(t, d.Close())
}

// TestBrowserSmoke needs a served web build and a local Chrome.
func TestBrowserSmoke(t *testing.T) {
	appURL := os.Getenv("UI_E2E_APP_URL")
	if appURL == "" {
		t.Skip("UI_E2E_APP_URL not set")
	}
	d := New(Options{AppURL: appURL, BrowserBin: os.Getenv("UI_E2E_BROWSER_BIN"), Headless: true})
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	require.NoError(t, d.Launch(ctx, driver.LaunchConfig{Arguments: []string{"--uitesting"}}))
	assert.True(t, d.WaitForExistence(driver.ByID("catalog.title"), 10*time.Second))

	shot, err := d.Screenshot()
	require.NoError(t, err)
	assert.NotEmpty(t, shot)
}
