package config

// Launch arguments passed to the application under test.
const (
	LaunchArgUITesting         = "--uitesting"
	LaunchArgEnvironment       = "--environment"
	LaunchArgDisableAnimations = "--disable-animations"
	LaunchArgResetState        = "--reset-state"
)

// Launch environment variables passed to the application under test.
const (
	LaunchEnvUITestRunning     = "UI_TEST_RUNNING"
	LaunchEnvEnvironment       = "APP_ENVIRONMENT"
	LaunchEnvDisableAnimations = "DISABLE_ANIMATIONS"
)

// LaunchArguments returns the flags the application branches on to run
// deterministically under test.
func (c *Config) LaunchArguments() []string {
	args := []string{
		LaunchArgUITesting,
		LaunchArgEnvironment + "=" + string(c.Environment),
		LaunchArgDisableAnimations,
	}
	if c.ResetOnLaunch {
		args = append(args, LaunchArgResetState)
	}
	return args
}

// LaunchEnvironment returns the environment map passed to the application.
func (c *Config) LaunchEnvironment() map[string]string {
	return map[string]string{
		LaunchEnvUITestRunning:     "1",
		LaunchEnvEnvironment:       string(c.Environment),
		LaunchEnvDisableAnimations: "1",
	}
}
