package devenv

// DashboardTestConfig is read from dev/.state/dashboard_config.json by the
// tests that talk to the live worker dashboard.
type DashboardTestConfig struct {
	DashboardUrl string            `json:"dashboard_url"`
	Cookies      map[string]string `json:"cookies"`
}
