package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	devenv "mturk-extractor/dev/env"
	"mturk-extractor/lib/runstate/db"
	"mturk-extractor/lib/scrapers/mturk"
)

func CreateRunStateDB() error {
	path, err := devenv.ResolvePath("<dev_state>/runstate.db")
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer database.Close()
	_, err = database.Exec(db.Schema)
	return err
}

// CreateDashboardConfig writes an empty dashboard_config.json for the live
// dashboard tests to fill in.
func CreateDashboardConfig() error {
	path, err := devenv.GetStateFilePath("dashboard_config.json")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("dashboard config already exists at", path)
		return nil
	}

	contents, err := json.MarshalIndent(devenv.DashboardTestConfig{
		DashboardUrl: mturk.DefaultDashboardUrl,
		Cookies:      map[string]string{"session-token": ""},
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("writing dashboard config template to", path)
	return os.WriteFile(path, contents, 0600)
}

func PrintConfigLocations() {
	slog.Info("the live dashboard tests read session cookies from dev/.state/dashboard_config.json, fill it in to run them with `go test -v ./...`.")
}
