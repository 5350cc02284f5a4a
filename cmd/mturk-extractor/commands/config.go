package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"mturk-extractor/lib/chrono"
	"mturk-extractor/lib/configutil"
	"mturk-extractor/lib/delivery"
	"mturk-extractor/lib/runstate"
	"mturk-extractor/lib/scrapers/mturk"
	"mturk-extractor/lib/telemetry"
	"mturk-extractor/services/extractor"
)

const (
	sinkWebhook = "webhook"
	sinkEmail   = "email"
)

type SinkConfig struct {
	Name string `json:"name"`
	// Kind is either "webhook" or "email".
	Kind  string               `json:"kind"`
	Url   string               `json:"url"`
	Await bool                 `json:"await"`
	Email delivery.EmailConfig `json:"email"`
}

type Config struct {
	DashboardUrl    string            `json:"dashboard_url"`
	Cookies         map[string]string `json:"cookies"`
	UserAgent       string            `json:"user_agent"`
	DisableBypass   bool              `json:"disable_bypass"`
	IpLookupUrl     string            `json:"ip_lookup_url"`
	DisableIpLookup bool              `json:"disable_ip_lookup"`
	Timezone        string            `json:"timezone"`
	State           runstate.Config   `json:"state"`
	Sinks           []SinkConfig      `json:"sinks"`
}

func readConfig(path string) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if config.State.File == "" && config.State.Url == "" {
		config.State.File = "mturk-extractor.db"
	}
	if config.IpLookupUrl == "" {
		config.IpLookupUrl = extractor.DefaultIpLookupUrl
	}
	return config, nil
}

func httpOutput() (telemetry.HttpOutput, error) {
	if dumpHttp == "" {
		return nil, nil
	}
	output, err := telemetry.NewFilesystemOutput(dumpHttp)
	if err != nil {
		return nil, fmt.Errorf("create http dump directory: %w", err)
	}
	return output, nil
}

func buildTargets(sinks []SinkConfig, tel telemetry.API, output telemetry.HttpOutput) ([]delivery.Target, error) {
	targets := make([]delivery.Target, 0, len(sinks))
	for i, sink := range sinks {
		name := sink.Name
		if name == "" {
			name = fmt.Sprintf("sink_%d", i)
		}

		var target delivery.Sink
		switch sink.Kind {
		case sinkWebhook, "":
			if sink.Url == "" {
				return nil, fmt.Errorf("sink %s: webhook url is empty", name)
			}
			target = delivery.NewWebhook(name, sink.Url, tel, output)
		case sinkEmail:
			if sink.Email.Server == "" || sink.Email.Address == "" || len(sink.Email.To) == 0 {
				return nil, fmt.Errorf("sink %s: email server, address and recipients are required", name)
			}
			if sink.Email.Port == 0 {
				sink.Email.Port = 587
			}
			target = delivery.NewEmail(name, sink.Email)
		default:
			return nil, fmt.Errorf("sink %s: unknown kind %q", name, sink.Kind)
		}

		targets = append(targets, delivery.Target{Sink: target, Await: sink.Await})
	}
	return targets, nil
}

func openStore(ctx context.Context, config Config) (runstate.Store, *sql.DB, error) {
	database, err := config.State.OpenDB()
	if err != nil {
		return runstate.Store{}, nil, fmt.Errorf("open run state: %w", err)
	}
	store, err := runstate.NewStore(ctx, database)
	if err != nil {
		database.Close()
		return runstate.Store{}, nil, err
	}
	return store, database, nil
}

// app is everything a pipeline command needs.
type app struct {
	service    extractor.Service
	dispatcher delivery.Dispatcher
	database   *sql.DB
}

// Close waits for background deliveries before closing the run state.
func (a app) Close() {
	a.dispatcher.Wait()
	a.database.Close()
}

// openApp wires the service from the config, when file is set the dashboard
// is read from it instead of being fetched.
func openApp(ctx context.Context, config Config, file string) (app, error) {
	tel := telemetry.SlogAPI{}

	output, err := httpOutput()
	if err != nil {
		return app{}, err
	}

	clock, err := chrono.NewStandardTime(config.Timezone)
	if err != nil {
		return app{}, fmt.Errorf("load timezone: %w", err)
	}

	var source extractor.Source
	if file != "" {
		source = mturk.FileSource{Path: file}
	} else {
		if len(config.Cookies) == 0 {
			slog.Warn("no session cookies configured, the dashboard will likely redirect to sign in")
		}
		client, err := mturk.NewClient(mturk.ClientOptions{
			DashboardUrl:  config.DashboardUrl,
			Cookies:       config.Cookies,
			UserAgent:     config.UserAgent,
			DisableBypass: config.DisableBypass,
			HttpOutput:    output,
		}, tel)
		if err != nil {
			return app{}, err
		}
		source = client
	}

	var lookup extractor.AddressLookup = extractor.NoLookup{}
	if !config.DisableIpLookup {
		lookup = extractor.NewIpLookup(config.IpLookupUrl, tel, output)
	}

	targets, err := buildTargets(config.Sinks, tel, output)
	if err != nil {
		return app{}, err
	}
	if len(targets) == 0 {
		slog.Warn("no sinks configured, records will not be delivered anywhere")
	}
	dispatcher := delivery.NewDispatcher(targets, tel)

	store, database, err := openStore(ctx, config)
	if err != nil {
		return app{}, err
	}

	service := extractor.NewService(extractor.Options{
		Source:    source,
		Gate:      runstate.NewGate(store, clock),
		Lookup:    lookup,
		Deliverer: dispatcher,
		Time:      clock,
	}, tel)

	return app{
		service:    service,
		dispatcher: dispatcher,
		database:   database,
	}, nil
}
