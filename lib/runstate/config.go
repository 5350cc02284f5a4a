package runstate

import (
	"database/sql"
	"fmt"
	"net/url"

	devenv "mturk-extractor/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config points at the database holding the run state, either a local
// sqlite file or a remote libsql database when Url is set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("neither a run state file nor url was specified")
		}
		dbpath, err := devenv.ResolvePath(config.File)
		if err != nil {
			return nil, err
		}
		database, err := sql.Open("sqlite", dbpath)
		if err != nil {
			return nil, err
		}
		database.SetMaxOpenConns(1)
		return database, nil
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	link := config.Url
	if len(values) > 0 {
		link += "?" + values.Encode()
	}
	return sql.Open("libsql", link)
}
