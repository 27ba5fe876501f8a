package config

import (
	"fmt"
	"net/url"
	"strings"
)

const binaryResultKey = "disable_prepared_binary_result"

// Database is the subset of settings the migration binary needs.
type Database struct {
	URL                   string
	DisablePreparedBinary bool
}

// LoadDatabase reads only DB_URL and DB_DISABLE_PREPARED_BINARY_RESULT.
func LoadDatabase() (Database, error) {
	db := Database{URL: strings.TrimSpace(getEnv("DB_URL", ""))}
	if db.URL == "" {
		return Database{}, fmt.Errorf("DB_URL is required")
	}
	var err error
	if db.DisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Database{}, err
	}
	return db, nil
}

// DSN turns off binary prepared results for poolers that cannot carry them.
// An explicit value in the URL wins and key=value DSNs pass through.
func (d Database) DSN() string {
	if !d.DisablePreparedBinary {
		return d.URL
	}
	u, err := url.Parse(d.URL)
	if err != nil || u.Scheme == "" {
		return d.URL
	}
	q := u.Query()
	if q.Has(binaryResultKey) {
		return d.URL
	}
	q.Set(binaryResultKey, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// Database returns the connection settings of the loaded config.
func (c Config) Database() Database {
	return Database{URL: c.DBURL, DisablePreparedBinary: c.DBDisablePreparedBinary}
}
