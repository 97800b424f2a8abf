package model

import (
	"fmt"

	"go.ytsaurus.tech/library/go/core/xerrors"
)

const (
	DefaultPort    = 1433
	DefaultAppName = "sqlshift"
)

// ConnectionParams describes one SQL Server endpoint. The provider turns it
// into a driver DSN; nothing here is engine-agnostic on purpose.
type ConnectionParams struct {
	Host                   string       `yaml:"host"`
	Port                   int          `yaml:"port"`
	Database               string       `yaml:"database"`
	User                   string       `yaml:"user"`
	Password               SecretString `yaml:"password"`
	AppName                string       `yaml:"app_name"`
	Encrypt                string       `yaml:"encrypt"` // driver values: disable, false, true, strict
	TrustServerCertificate bool         `yaml:"trust_server_certificate"`
}

func (c *ConnectionParams) WithDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
}

func (c *ConnectionParams) Validate() error {
	if c.Host == "" {
		return xerrors.New("host is required")
	}
	if c.Database == "" {
		return xerrors.New("database is required")
	}
	if c.User == "" {
		return xerrors.New("user is required")
	}
	return nil
}

// String renders the endpoint without credentials, for logs.
func (c *ConnectionParams) String() string {
	return fmt.Sprintf("%v:%v/%v", c.Host, c.Port, c.Database)
}
