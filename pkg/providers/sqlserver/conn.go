package sqlserver

import (
	"fmt"
	"net/url"

	"github.com/sqlshift/sqlshift/pkg/abstract/model"
)

// ConnString renders the driver DSN. The password leaves SecretString only
// here.
func ConnString(params *model.ConnectionParams) string {
	query := url.Values{}
	query.Set("database", params.Database)
	if params.AppName != "" {
		query.Set("app name", params.AppName)
	}
	if params.Encrypt != "" {
		query.Set("encrypt", params.Encrypt)
	}
	if params.TrustServerCertificate {
		query.Set("trustservercertificate", "true")
	}
	dsn := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(params.User, string(params.Password)),
		Host:     fmt.Sprintf("%v:%v", params.Host, params.Port),
		RawQuery: query.Encode(),
	}
	return dsn.String()
}
