package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Session   SessionConfigs
	Frontend  FrontendConfigs
}

// IsProduction reports whether cookies must carry cross-site attributes.
func (c Configs) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type SessionConfigs struct {
	Secret string
	Name   string
}

type AuthConfigs struct {
	AccessToken  TokenConfigs
	RefreshToken TokenConfigs

	// TokenCipherSecret keys the at-rest encryption of provider access
	// tokens.
	TokenCipherSecret string

	GitHub OAuth2Configs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type OAuth2Configs struct {
	Name         string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
}

type FrontendConfigs struct {
	// URL is the public origin the browser is redirected back to after
	// the oauth flow. Must be https in production, cross-site cookies
	// are rejected otherwise.
	URL string

	LoginPath     string
	DashboardPath string
}

func (f FrontendConfigs) LoginURL() string {
	return f.URL + f.LoginPath
}

func (f FrontendConfigs) DashboardURL() string {
	return f.URL + f.DashboardPath
}
