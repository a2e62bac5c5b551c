package main

import (
	"context"
	"net/http"

	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/internal/domain"
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/readmegen-lab/backend/pkg/api/github"
	"github.com/readmegen-lab/backend/pkg/crypto"
	"github.com/readmegen-lab/backend/pkg/logger"
	"github.com/readmegen-lab/backend/pkg/router"
	"github.com/readmegen-lab/backend/pkg/session"
	"github.com/readmegen-lab/backend/pkg/token"
	"github.com/readmegen-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	userRepo repository.UserRepository

	githubEndpoint github.IEndpoint

	authDomain domain.AuthDomain
	repoDomain domain.RepoDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.INFO)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) newDatabase() *gorm.DB {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) loadEndpoint() {
	s.githubEndpoint = github.New(s.configs.Auth.GitHub)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository(
		crypto.NewTokenCipher(s.configs.Auth.TokenCipherSecret))
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo, s.githubEndpoint)
	s.repoDomain = domain.NewRepoDomain(s.userRepo, s.githubEndpoint)
}

func (s *srv) loadEngines() {
	s.ctx = xcontext.WithConfigs(s.ctx, *s.configs)
	s.ctx = xcontext.WithAccessTokenEngine(s.ctx, token.NewEngine(s.configs.Auth.AccessToken.Secret))
	s.ctx = xcontext.WithRefreshTokenEngine(s.ctx, token.NewEngine(s.configs.Auth.RefreshToken.Secret))
	s.ctx = xcontext.WithSessionStore(s.ctx,
		session.NewCookieStore(s.configs.Session.Name, []byte(s.configs.Session.Secret)))
}
