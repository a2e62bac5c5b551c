package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/readmegen-lab/backend/internal/common"
	"github.com/readmegen-lab/backend/internal/middleware"
	"github.com/readmegen-lab/backend/pkg/router"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = context.Background()
	s.loadConfig()
	s.loadLogger()
	s.loadEngines()
	s.loadEndpoint()
	s.loadDatabase()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	if err := common.ValidateEnvironment(*s.configs); err != nil {
		return err
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.configs.Frontend.URL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", c.Handler(s.router.Handler()))

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: mux,
	}

	log.Printf("Starting server on port: %s\n", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// OAuth2 API. Session and cookies are written before the redirect,
	// http.Redirect flushes the headers.
	authRouter := s.router.Branch()
	authRouter.After(middleware.HandleSaveSession())
	authRouter.After(middleware.HandleSetCookies())
	authRouter.After(middleware.HandleRedirect())
	{
		router.GET(authRouter, "/auth/github", s.authDomain.Login)
		router.GET(authRouter, "/auth/github/callback", s.authDomain.Callback)
	}

	// These following APIs need authentication with Access Token.
	onlyTokenAuthRouter := s.router.Branch()
	onlyTokenAuthRouter.After(middleware.HandleSetCookies())
	authVerifier := middleware.NewAuthVerifier().WithAccessToken(s.userRepo)
	onlyTokenAuthRouter.Before(authVerifier.Middleware())
	{
		router.GET(onlyTokenAuthRouter, "/auth/status", s.authDomain.Status)
		router.POST(onlyTokenAuthRouter, "/auth/logout", s.authDomain.Logout)

		router.GET(onlyTokenAuthRouter, "/repos", s.repoDomain.GetMyRepositories)
	}
}
