package main

import (
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.loadConfig()
	return repository.Migrate(s.configs.Database.ConnectionString())
}
