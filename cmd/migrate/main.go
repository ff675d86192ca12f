// migrate aplica las migraciones SQL embebidas en internal/infrastructure/postgres/migrations.
//
// Uso: go run ./cmd/migrate          aplica las pendientes
//
//	go run ./cmd/migrate -list    solo lista las versiones embebidas
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/jhoicas/Taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Taller-api/pkg/config"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "listar migraciones embebidas sin aplicar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if *list {
		ms, err := postgres.Migrations()
		if err != nil {
			log.Fatal().Err(err).Msg("leer migraciones")
		}
		for _, m := range ms {
			fmt.Println(m.Version)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Strs("aplicadas", applied).Msg("migración fallida")
	}
	log.Info().Int("aplicadas", len(applied)).Msg("esquema al día")
}
