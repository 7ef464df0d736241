// seed_custodians asigna responsables de inventario a proyectos a partir de un CSV separado por ';'
// con columnas project_id;user_id (encabezado opcional). Acepta UTF-8 o ISO-8859-1 (exportes de Excel).
//
// Uso: go run ./cmd/seed_custodians [-latin1] ruta/custodios.csv
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/ledger"
	"github.com/jhoicas/Obras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_custodians [-latin1] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "seed_custodians"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	assignments, err := readAssignments(in)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	svc := ledger.NewService(postgres.NewTxRunner(pool), postgres.Repositories(pool), ledger.Options{
		TxTimeout: cfg.Ledger.TxTimeout(),
		Logger:    log.Zerolog(),
	})

	projectIDs := make([]string, 0, len(assignments))
	for id := range assignments {
		projectIDs = append(projectIDs, id)
	}
	sort.Strings(projectIDs)

	failed := 0
	for _, projectID := range projectIDs {
		if err := svc.AssignCustodians(ctx, projectID, assignments[projectID]); err != nil {
			failed++
			log.Error().Err(err).Str("project_id", projectID).Msg("asignación rechazada")
		}
	}
	log.Info().Int("projects", len(projectIDs)).Int("failed", failed).Msg("carga terminada")
	if failed > 0 {
		os.Exit(1)
	}
}

// readAssignments agrupa user_ids por project_id. Ignora líneas vacías y el encabezado.
func readAssignments(r io.Reader) (map[string][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := map[string][]string{}
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperaban project_id;user_id", line)
		}
		projectID := strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff"))
		userID := strings.TrimSpace(rec[1])
		if line == 1 && strings.EqualFold(projectID, "project_id") {
			continue
		}
		if projectID == "" || userID == "" {
			continue
		}
		out[projectID] = append(out[projectID], userID)
	}
	return out, nil
}
