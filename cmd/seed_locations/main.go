// seed_locations siembra el catálogo de ubicaciones de Panamá (provincias,
// distritos y corregimientos) a partir del CSV oficial de la DGI, cuyos
// archivos históricos vienen codificados en ISO-8859-1.
//
// Formato esperado (6 columnas, con encabezado):
//
//	provincia_code,provincia_name,distrito_code,distrito_name,corregimiento_code,corregimiento_name
//
// Uso: go run ./cmd/seed_locations [ruta/ubicaciones.csv]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/facturapan/fehka-api/internal/domain/entity"
	"github.com/facturapan/fehka-api/internal/infrastructure/postgres"
	"github.com/facturapan/fehka-api/pkg/config"
	"github.com/facturapan/fehka-api/pkg/logger"
)

func main() {
	csvPath := "ubicaciones.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repo := postgres.NewLocationRepository(pool)

	// El catálogo histórico viene en ISO-8859-1; lo transcodificamos a UTF-8.
	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = 6

	// IDs canónicos ya sembrados en esta corrida, por código.
	provincias := make(map[string]string)
	distritos := make(map[string]string)

	var rows, skipped int
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Int("row", rows+1).Msg("leer CSV")
		}
		if header {
			header = false
			continue
		}
		rows++

		provCode, provName := clean(record[0]), clean(record[1])
		distCode, distName := clean(record[2]), clean(record[3])
		corrCode, corrName := clean(record[4]), clean(record[5])
		if provCode == "" || distCode == "" || corrCode == "" {
			skipped++
			continue
		}

		provID, ok := provincias[provCode]
		if !ok {
			p := &entity.Provincia{Code: provCode, Name: provName}
			if err := repo.UpsertProvincia(ctx, p); err != nil {
				log.Fatal().Err(err).Str("provincia", provCode).Msg("sembrar provincia")
			}
			provID = p.ID
			provincias[provCode] = provID
		}

		distKey := provCode + "-" + distCode
		distID, ok := distritos[distKey]
		if !ok {
			d := &entity.Distrito{ProvinciaID: provID, Code: distCode, Name: distName}
			if err := repo.UpsertDistrito(ctx, d); err != nil {
				log.Fatal().Err(err).Str("distrito", distKey).Msg("sembrar distrito")
			}
			distID = d.ID
			distritos[distKey] = distID
		}

		c := &entity.Corregimiento{DistritoID: distID, Code: corrCode, Name: corrName}
		if err := repo.UpsertCorregimiento(ctx, c); err != nil {
			log.Fatal().Err(err).Str("corregimiento", distKey+"-"+corrCode).Msg("sembrar corregimiento")
		}
	}

	log.Info().
		Int("rows", rows).
		Int("skipped", skipped).
		Int("provincias", len(provincias)).
		Int("distritos", len(distritos)).
		Msg("catálogo de ubicaciones sembrado")
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
