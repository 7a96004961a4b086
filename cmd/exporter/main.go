package main

import (
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/alvaroquispe1998/email-generator/internal/app"
	"github.com/alvaroquispe1998/email-generator/internal/directory"
	"github.com/alvaroquispe1998/email-generator/internal/export"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var rosterPath = flag.String("roster", "", "Path to the student roster CSV")
	var dirPath = flag.String("directory", "", "Path to the directory snapshot CSV (optional)")
	var outDir = flag.String("out", ".", "Directory for exported chunk files")
	var profile = flag.String("profile", "default", "Preference profile to load and save")
	flag.Parse()

	if *rosterPath == "" {
		logger.Error.Fatalf("-roster is required")
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	data, err := os.ReadFile(*rosterPath)
	if err != nil {
		logger.Error.Fatalf("Failed to read roster: %v", err)
	}
	sheet, err := roster.Load(data)
	if err != nil {
		logger.Error.Fatalf("Failed to parse roster: %v", err)
	}

	sess := service.NewSession(sheet, *profile)

	if *dirPath != "" {
		sess = sess.WithDirectory(loadDirectory(*dirPath))
	}

	report := sess.Evaluate()

	logger.Info.Printf("Filas: %d | aptas: %d | duplicados omitidos: %d",
		len(report.Projected), len(report.Eligible), report.DuplicateTally)

	for _, inv := range report.Invalid {
		logger.Info.Printf("  fila %d: falta %s", inv.RowNumber, strings.Join(inv.MissingFields, ", "))
	}
	for _, m := range report.DNIMatches {
		logger.Info.Printf("  fila %d: DNI %s ya existe en el directorio (%s)", m.RowNumber, m.DNI, m.DisplayName)
	}
	for _, c := range report.Conflicts {
		logger.Info.Printf("  fila %d: %s -> %s (%s)", c.RowNumber, c.Generated, c.Effective, c.Status)
	}

	chunks, err := service.Batcher().Batch(report.Eligible)
	if err != nil {
		logger.Error.Fatalf("Failed to serialize export: %v", err)
	}
	if err := export.WriteDir(*outDir, chunks); err != nil {
		logger.Error.Fatalf("Failed to write export: %v", err)
	}
	for _, chunk := range chunks {
		logger.Info.Printf("Wrote %s", chunk.Name)
	}

	if err := service.SavePrefs(*profile, sess); err != nil {
		logger.Debug.Printf("Failed to persist prefs: %v", err)
	}
}

// loadDirectory degrades instead of failing: an unreadable file means no
// directory gating at all, missing columns disable only their own gate.
func loadDirectory(path string) *directory.Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error.Printf("Directory file unreadable, continuing without it: %v", err)
		return directory.Empty()
	}

	snap, err := directory.Load(data)
	var schemaErr *directory.SchemaError
	switch {
	case err == nil:
	case errors.As(err, &schemaErr):
		logger.Error.Printf("Directory loaded partially: %v", err)
	default:
		logger.Error.Printf("Directory unusable, continuing without it: %v", err)
	}
	return snap
}
