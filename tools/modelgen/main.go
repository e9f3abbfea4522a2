// Command modelgen regenerates the gorm models of the game tables from a
// migrated postgres database. Hand-written conversions in the model package
// (convert.go) are left alone.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
	"gorm.io/gorm"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("SKIRMISH_DB_DSN"), "postgres dsn (default $SKIRMISH_DB_DSN)")
	out := flag.String("out", "internal/adapter/repo/gorm/model", "output dir for generated models")
	list := flag.String("tables", "games,action_log", "comma separated tables to generate")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("modelgen: missing -dsn or SKIRMISH_DB_DSN")
	}
	tables := splitTables(*list)
	if len(tables) == 0 {
		log.Fatal("modelgen: no tables")
	}

	db, err := gorm.Open(postgres.Open(*dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("modelgen: open postgres: %v", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           *out,
		ModelPkgPath:      "model",
		Mode:              gen.WithoutContext,
		FieldWithTypeTag:  true,
		FieldWithIndexTag: true,
	})
	g.UseDB(db)
	for _, table := range tables {
		g.GenerateModel(table)
	}
	g.Execute()
	log.Printf("modelgen: generated %s into %s", strings.Join(tables, ","), *out)
}

func splitTables(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
