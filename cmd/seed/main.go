// Command seed fills the database with demo data for local development.
//
//	go run ./cmd/seed -users 20 -posts 200 -clean
//	go run ./cmd/seed -preset seed.yml
package main

import (
	"flag"
	"log"
	"os"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/seed"

	"gopkg.in/yaml.v3"
)

// preset mirrors seed.Options for the YAML preset file.
type preset struct {
	Users       int                 `yaml:"users"`
	Posts       int                 `yaml:"posts"`
	MaxComments int                 `yaml:"max_comments"`
	MaxDays     int                 `yaml:"max_days"`
	Clean       bool                `yaml:"clean"`
	Categories  []seed.CategorySpec `yaml:"categories"`
	Locations   []string            `yaml:"locations"`
}

func main() {
	users := flag.Int("users", 10, "number of users to create")
	posts := flag.Int("posts", 100, "number of posts to create")
	maxComments := flag.Int("max-comments", 5, "max comments per post")
	maxDays := flag.Int("max-days", 90, "spread of publication dates, in days back")
	clean := flag.Bool("clean", false, "delete existing data first")
	presetPath := flag.String("preset", "", "YAML preset file; overrides the numeric flags")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	opts := seed.Options{
		NumUsers:       *users,
		NumPosts:       *posts,
		MaxCommentsPer: *maxComments,
		MaxDays:        *maxDays,
		ShouldClean:    *clean,
	}

	if *presetPath != "" {
		data, err := os.ReadFile(*presetPath)
		if err != nil {
			log.Fatalf("Failed to read preset %s: %v", *presetPath, err)
		}
		var p preset
		if err := yaml.Unmarshal(data, &p); err != nil {
			log.Fatalf("Failed to parse preset %s: %v", *presetPath, err)
		}
		opts = seed.Options{
			NumUsers:       p.Users,
			NumPosts:       p.Posts,
			MaxCommentsPer: p.MaxComments,
			MaxDays:        p.MaxDays,
			ShouldClean:    p.Clean,
			Categories:     p.Categories,
			Locations:      p.Locations,
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
