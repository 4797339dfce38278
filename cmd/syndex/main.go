// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/syndex"
	"github.com/poiesic/syndex/ai"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/index"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "syndex",
		Usage: "Privacy-preserving federated search across knowledge silos",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Build the federated index from a silo corpus file",
				Action: indexCommand,
				Flags:  append(storageFlags(), embeddingFlags()...),
			},
			{
				Name:   "query",
				Usage:  "Index a corpus and route a federated query against it",
				Action: queryCommand,
				Flags: append(
					append(storageFlags(), embeddingFlags()...),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Querying user ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "org",
						Usage:    "Organization the user belongs to",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "team",
						Usage: "Team the user belongs to (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "access-level",
						Usage: "Classification level granted to the user (public, internal, confidential, restricted; repeatable)",
						Value: cli.NewStringSlice("internal"),
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of globally ranked results",
						Value: core.DefaultMaxResults,
					},
					&cli.Float64Flag{
						Name:  "query-budget",
						Usage: "Privacy budget (epsilon) spent on this query",
						Value: core.DefaultPrivacyBudget,
					},
				),
			},
			{
				Name:   "silos",
				Usage:  "List persisted silo registrations",
				Action: silosCommand,
				Flags:  storageFlags(),
			},
			{
				Name:   "audit",
				Usage:  "Print the newest persisted access-audit records",
				Action: auditCommand,
				Flags: append(
					storageFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to print",
						Value: 20,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "corpus",
			Aliases:  []string{"c"},
			Usage:    "Path to JSON silo corpus file",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:     "embedding-model",
			Usage:    "Embedding model name",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "budget",
			Usage: "Global privacy budget (epsilon)",
			Value: 10.0,
		},
	}
}

// corpusFile is the on-disk description of silos and their documents.
type corpusFile struct {
	Silos []corpusSilo `json:"silos"`
}

type corpusSilo struct {
	SiloID             string           `json:"silo_id"`
	Name               string           `json:"name"`
	SiloType           string           `json:"silo_type"`
	OrganizationID     string           `json:"organization_id"`
	TeamID             string           `json:"team_id"`
	DataClassification string           `json:"data_classification"`
	EmbeddingDimension int              `json:"embedding_dimension,omitempty"`
	PublicWithinOrg    bool             `json:"public_within_org"`
	AllowedTeams       []string         `json:"allowed_teams,omitempty"`
	Documents          []corpusDocument `json:"documents"`
}

// defaultCorpusDimension stands in when the corpus file does not declare a
// dimension. The indexer replaces it with the model's measured output width
// after the first embedding batch.
const defaultCorpusDimension = 768

type corpusDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// loadCorpus parses the corpus file into silo metadata plus a document
// source the indexer can retrieve from.
func loadCorpus(path string) ([]*core.SiloMetadata, *index.StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var corpus corpusFile
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, nil, fmt.Errorf("parsing corpus file: %w", err)
	}
	if len(corpus.Silos) == 0 {
		return nil, nil, fmt.Errorf("corpus file %s contains no silos", path)
	}

	source := index.NewStaticSource()
	silos := make([]*core.SiloMetadata, 0, len(corpus.Silos))
	for _, entry := range corpus.Silos {
		classification, err := core.ParseAccessLevel(entry.DataClassification)
		if err != nil {
			return nil, nil, fmt.Errorf("silo %q: classification %q: %w",
				entry.SiloID, entry.DataClassification, err)
		}

		dimension := entry.EmbeddingDimension
		if dimension <= 0 {
			dimension = defaultCorpusDimension
		}

		silo := &core.SiloMetadata{
			SiloID:             entry.SiloID,
			Name:               entry.Name,
			SiloType:           core.SiloType(entry.SiloType),
			OrganizationID:     entry.OrganizationID,
			TeamID:             entry.TeamID,
			DataClassification: classification,
			EmbeddingDimension: dimension,
			AccessRules: core.AccessRules{
				PublicWithinOrg: entry.PublicWithinOrg,
				AllowedTeams:    entry.AllowedTeams,
			},
		}
		if err := core.ValidateSiloMetadata(silo); err != nil {
			return nil, nil, fmt.Errorf("silo %q: %w", entry.SiloID, err)
		}

		docs := make([]core.Document, 0, len(entry.Documents))
		for _, doc := range entry.Documents {
			docs = append(docs, core.Document{
				ID:       doc.ID,
				Content:  doc.Content,
				Metadata: doc.Metadata,
			})
		}
		source.AddDocuments(entry.SiloID, docs...)

		silos = append(silos, silo)
	}
	return silos, source, nil
}

func openSystem(c *cli.Context, source index.DocumentSource) (*syndex.System, error) {
	opts := []syndex.SystemOption{
		syndex.WithGlobalPrivacyBudget(c.Float64("budget")),
	}
	if source != nil {
		opts = append(opts, syndex.WithDocumentSource(source))
	}
	if c.IsSet("embedding-model") {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, syndex.WithAIConfig(aiConfig))
	}

	system, err := syndex.NewSystem(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("opening system: %w", err)
	}
	return system, nil
}

func buildIndex(ctx context.Context, c *cli.Context, system *syndex.System, silos []*core.SiloMetadata) error {
	summary, jobs := system.BuildGlobalIndex(ctx, silos)

	for _, job := range jobs {
		if job.Status == core.JobStatusFailed {
			fmt.Fprintf(os.Stderr, "silo %s failed: %s\n", job.SiloID, job.ErrorMessage)
		}
	}
	fmt.Fprintf(os.Stderr, "Indexed %d/%d silos (dimension %d, budget used %.3f)\n",
		summary.IndexedSilos, summary.TotalSilos,
		summary.EmbeddingDimension, summary.PrivacyBudgetUsed)

	if summary.IndexedSilos == 0 {
		return fmt.Errorf("no silos indexed")
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	silos, source, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}

	system, err := openSystem(c, source)
	if err != nil {
		return err
	}
	defer system.Close()

	return buildIndex(ctx, c, system, silos)
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	silos, source, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}

	system, err := openSystem(c, source)
	if err != nil {
		return err
	}
	defer system.Close()

	// The vector index is in-process state, so a query run always
	// rebuilds it from the corpus before routing.
	if err := buildIndex(ctx, c, system, silos); err != nil {
		return err
	}

	levels := make([]core.AccessLevel, 0, len(c.StringSlice("access-level")))
	for _, name := range c.StringSlice("access-level") {
		level, err := core.ParseAccessLevel(strings.ToLower(name))
		if err != nil {
			return fmt.Errorf("access level %q: %w", name, err)
		}
		levels = append(levels, level)
	}

	user := &core.UserContext{
		UserID:         c.String("user"),
		OrganizationID: c.String("org"),
		TeamIDs:        c.StringSlice("team"),
		AccessLevels:   levels,
	}

	results, err := system.Query(ctx, &core.QueryRequest{
		Query:         c.String("query"),
		User:          user,
		MaxResults:    c.Int("max-results"),
		PrivacyBudget: c.Float64("query-budget"),
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
	}
	for n, result := range results {
		fmt.Printf("%d. [%.3f] %s (%s / %s)\n", n+1,
			result.RelevanceScore, result.Source.Silo,
			result.Source.Team, result.Source.Organization)
		fmt.Printf("   %s\n", result.Content)
	}

	report := system.PrivacyReport()
	fmt.Fprintf(os.Stderr, "\nPrivacy budget: %.3f used of %.3f (%.1f%%)\n",
		report.UsedBudget, report.GlobalBudget, report.UsagePercent)

	return nil
}

func silosCommand(c *cli.Context) error {
	system, err := openSystem(c, nil)
	if err != nil {
		return err
	}
	defer system.Close()

	silos, err := system.ListSilos(context.Background())
	if err != nil {
		return fmt.Errorf("listing silos: %w", err)
	}

	if len(silos) == 0 {
		fmt.Println("No silos registered.")
		return nil
	}
	for _, silo := range silos {
		fmt.Printf("%s  %-24s %-12s %s/%s  docs=%d  indexed=%s\n",
			silo.SiloID, silo.Name, silo.DataClassification,
			silo.OrganizationID, silo.TeamID, silo.DocumentCount,
			silo.LastIndexed.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func auditCommand(c *cli.Context) error {
	system, err := openSystem(c, nil)
	if err != nil {
		return err
	}
	defer system.Close()

	records, err := system.RecentAccess(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("reading audit log: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No access records.")
		return nil
	}
	for _, record := range records {
		verdict := "DENY"
		if record.Granted {
			verdict = "GRANT"
		}
		fmt.Printf("%s  %-5s user=%s silo=%s reason=%s\n",
			record.Timestamp.Format("2006-01-02 15:04:05"),
			verdict, record.UserID, record.SiloID, record.Reason)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
