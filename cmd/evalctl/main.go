package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goversion "github.com/caarlos0/go-version"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"

	"evalportal/internal/app/server"
	"evalportal/internal/domain/performance"
	"evalportal/internal/domain/reports"
	"evalportal/internal/platform/config"
	"evalportal/internal/platform/db"
	"evalportal/internal/platform/events"
	"evalportal/internal/platform/jobs"
	"evalportal/internal/platform/sheets"
)

var (
	version   = "dev"
	commit    = ""
	date      = ""
	builtBy   = ""
	treeState = ""
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "evalctl",
		Usage: "Operator commands for the evaluation portal",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
			expireCyclesCommand(),
			importCommand(),
			scoreCommand(),
			exportCommand(),
			tokenCommand(),
			versionCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.Run(ctx, args); err != nil {
		slog.Error("evalctl failed", "err", err)
		os.Exit(1)
	}
}

// withServices opens the database without migrating or seeding and hands the
// wired services to fn.
func withServices(ctx context.Context, fn func(ctx context.Context, cfg config.Config, services server.Services) error) error {
	cfg := config.Load()
	cfg.RunMigrations = false
	cfg.RunSeed = false
	if err := cfg.Validate(); err != nil {
		return err
	}
	pool, err := server.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher := events.New(cfg.KafkaBroker, cfg.KafkaTopic)
	if closer, ok := publisher.(*events.KafkaPublisher); ok {
		defer closer.Close()
	}
	return fn(ctx, cfg, server.NewServices(cfg, pool, publisher))
}

func withPool(ctx context.Context, fn func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, c *cli.Command) error {
			return server.Run()
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPool(ctx, func(ctx context.Context, _ config.Config, pool *pgxpool.Pool) error {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
				slog.Info("migrations applied")
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert feedback types and the bootstrap administrator",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPool(ctx, func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				if err := db.Seed(ctx, pool, cfg); err != nil {
					return err
				}
				slog.Info("seed data applied")
				return nil
			})
		},
	}
}

func expireCyclesCommand() *cli.Command {
	return &cli.Command{
		Name:  "expire-cycles",
		Usage: "Close active cycles whose end date has passed",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withServices(ctx, func(ctx context.Context, _ config.Config, services server.Services) error {
				run, ok := services.Jobs.Scheduled(jobs.JobCycleExpiry)
				if !ok {
					ids, err := services.Performance.ExpireCycles(ctx)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"closed": ids})
				}
				details, err := services.Jobs.RunNow(ctx, jobs.JobCycleExpiry, run)
				if err != nil {
					return err
				}
				return printJSON(details)
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Bulk import scores into the active cycle from a .csv or .xlsx file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the score file"},
			&cli.StringFlag{Name: "importer", Required: true, Usage: "email of the employee recorded as evaluator"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.String("file")
			format, err := sheets.FormatFromFilename(path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := sheets.ReadImportRows(f, format)
			if err != nil {
				return err
			}

			return withServices(ctx, func(ctx context.Context, _ config.Config, services server.Services) error {
				creds, err := services.Credentials.FindActiveByEmail(ctx, c.String("importer"))
				if err != nil {
					return fmt.Errorf("importer %q: %w", c.String("importer"), err)
				}
				report, err := services.Jobs.RunNow(ctx, jobs.JobScoreImport, func(ctx context.Context) (any, error) {
					return services.Performance.ImportScores(ctx, creds.EmployeeID, performance.ImportRowsFromSheet(rows))
				})
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Record or correct one score in the active cycle",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "employee", Required: true, Usage: "email of the evaluated employee"},
			&cli.StringFlag{Name: "metric", Required: true, Usage: "metric id"},
			&cli.FloatFlag{Name: "score", Required: true},
			&cli.StringFlag{Name: "comment"},
			&cli.StringFlag{Name: "evaluator", Required: true, Usage: "email of the employee recorded as evaluator"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withServices(ctx, func(ctx context.Context, _ config.Config, services server.Services) error {
				employee, err := services.Credentials.FindActiveByEmail(ctx, c.String("employee"))
				if err != nil {
					return fmt.Errorf("employee %q: %w", c.String("employee"), err)
				}
				evaluator, err := services.Credentials.FindActiveByEmail(ctx, c.String("evaluator"))
				if err != nil {
					return fmt.Errorf("evaluator %q: %w", c.String("evaluator"), err)
				}
				entry := performance.ScoreEntry{
					MetricID: c.String("metric"),
					Score:    c.Float("score"),
					Comment:  c.String("comment"),
				}
				if err := services.Performance.SubmitScore(ctx, employee.EmployeeID, "", evaluator.EmployeeID, entry); err != nil {
					return err
				}
				slog.Info("score recorded", "employeeId", employee.EmployeeID, "metricId", entry.MetricID, "score", entry.Score)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Render a cycle report to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: string(reports.ExportAll), Usage: "all, above_avg, below_avg or by_department"},
			&cli.StringFlag{Name: "format", Value: string(reports.FormatPDF), Usage: "pdf, csv or xlsx"},
			&cli.StringFlag{Name: "department", Usage: "department id for by_department"},
			&cli.StringFlag{Name: "cycle", Usage: "cycle id, defaults to the active cycle"},
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to the generated file name"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			format, err := reports.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			return withServices(ctx, func(ctx context.Context, _ config.Config, services server.Services) error {
				report, err := services.Reports.Export(ctx, reports.ExportRequest{
					Kind:         reports.ExportKind(c.String("kind")),
					DepartmentID: c.String("department"),
					CycleID:      c.String("cycle"),
				})
				if err != nil {
					return err
				}
				out := c.String("out")
				if out == "" {
					out = report.Filename(format)
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := reports.Render(f, format, report); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				slog.Info("report written", "path", out, "rows", len(report.Rows))
				return nil
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue an API token for an active employee",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withServices(ctx, func(ctx context.Context, _ config.Config, services server.Services) error {
				creds, err := services.Credentials.FindActiveByEmail(ctx, c.String("email"))
				if err != nil {
					return fmt.Errorf("employee %q: %w", c.String("email"), err)
				}
				session, err := services.Auth.Issue(creds.EmployeeID, creds.Role, creds.DepartmentID)
				if err != nil {
					return err
				}
				return printJSON(session)
			})
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Println(buildVersion().String())
			return nil
		},
	}
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("evalctl", "Employee evaluation portal tooling", ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
