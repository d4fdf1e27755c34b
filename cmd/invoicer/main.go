package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mmynk/invoicer/internal/app"
	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/console"
	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/server"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := apperr.HintOf(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicer",
		Usage: "create, store and send professional invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"INVOICER_CONFIG"},
			},
		},
		Action: menuAction,
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  "interactive menu (default)",
				Action: menuAction,
			},
			{
				Name:   "create",
				Usage:  "create an invoice interactively",
				Action: withConsole(func(ctx context.Context, c *console.Console, _ *cli.Context) error { return c.Create(ctx) }),
			},
			{
				Name:   "list",
				Usage:  "list stored invoices",
				Action: withConsole(func(ctx context.Context, c *console.Console, _ *cli.Context) error { return c.List(ctx) }),
			},
			{
				Name:      "show",
				Usage:     "print one invoice",
				ArgsUsage: "<invoice-number>",
				Action:    withNumber((*console.Console).Show),
			},
			{
				Name:      "delete",
				Usage:     "delete an invoice and its PDF",
				ArgsUsage: "<invoice-number>",
				Action:    withNumber((*console.Console).Delete),
			},
			{
				Name:      "pdf",
				Usage:     "regenerate the PDF of an invoice",
				ArgsUsage: "<invoice-number>",
				Action:    withNumber((*console.Console).PDF),
			},
			{
				Name:      "export",
				Usage:     "export one invoice to CSV",
				ArgsUsage: "<invoice-number>",
				Action:    withNumber((*console.Console).ExportCSV),
			},
			{
				Name:  "export-all",
				Usage: "export a summary of every invoice",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(export.FormatCSV), Usage: "csv or json"},
				},
				Action: withConsole(func(ctx context.Context, c *console.Console, cc *cli.Context) error {
					return c.ExportAll(ctx, export.Format(cc.String("format")))
				}),
			},
			{
				Name:      "email",
				Usage:     "send an invoice PDF by email",
				ArgsUsage: "<invoice-number>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "recipient address; prompted for when empty"},
					&cli.StringFlag{Name: "subject", Usage: "override the default subject"},
					&cli.StringFlag{Name: "body", Usage: "override the default message"},
				},
				Action: emailAction,
			},
			{
				Name:   "test-email",
				Usage:  "check the SMTP login",
				Action: withConsole(func(ctx context.Context, c *console.Console, _ *cli.Context) error { return c.TestEmail(ctx) }),
			},
			{
				Name:      "archive",
				Usage:     "upload an invoice record and PDF to object storage",
				ArgsUsage: "<invoice-number>",
				Action:    withNumber((*console.Console).Archive),
			},
			{
				Name:  "serve",
				Usage: "serve the RPC API and downloads over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "override server.port"},
				},
				Action: withApp("info", func(ctx context.Context, a *app.App, cc *cli.Context) error {
					cfg := a.Config.Server
					if cc.IsSet("port") {
						cfg.Port = cc.Int("port")
					}
					return server.Run(ctx, a.Manager, cfg)
				}),
			},
		},
	}
}

var menuAction = withConsole(func(ctx context.Context, c *console.Console, _ *cli.Context) error {
	return c.Menu(ctx)
})

// withApp loads the config, sets up logging and builds the app around fn.
// logLevel applies when neither the config nor LOG_LEVEL sets one.
func withApp(logLevel string, fn func(context.Context, *app.App, *cli.Context) error) cli.ActionFunc {
	return func(cc *cli.Context) error {
		cfg, err := config.Load(cc.String("config"))
		if err != nil {
			return err
		}
		logging.Configure(os.Stderr, cfg.Log.Format, cfg.Log.Level, logLevel)

		a, err := app.New(cc.Context, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Warn("Failed to close store", "error", err)
			}
		}()
		return fn(cc.Context, a, cc)
	}
}

func withConsole(fn func(context.Context, *console.Console, *cli.Context) error) cli.ActionFunc {
	return withApp("warn", func(ctx context.Context, a *app.App, cc *cli.Context) error {
		return fn(ctx, console.New(a.Manager, os.Stdin, os.Stdout), cc)
	})
}

func withNumber(fn func(*console.Console, context.Context, string) error) cli.ActionFunc {
	return withConsole(func(ctx context.Context, c *console.Console, cc *cli.Context) error {
		number := cc.Args().First()
		if number == "" {
			return fmt.Errorf("%s: invoice number argument is required", cc.Command.Name)
		}
		return fn(c, ctx, number)
	})
}

func emailAction(cc *cli.Context) error {
	if cc.String("to") == "" {
		return withNumber((*console.Console).Email)(cc)
	}
	return withApp("warn", func(ctx context.Context, a *app.App, cc *cli.Context) error {
		number := cc.Args().First()
		path, err := a.Manager.SendEmail(ctx, service.EmailInput{
			Number:  number,
			To:      cc.String("to"),
			Subject: cc.String("subject"),
			Body:    cc.String("body"),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Invoice %s sent to %s (%s).\n", number, cc.String("to"), path)
		return nil
	})(cc)
}
