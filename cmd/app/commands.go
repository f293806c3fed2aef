package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/newsdesk/internal"
	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/newsletter"
	pkgconfig "github.com/starford/newsdesk/pkg/config"
)

var stdout io.Writer = os.Stdout

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "create",
			Usage:  "Write a fresh template, replacing the document",
			Action: withApp(create),
		},
		{
			Name:   "show",
			Usage:  "Print the document",
			Action: withApp(show),
		},
		{
			Name:   "sections",
			Usage:  "List the sections found in the document",
			Flags:  []cli.Flag{jsonFlag()},
			Action: withApp(sections),
		},
		updateCommand("update-news", "Replace News with the latest blog entries", (*newsletter.Service).UpdateNews),
		{
			Name:  "preview-news",
			Usage: "Print the latest blog entries without writing",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of entries (0 uses the configured preview limit)"},
			},
			Action: withApp(previewNews),
		},
		{
			Name:      "add-release",
			Usage:     "Add one release to the top of Recent Enterprise Releases",
			ArgsUsage: "<date> <summary...>",
			Action:    withApp(addRelease),
		},
		updateCommand("update-releases", "Prepend recent enterprise releases from the calendar", (*newsletter.Service).UpdateReleases),
		updateCommand("update-upcoming", "Replace Releases coming soon from the calendar", (*newsletter.Service).UpdateUpcoming),
		updateCommand("update-videos", "Replace Videos with the latest channel uploads", (*newsletter.Service).UpdateVideos),
		updateCommand("update-demos", "Replace Demos with the organization's demo repositories", (*newsletter.Service).UpdateDemos),
		{
			Name:   "update-all",
			Usage:  "Refresh every section; failing sources are reported and skipped",
			Action: withApp(updateAll),
		},
		{
			Name:  "history",
			Usage: "Show recent patches recorded in the ledger",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
				jsonFlag(),
			},
			Action: withApp(history),
		},
		{
			Name:   "serve",
			Usage:  "Serve the HTTP API, live events and the scheduled refresh",
			Action: serve,
		},
		{
			Name:   "mcp",
			Usage:  "Serve MCP tools over stdio",
			Action: serveMCP,
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print JSON"}
}

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	opts := []internal.Option{internal.WithConfig(cfg), internal.WithVersion(version)}
	if f := cmd.String("file"); f != "" {
		opts = append(opts, internal.WithFile(f))
	}
	return opts, nil
}

type appAction func(ctx context.Context, cmd *cli.Command, a *internal.App) error

func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		a, err := internal.Open(opts...)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(newsletter.WithOrigin(ctx, newsletter.OriginCLI), cmd, a)
	}
}

type updateFunc func(*newsletter.Service, context.Context, string) (*document.Result, error)

func updateCommand(name, usage string, fn updateFunc) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *internal.App) error {
			res, err := fn(a.Service, ctx, a.File)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		}),
	}
}

func printResult(res *document.Result) {
	state := "unchanged"
	switch {
	case res.Bootstrapped:
		state = "created document"
	case res.Created:
		state = "added section"
	case res.Changed:
		state = "updated"
	}
	fmt.Fprintf(stdout, "%s: %d rendered, %d skipped (%s)\n", res.Section, res.Rendered, res.Skipped, state)
}

func create(ctx context.Context, _ *cli.Command, a *internal.App) error {
	if err := a.Service.Create(ctx, a.File); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created %s\n", a.File)
	return nil
}

func show(ctx context.Context, _ *cli.Command, a *internal.App) error {
	text, err := a.Service.Show(ctx, a.File)
	if err != nil {
		return fmt.Errorf("%s: %w", a.File, err)
	}
	_, err = io.WriteString(stdout, text)
	return err
}

func sections(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	outline, err := a.Service.Sections(ctx, a.File)
	if err != nil {
		return fmt.Errorf("%s: %w", a.File, err)
	}
	if cmd.Bool("json") {
		return printJSON(outline)
	}
	if outline.Title != "" {
		fmt.Fprintf(stdout, "# %s\n", outline.Title)
	}
	for _, n := range outline.Sections {
		lines := 0
		if n.Body != "" {
			lines = strings.Count(n.Body, "\n")
		}
		legacy := ""
		if n.Legacy {
			legacy = " (legacy heading)"
		}
		fmt.Fprintf(stdout, "%-28s %3d lines%s\n", n.Name, lines, legacy)
	}
	for _, m := range outline.Missing {
		fmt.Fprintf(stdout, "%-28s missing\n", m)
	}
	return nil
}

func previewNews(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	body, err := a.Service.PreviewNews(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if body == "" {
		fmt.Fprintln(stdout, "no news entries")
		return nil
	}
	_, err = io.WriteString(stdout, body)
	return err
}

func addRelease(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return errors.New("add-release: usage: add-release <date> <summary...>")
	}
	date := args.First()
	summary := strings.Join(args.Tail(), " ")
	res, err := a.Service.AddRelease(ctx, a.File, date, summary)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func updateAll(ctx context.Context, _ *cli.Command, a *internal.App) error {
	outcomes, err := a.Service.UpdateAll(ctx, a.File)
	for _, o := range outcomes {
		if o.Error != "" {
			fmt.Fprintf(stdout, "%s: failed: %s\n", o.Section, o.Error)
			continue
		}
		printResult(o.Result)
	}
	if err != nil {
		return errors.New("update-all: one or more sections failed")
	}
	return nil
}

func history(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	entries, err := a.Service.History(ctx, a.File, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(entries)
	}
	for _, e := range entries {
		section := e.Section
		if section == "" {
			section = "(template)"
		}
		fmt.Fprintf(stdout, "%s  %-9s %-28s changed=%t rendered=%d skipped=%d\n",
			e.PatchedAt.Local().Format("2006-01-02 15:04:05"), e.Origin, section, e.Changed, e.Rendered, e.Skipped)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}
