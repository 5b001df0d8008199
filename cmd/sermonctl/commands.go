package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/sermondex/internal/app"
	"github.com/kailas-cloud/sermondex/internal/domain/batch"
	"github.com/kailas-cloud/sermondex/internal/domain/bible"
	"github.com/kailas-cloud/sermondex/internal/domain/search/mode"
	"github.com/kailas-cloud/sermondex/internal/domain/search/request"
	"github.com/kailas-cloud/sermondex/internal/domain/search/result"
	"github.com/kailas-cloud/sermondex/internal/domain/transcript"
	"github.com/kailas-cloud/sermondex/internal/domain/video"
	bibleuc "github.com/kailas-cloud/sermondex/internal/usecase/bible"
	ingestuc "github.com/kailas-cloud/sermondex/internal/usecase/ingest"
)

// loadBatchSize is the number of verses sent per Load call.
const loadBatchSize = 500

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "service-type", Usage: "Only this service type (e.g. 주일예배)"},
		&cli.StringFlag{Name: "date-from", Usage: "Earliest service date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "date-to", Usage: "Latest service date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "video", Usage: "Only this video id"},
	}
}

func filtersFrom(c *cli.Context) request.Filters {
	return request.Filters{
		ServiceType: c.String("service-type"),
		DateFrom:    c.String("date-from"),
		DateTo:      c.String("date-to"),
		VideoID:     c.String("video"),
	}
}

func queryFrom(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", errors.New("a query argument is required")
	}
	return q, nil
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Ingest a transcript file (.srt or JSON segments)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "video", Aliases: []string{"v"}, Usage: "Video id", Required: true},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Video title, used to detect service type and date"},
			&cli.StringFlag{Name: "date", Usage: "Service date YYYY-MM-DD, overrides title detection"},
			&cli.StringFlag{Name: "service-type", Usage: "Service type, overrides title detection"},
			&cli.StringFlag{Name: "upload-date", Usage: "Upload date, last resort for the service date"},
			&cli.StringFlag{Name: "from", Usage: "Clip start (38:40, 1:14:40, 1시간 2분)"},
			&cli.StringFlag{Name: "to", Usage: "Clip end"},
			&cli.BoolFlag{Name: "correct", Usage: "Run LLM transcript correction first"},
		},
		Action: withApp(runIngest),
	}
}

func ingestInputFrom(c *cli.Context) (ingestuc.Input, error) {
	if c.NArg() != 1 {
		return ingestuc.Input{}, errors.New("exactly one transcript file is required")
	}
	segs, err := readSegments(c.Args().First())
	if err != nil {
		return ingestuc.Input{}, err
	}
	in := ingestuc.Input{
		Video: video.Metadata{
			VideoID:     c.String("video"),
			Title:       c.String("title"),
			ServiceType: c.String("service-type"),
			ServiceDate: c.String("date"),
			UploadDate:  c.String("upload-date"),
		},
		Segments: segs,
		Correct:  c.Bool("correct"),
	}
	if s := c.String("from"); s != "" {
		if in.From, err = transcript.ParseTimecode(s); err != nil {
			return ingestuc.Input{}, fmt.Errorf("--from: %w", err)
		}
	}
	if s := c.String("to"); s != "" {
		if in.To, err = transcript.ParseTimecode(s); err != nil {
			return ingestuc.Input{}, fmt.Errorf("--to: %w", err)
		}
	}
	return in, nil
}

func runIngest(ctx context.Context, c *cli.Context, a *app.App) error {
	in, err := ingestInputFrom(c)
	if err != nil {
		return err
	}
	rep, err := a.Ingest.Ingest(ctx, in)
	if err != nil {
		return err //nolint:wrapcheck // StageError names the stage
	}
	printReport(c.App.Writer, &rep)
	return nil
}

func printReport(w io.Writer, r *ingestuc.Report) {
	verb := "updated"
	if r.Created {
		verb = "created"
	}
	fmt.Fprintf(w, "%s %s: %d paragraphs, %d chunks, %d characters\n",
		verb, r.VideoID, r.Paragraphs, r.Chunks, r.Characters)
	fmt.Fprintf(w, "  embedding tokens %d, extraction failures %d, stale chunks removed %d, took %s\n",
		r.EmbeddingTokens, r.ExtractionFailures, r.StaleRemoved, r.Duration.Round(time.Millisecond))
}

func searchCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "hybrid, semantic or keyword", Value: string(mode.Hybrid)},
		&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Number of results", Value: request.DefaultSermonTopK},
	}, filterFlags()...)
	return &cli.Command{
		Name:      "search",
		Usage:     "Search sermon chunks",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.App) error {
			q, err := queryFrom(c)
			if err != nil {
				return err
			}
			req, err := request.New(request.Sermons, q, mode.Mode(c.String("mode")), filtersFrom(c), c.Int("top-k"))
			if err != nil {
				return err //nolint:wrapcheck // validation sentinel
			}
			res, err := a.Search.Search(ctx, &req)
			if err != nil {
				return err //nolint:wrapcheck // already wrapped by the service
			}
			printResults(c.App.Writer, res)
			return nil
		}),
	}
}

func bibleSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "bible-search",
		Usage:     "Search Bible verses",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "testament", Usage: "구약 or 신약"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "hybrid, semantic or keyword", Value: string(mode.Hybrid)},
			&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Number of results", Value: request.DefaultVerseTopK},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.App) error {
			q, err := queryFrom(c)
			if err != nil {
				return err
			}
			res, err := a.Bible.Search(ctx, q, c.String("testament"), mode.Mode(c.String("mode")), c.Int("top-k"))
			if err != nil {
				return err //nolint:wrapcheck // already wrapped by the service
			}
			printResults(c.App.Writer, res)
			return nil
		}),
	}
}

func printResults(w io.Writer, res []result.Result) {
	if len(res) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for i := range res {
		r := &res[i]
		fmt.Fprintf(w, "%2d. %s  rrf=%.4f vector=%.4f keyword=%.4f\n",
			i+1, r.ID(), r.RRFScore(), r.VectorScore(), r.KeywordScore())
		fmt.Fprintf(w, "    %s\n", snippet(r.Text(), 160))
	}
}

func snippet(s string, n int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}

func loadBibleCommand() *cli.Command {
	return &cli.Command{
		Name:      "load-bible",
		Usage:     "Load verses from a JSONL file, one {book, chapter, verse, text, testament} per line",
		ArgsUsage: "<file.jsonl>",
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.App) error {
			if c.NArg() != 1 {
				return errors.New("exactly one JSONL file is required")
			}
			f, err := os.Open(filepath.Clean(c.Args().First()))
			if err != nil {
				return fmt.Errorf("open verses: %w", err)
			}
			defer func() { _ = f.Close() }()

			verses, err := readVerses(f)
			if err != nil {
				return err
			}
			return loadVerses(ctx, c.App.Writer, a.Bible, verses)
		}),
	}
}

type verseLoader interface {
	Load(ctx context.Context, verses []bible.Verse) ([]batch.Result, error)
}

// loadVerses sends verses in batches and prints failures with a summary.
func loadVerses(ctx context.Context, w io.Writer, svc verseLoader, verses []bible.Verse) error {
	var total batch.Summary
	for start := 0; start < len(verses); start += loadBatchSize {
		end := min(start+loadBatchSize, len(verses))
		results, err := svc.Load(ctx, verses[start:end])
		if err != nil {
			return fmt.Errorf("verses %d-%d: %w", start+1, end, err)
		}
		for _, r := range results {
			if r.Err() != nil {
				fmt.Fprintf(w, "failed %s: %v\n", r.ID(), r.Err())
			}
		}
		s := batch.Summarize(results)
		total.Succeeded += s.Succeeded
		total.Failed += s.Failed
	}
	fmt.Fprintf(w, "loaded %d verses, %d failed\n", total.Succeeded, total.Failed)
	return nil
}

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a question from sermon content",
		ArgsUsage: "<question>",
		Flags:     filterFlags(),
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.App) error {
			if a.Answer == nil {
				return errors.New("ask needs at least one llm provider in the config")
			}
			q, err := queryFrom(c)
			if err != nil {
				return err
			}
			ans, err := a.Answer.Ask(ctx, q, filtersFrom(c))
			if err != nil {
				return err //nolint:wrapcheck // already wrapped by the service
			}
			fmt.Fprintln(c.App.Writer, ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Fprintln(c.App.Writer, "\nsources:")
				for i := range ans.Sources {
					fmt.Fprintf(c.App.Writer, "  [%d] %s\n", i+1, ans.Sources[i].ID())
				}
			}
			return nil
		}),
	}
}

func initIndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-index",
		Usage: "Create the chunk and verse indexes when missing",
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.App) error {
			if err := a.EnsureIndexes(ctx); err != nil {
				return err //nolint:wrapcheck // already wrapped
			}
			fmt.Fprintf(c.App.Writer, "indexes ready under %q\n", a.Keys.Prefix())
			return nil
		}),
	}
}

var _ verseLoader = (*bibleuc.Service)(nil)
