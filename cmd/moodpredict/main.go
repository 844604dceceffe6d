// Command moodpredict trains and applies the tag-to-mood prediction
// model: train a bundle from a CSV catalog, predict and analyze
// playlists, compare them, or serve the model over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/moodlens/go-tag-mood-predictor/internal/dataset"
	"github.com/moodlens/go-tag-mood-predictor/internal/db"
	"github.com/moodlens/go-tag-mood-predictor/internal/engine"
	"github.com/moodlens/go-tag-mood-predictor/internal/lastfm"
	"github.com/moodlens/go-tag-mood-predictor/internal/mood"
	"github.com/moodlens/go-tag-mood-predictor/internal/pipeline"
	"github.com/moodlens/go-tag-mood-predictor/internal/regress"
	"github.com/moodlens/go-tag-mood-predictor/internal/spotify"
	"github.com/moodlens/go-tag-mood-predictor/internal/web"
)

const usage = `Usage: moodpredict <command> [flags]

Commands:
  train     train a model bundle from a CSV catalog
  predict   predict attribute values for a CSV of tagged tracks
  analyze   summarize a playlist's mood profile
  compare   compare the mood profiles of two playlists
  import    import a Spotify playlist, tag it, predict, and store
  serve     serve the prediction API over HTTP

Run 'moodpredict <command> -h' for command flags.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	switch cmd := args[0]; cmd {
	case "train":
		return runTrain(args[1:], log)
	case "predict":
		return runPredict(args[1:], log)
	case "analyze":
		return runAnalyze(args[1:])
	case "compare":
		return runCompare(args[1:])
	case "import":
		return runImport(args[1:], log)
	case "serve":
		return runServe(args[1:], log)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runTrain(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	dataPath := fs.String("data", "", "training CSV with tags and target columns (required)")
	outPath := fs.String("out", "model.json", "output bundle path")
	attrList := fs.String("attrs", strings.Join(engine.DefaultAttributes, ","), "comma-separated target attributes")
	vocabSize := fs.Int("vocab", 0, "vocabulary size bound (0 = default)")
	def := regress.DefaultConfig()
	trees := fs.Int("trees", def.Trees, "trees per attribute")
	depth := fs.Int("depth", def.MaxDepth, "maximum tree depth")
	minLeaf := fs.Int("min-leaf", def.MinLeaf, "minimum samples per leaf")
	seed := fs.Int64("seed", def.Seed, "training seed")
	fs.Parse(args)

	if *dataPath == "" {
		return fmt.Errorf("-data is required")
	}

	table, err := readTable(*dataPath)
	if err != nil {
		return err
	}

	cfg := engine.Config{
		Attributes: splitAttrs(*attrList),
		VocabSize:  *vocabSize,
		Forest: regress.Config{
			Trees:    *trees,
			MaxDepth: *depth,
			MinLeaf:  *minLeaf,
			Seed:     *seed,
		},
	}

	log.Info().Int("rows", len(table.Rows)).Strs("attributes", cfg.Attributes).Msg("training model")

	eng, report, err := engine.Train(table, cfg)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}

	for _, m := range report.PerAttribute {
		log.Info().Str("attribute", m.Name).Float64("r2", m.R2).Float64("mae", m.MAE).Msg("holdout metrics")
	}
	log.Info().
		Float64("overall_r2", report.OverallR2).
		Int("train_rows", report.TrainRows).
		Int("test_rows", report.TestRows).
		Msg("evaluation complete")

	if err := eng.Save(*outPath); err != nil {
		return fmt.Errorf("saving bundle: %w", err)
	}
	log.Info().Str("path", *outPath).Msg("bundle saved")
	return nil
}

func runPredict(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "trained bundle path")
	dataPath := fs.String("data", "", "CSV of tracks with a tags column (required)")
	outPath := fs.String("out", "", "output CSV path (default: stdout)")
	fs.Parse(args)

	if *dataPath == "" {
		return fmt.Errorf("-data is required")
	}

	eng, err := engine.Open(*modelPath)
	if err != nil {
		return err
	}

	table, err := readTable(*dataPath)
	if err != nil {
		return err
	}

	eng.PredictTable(table)
	log.Info().Int("rows", len(table.Rows)).Msg("predictions computed")

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return dataset.WriteCSV(out, table, eng.Attributes())
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "trained bundle path")
	dataPath := fs.String("data", "", "CSV of tracks with a tags column (required)")
	name := fs.String("name", "Playlist", "playlist title for the report")
	actual := fs.Bool("actual", false, "summarize ground-truth columns instead of predictions")
	groups := fs.Int("groups", 0, "also split the playlist into N mood groups")
	fs.Parse(args)

	if *dataPath == "" {
		return fmt.Errorf("-data is required")
	}

	eng, err := engine.Open(*modelPath)
	if err != nil {
		return err
	}

	table, err := readTable(*dataPath)
	if err != nil {
		return err
	}

	source := mood.SourcePredicted
	if *actual {
		source = mood.SourceActual
	}

	summary, err := eng.Analyze(table, source)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	fmt.Print(mood.FormatSummary(*name, summary))

	if *groups > 0 {
		return printMoodGroups(eng, table, source, *groups)
	}
	return nil
}

// printMoodGroups clusters the playlist's tracks by their attribute
// values and prints one block per group.
func printMoodGroups(eng *engine.Engine, table *dataset.Table, source mood.Source, n int) error {
	attrs := eng.Attributes()

	points := make([]mood.TrackPoint, 0, len(table.Rows))
	for i := range table.Rows {
		row := &table.Rows[i]
		values := row.Predicted
		if source == mood.SourceActual {
			values = row.Features
		}

		vals := make([]float64, len(attrs))
		for a, attr := range attrs {
			vals[a] = values[attr]
		}
		points = append(points, mood.TrackPoint{
			ID:     row.ID,
			Name:   row.Name,
			Artist: row.Artist,
			Values: vals,
		})
	}

	found, err := mood.GroupByMood(attrs, points, n)
	if err != nil {
		return fmt.Errorf("grouping tracks: %w", err)
	}

	fmt.Println("\nMood groups:")
	for _, g := range found {
		fmt.Printf("%s (%d tracks)\n", g.Label, len(g.Tracks))
		for _, track := range g.Tracks {
			if track.Name != "" {
				fmt.Printf("  %s - %s\n", track.Artist, track.Name)
			}
		}
	}
	return nil
}

func runCompare(args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "trained bundle path")
	pathA := fs.String("a", "", "first playlist CSV (required)")
	pathB := fs.String("b", "", "second playlist CSV (required)")
	nameA := fs.String("name-a", "Playlist 1", "first playlist title")
	nameB := fs.String("name-b", "Playlist 2", "second playlist title")
	actual := fs.Bool("actual", false, "compare ground-truth columns instead of predictions")
	fs.Parse(args)

	if *pathA == "" || *pathB == "" {
		return fmt.Errorf("-a and -b are required")
	}

	eng, err := engine.Open(*modelPath)
	if err != nil {
		return err
	}

	tableA, err := readTable(*pathA)
	if err != nil {
		return err
	}
	tableB, err := readTable(*pathB)
	if err != nil {
		return err
	}

	source := mood.SourcePredicted
	if *actual {
		source = mood.SourceActual
	}

	comparison, err := eng.Compare(tableA, tableB, *nameA, *nameB, source)
	if err != nil {
		return fmt.Errorf("comparing: %w", err)
	}

	fmt.Print(mood.FormatComparison(comparison))
	return nil
}

func runImport(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "trained bundle path")
	playlistID := fs.String("playlist", "", "Spotify playlist ID (required)")
	fs.Parse(args)

	if *playlistID == "" {
		return fmt.Errorf("-playlist is required")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("please set the DATABASE_URL environment variable")
	}

	ctx := context.Background()

	eng, err := engine.Open(*modelPath)
	if err != nil {
		return err
	}

	spotifyCfg, err := spotify.LoadConfig()
	if err != nil {
		return err
	}
	spotifyClient, err := spotify.NewClient(ctx, spotifyCfg)
	if err != nil {
		return err
	}

	lastfmCfg, err := lastfm.LoadConfig()
	if err != nil {
		return err
	}
	lastfmClient := lastfm.NewClient(lastfmCfg)

	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	svc := pipeline.New(database, spotifyClient, lastfmClient, eng,
		pipeline.WithBundlePath(*modelPath))

	result, err := svc.ImportPlaylist(ctx, *playlistID)
	if err != nil {
		return fmt.Errorf("importing playlist: %w", err)
	}
	log.Info().
		Str("playlist", result.Name).
		Int("tracks", result.TrackCount).
		Int("missing_tags", result.MissingTags).
		Msg("playlist imported")

	batchID, err := svc.PredictAndStore(ctx, result.Table)
	if err != nil {
		return fmt.Errorf("storing predictions: %w", err)
	}
	log.Info().Str("batch", batchID.String()).Msg("predictions stored")

	summary, err := eng.Analyze(result.Table, mood.SourcePredicted)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	fmt.Print(mood.FormatSummary(result.Name, summary))
	return nil
}

func runServe(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "trained bundle path")
	addr := fs.String("addr", web.DefaultAddr, "listen address")
	fs.Parse(args)

	eng, err := engine.Open(*modelPath)
	if err != nil {
		return err
	}
	log.Info().Str("model", *modelPath).Strs("attributes", eng.Attributes()).Msg("model loaded")

	server := web.NewServer(web.ServerConfig{Addr: *addr, Logger: log}, eng)
	return server.Run()
}

func readTable(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	table, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return table, nil
}

func splitAttrs(s string) []string {
	parts := strings.Split(s, ",")
	attrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			attrs = append(attrs, p)
		}
	}
	return attrs
}
