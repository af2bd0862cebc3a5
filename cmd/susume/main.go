// Package main is the Susume CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/catalog"
	"github.com/hyperjump/susume/internal/cli"
	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/recommend"
	"github.com/hyperjump/susume/internal/server"
	"github.com/hyperjump/susume/internal/storage"
	"github.com/hyperjump/susume/internal/vector"
	"github.com/hyperjump/susume/internal/watcher"
	"github.com/hyperjump/susume/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/susume/config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "serve":
		runServe()
	case "import":
		runImport()
	case "build":
		runBuild()
	case "recommend":
		runRecommend()
	case "repl":
		runRepl()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("susume version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: susume <command> [flags]

Commands:
  serve      start the recommendation server
  import     import catalog JSON files into the database
  build      encode the catalog and save the vector index
  recommend  query a running server for recommendations
  repl       interactive recommendations without a server
  status     show server status
  version    print version

Run "susume <command> -h" for command flags.
`)
}

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so development runs pick up the
// project config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// components bundles everything a local (non-HTTP) command needs.
type components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Engine   *recommend.Engine
}

// Close releases storage and embedder resources.
func (c *components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	// .env is optional; it carries the embedding API key in development.
	_ = godotenv.Load()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	engine := recommend.NewEngine(embedder, &cfg.Recommend, recommend.WithLogger(logger))
	return &components{Storage: store, Embedder: embedder, Engine: engine}, nil
}

func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "onnx", "":
		return embedding.NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.BaseURL, os.Getenv(cfg.APIKeyEnv), cfg.Model, cfg.Dimensions, cfg.CacheSize)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: onnx, openai, mock)", cfg.Provider)
	}
}

// loadEngine fills the engine from the catalog database, reusing the saved
// vector index when it still matches the catalog and rebuilding otherwise.
func loadEngine(ctx context.Context, cfg *config.Config, comps *components, logger *zap.Logger, progress bool) error {
	items, err := comps.Storage.AllItems(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("catalog is empty; run \"susume import\" first")
	}

	if saved, loadErr := vector.Load(cfg.Storage.VectorIndexPath, comps.Embedder.Dimensions()); loadErr == nil {
		restoreErr := comps.Engine.Restore(items, saved)
		if restoreErr == nil {
			logger.Info("vector index restored",
				zap.String("path", cfg.Storage.VectorIndexPath),
				zap.Int("items", len(items)),
			)
			return nil
		}
		logger.Info("saved vector index is stale, rebuilding", zap.Error(restoreErr))
	}

	var buildOpts *vector.BuildOptions
	if progress {
		bar := progressbar.NewOptions(len(items),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Encoding catalog"),
		)
		buildOpts = &vector.BuildOptions{
			Progress: func(done, total int) { _ = bar.Set(done) },
		}
	}
	if err := comps.Engine.Rebuild(ctx, items, buildOpts); err != nil {
		return err
	}
	if progress {
		fmt.Println()
	}
	if err := comps.Engine.Store().Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
	return nil
}

// reloadFromDataDir re-imports the catalog JSON files and rebuilds the
// engine. Used by the watcher and the reload endpoint.
func reloadFromDataDir(ctx context.Context, cfg *config.Config, comps *components, logger *zap.Logger) error {
	items, err := catalog.Load(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("load catalog files: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no catalog files in %s", cfg.Storage.DataDir)
	}
	for _, item := range items {
		if err := comps.Storage.UpsertItem(ctx, item); err != nil {
			return err
		}
	}
	if err := comps.Engine.Rebuild(ctx, items, nil); err != nil {
		return err
	}
	if err := comps.Engine.Store().Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
	return nil
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	ctx := context.Background()
	if err := loadEngine(ctx, cfg, comps, logger, false); err != nil {
		logger.Fatal("Failed to build catalog index", zap.Error(err))
	}

	reload := func(ctx context.Context) error {
		return reloadFromDataDir(ctx, cfg, comps, logger)
	}

	if cfg.Watch.EnabledOrDefault() {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watch := watcher.NewWatcher(cfg.Storage.DataDir, func() {
			if err := reload(context.Background()); err != nil {
				logger.Warn("catalog reload failed", zap.Error(err))
			}
		}, watchOpts...)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := watch.Start(watchCtx); err != nil {
			logger.Warn("catalog watcher failed to start", zap.String("dir", cfg.Storage.DataDir), zap.Error(err))
		} else {
			defer watch.Stop()
		}
	}

	srv := server.NewServer(comps.Engine, comps.Storage, cfg, logger, reload)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dataDir := fs.String("data", "", "catalog directory (default: storage.data_dir from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dir := *dataDir
	if dir == "" {
		dir = cfg.Storage.DataDir
	}

	items, err := catalog.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "No catalog files found in %s\n", dir)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	for _, item := range items {
		if err := store.UpsertItem(ctx, item); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Imported %d items into %s\n", len(items), cfg.Storage.DatabasePath)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "rebuild even if the saved index matches")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	if *force {
		// Ignore the saved index entirely.
		_ = os.Remove(cfg.Storage.VectorIndexPath)
	}
	if err := loadEngine(context.Background(), cfg, comps, logger, true); err != nil {
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Vector index ready: %d items, %d dimensions, saved to %s\n",
		comps.Engine.Size(), comps.Engine.Dimensions(), cfg.Storage.VectorIndexPath)
}

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	itemID := fs.String("id", "", "query item ID (alternative to a title)")
	limit := fs.Int("limit", 10, "number of results")
	grouped := fs.Bool("grouped", false, "group results per category")
	seed := fs.Int64("seed", 0, "re-roll seed (0 = deterministic order)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: susume recommend [flags] <title>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])

	titleQuery := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if titleQuery == "" && *itemID == "" {
		fs.Usage()
		os.Exit(1)
	}

	format := cli.OutputText
	if *outputFormat == "json" {
		format = cli.OutputJSON
	}

	query := &models.RecommendQuery{
		ItemID:          *itemID,
		Title:           titleQuery,
		Limit:           *limit,
		GroupByCategory: *grouped,
		RerollSeed:      *seed,
	}
	response, err := recommendViaHTTP(*serverURL, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendViaHTTP(serverURL string, query *models.RecommendQuery) (*models.RecommendResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/recommend", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("is the server running? %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	var response models.RecommendResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func runRepl() {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 3, "results per category")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer comps.Close()

	ctx := context.Background()
	if err := loadEngine(ctx, cfg, comps, logger, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build catalog index: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Enter a movie, music, anime, or manga title.")
	fmt.Println("Commands: r = re-roll last query, quit = exit.")

	var lastQuery *models.RecommendQuery
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return
		case "r":
			if lastQuery == nil {
				fmt.Println("Nothing to re-roll yet.")
				continue
			}
			lastQuery.RerollSeed = time.Now().UnixNano()
		default:
			lastQuery = &models.RecommendQuery{
				Title:           line,
				Limit:           *limit,
				GroupByCategory: true,
			}
		}
		response, err := comps.Engine.Recommend(ctx, lastQuery)
		if err != nil {
			fmt.Printf("No results: %v\n", err)
			continue
		}
		_ = cli.WriteRecommendations(os.Stdout, response, cli.OutputText)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed (is the server running?): %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}
}
