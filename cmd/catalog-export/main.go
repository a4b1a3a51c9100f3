// Command catalog-export fetches every product of a Shopify storefront and
// writes them to a JSON file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Sternrassler/storefront-catalog/pkg/cache"
	"github.com/Sternrassler/storefront-catalog/pkg/catalog"
	"github.com/Sternrassler/storefront-catalog/pkg/config"
	"github.com/Sternrassler/storefront-catalog/pkg/logging"
	"github.com/Sternrassler/storefront-catalog/pkg/metrics"
	"github.com/Sternrassler/storefront-catalog/pkg/pagination"
	"github.com/Sternrassler/storefront-catalog/pkg/storefront"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// fallbackDomain is used when no shop domain is configured.
const fallbackDomain = "shop-irl-htn"

type options struct {
	// endpointURL overrides the storefront endpoint (tests)
	endpointURL string
	verify      bool
	refresh     bool
}

type exportResult struct {
	Products []catalog.Product
	Path     string
	Written  bool
	FetchErr error
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	domain := flag.String("domain", "", "shop domain (overrides "+config.EnvShopDomain+")")
	output := flag.String("output", "", "output file, relative to the output directory")
	outputDir := flag.String("output-dir", "", "output directory (default: executable directory)")
	pageSize := flag.Int("page-size", 0, "products per page")
	maxPages := flag.Int("max-pages", 0, "stop after this many pages (0 = unbounded)")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics and /health on this address")
	verify := flag.Bool("verify", false, "validate the written file against the catalog schema")
	refresh := flag.Bool("refresh", false, "drop cached pages before fetching")
	flag.Parse()

	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "domain":
			cfg.ShopDomain = *domain
		case "output":
			cfg.Output = *output
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "page-size":
			cfg.PageSize = *pageSize
		case "max-pages":
			cfg.MaxPages = *maxPages
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if cfg.ShopDomain == "" {
		cfg.ShopDomain = fallbackDomain
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("catalog-export")

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	err = guard(logger, os.Stdout, func() error {
		_, err := run(context.Background(), cfg, options{verify: *verify, refresh: *refresh}, os.Stdout)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("Export did not complete")
	}
}

// guard runs fn and turns a panic into a logged error.
func guard(logger zerolog.Logger, out io.Writer, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Export aborted")
			fmt.Fprintf(out, "An error occurred: %v\n", r)
			err = fmt.Errorf("export aborted: %v", r)
		}
	}()

	return fn()
}

// run performs one export. Only failures that prevent fetching are
// returned; fetch and write failures are logged and reflected in the result,
// and the summary is printed whenever records were fetched.
func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) (*exportResult, error) {
	if err := cfg.Validate(); err != nil {
		switch {
		case errors.Is(err, config.ErrMissingToken):
			fmt.Fprintf(out, "Please set the %s environment variable.\n", config.EnvAccessToken)
		case errors.Is(err, config.ErrPlaceholderDomain):
			fmt.Fprintf(out, "Please set the %s environment variable to your shop domain.\n", config.EnvShopDomain)
		default:
			fmt.Fprintf(out, "Invalid configuration: %v\n", err)
		}
		return nil, err
	}

	logger, _ := logging.WithRunID(logging.NewLogger("catalog-export"))

	baseDir := cfg.OutputDir
	if baseDir == "" {
		dir, err := catalog.ExecutableDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}

	clientCfg := storefront.DefaultConfig(cfg.ShopDomain, cfg.AccessToken)
	clientCfg.APIVersion = cfg.APIVersion
	clientCfg.EndpointURL = opts.endpointURL
	clientCfg.Timeout = cfg.Timeout
	clientCfg.CacheTTL = cfg.CacheTTL

	if cfg.RedisAddr != "" {
		redisClient := connectRedis(ctx, cfg.RedisAddr, logger)
		if redisClient != nil {
			defer redisClient.Close()
			clientCfg.Cache = cache.NewManager(redisClient)
		}
	}

	client, err := storefront.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create storefront client: %w", err)
	}

	logger = logger.With().Str("shop", client.Endpoint().Domain).Logger()

	if opts.refresh {
		if deleted, err := client.PurgeCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to purge page cache")
		} else if deleted > 0 {
			logger.Info().Int("deleted", deleted).Msg("Purged cached pages")
		}
	}
	logger.Info().Str("endpoint", client.Endpoint().URL).Msg("Fetching products from Shopify store")
	fmt.Fprintln(out, "Fetching products from Shopify store...")

	fetcher := pagination.NewFetcher(client, pagination.Config{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	}, logging.NewReporter(logger))

	products, fetchErr := fetcher.FetchAll(ctx)
	result := &exportResult{
		Products: products,
		FetchErr: fetchErr,
	}

	if len(products) == 0 {
		fmt.Fprintln(out, "No products found or error occurred during fetch.")
		return result, nil
	}

	result.Path = catalog.ResolvePath(baseDir, cfg.Output)
	if err := catalog.Save(result.Path, products); err != nil {
		logger.Error().Err(err).Str("path", result.Path).Msg("Error saving to file")
		fmt.Fprintf(out, "Error saving to file: %v\n", err)
		printSummary(out, products)
		return result, nil
	}
	result.Written = true

	logger.Info().Str("path", result.Path).Int("total", len(products)).Msg("Products saved")
	fmt.Fprintf(out, "Products saved to: %s\n", result.Path)
	fmt.Fprintf(out, "Total products exported: %d\n", len(products))

	if opts.verify {
		if err := catalog.Verify(result.Path); err != nil {
			logger.Error().Err(err).Str("path", result.Path).Msg("Written catalog failed verification")
		} else {
			logger.Info().Str("path", result.Path).Msg("Written catalog verified")
		}
	}

	printSummary(out, products)
	return result, nil
}

func printSummary(out io.Writer, products []catalog.Product) {
	line := "=================================================="
	fmt.Fprintf(out, "\n%s\nEXPORT SUMMARY\n%s\n", line, line)
	fmt.Fprintf(out, "Total products exported: %d\n", len(products))
	if len(products) > 0 {
		fmt.Fprintf(out, "Sample product: %s\n", products[0].Name)
		fmt.Fprintf(out, "Price: %s\n", products[0].Price)
	}
}

// connectRedis returns a connected client, or nil when Redis is unreachable.
func connectRedis(ctx context.Context, addr string, logger zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("redis", addr).Msg("Redis unavailable, page cache disabled")
		client.Close()
		return nil
	}

	logger.Info().Str("redis", addr).Msg("Page cache enabled")
	return client
}

func startMetricsServer(addr string, logger zerolog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()

	return srv
}
