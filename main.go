package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rea_scraper/api"
	"rea_scraper/config"
	"rea_scraper/httputil"
	"rea_scraper/logging"
	"rea_scraper/models"
	"rea_scraper/notify"
	"rea_scraper/scheduler"
	"rea_scraper/scraper"
	"rea_scraper/storage"
)

const usage = `usage: rea_scraper <command> [flags]

commands:
  search   -portal P -category C [-mode 0|1|2]
  scrape   -portal P -category C [-mode 0|1|2] [-clear-cache=true] [-analytical]
  daemon   run the [[schedule]] entries from config.toml
  serve    [-addr :8080] HTTP API`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("rea_scraper.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "search":
		err = runSearch(ctx, cfg, args)
	case "scrape":
		err = runScrape(ctx, cfg, args)
	case "daemon":
		err = runDaemon(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

type jobFlags struct {
	fs       *flag.FlagSet
	portal   *string
	category *string
	mode     *int
}

func newJobFlags(name string) *jobFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &jobFlags{
		fs:       fs,
		portal:   fs.String("portal", "", "otodom or domiporta"),
		category: fs.String("category", "", "lands, houses or apartments"),
		mode:     fs.Int("mode", int(models.ModeTest), "0=test, 1=dev, 2=prod"),
	}
}

func (f *jobFlags) parse(args []string) (models.Portal, models.Category, models.Mode, error) {
	if err := f.fs.Parse(args); err != nil {
		return "", "", 0, err
	}
	if *f.portal == "" || *f.category == "" {
		return "", "", 0, errors.New("-portal and -category are required")
	}
	mode, err := models.ParseMode(*f.mode)
	if err != nil {
		return "", "", 0, err
	}
	return models.ParsePortal(*f.portal), models.ParseCategory(*f.category), mode, nil
}

func runSearch(ctx context.Context, cfg *config.Config, args []string) error {
	portal, category, mode, err := newJobFlags("search").parse(args)
	if err != nil {
		return err
	}

	deps, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	report, err := deps.pipeline.Search(ctx, portal, category, mode)
	if err != nil {
		return err
	}
	log.Printf("Search %s done: %d urls acquired", report.RunName, report.TotalURLsAcquired())
	return nil
}

func runScrape(ctx context.Context, cfg *config.Config, args []string) error {
	flags := newJobFlags("scrape")
	clearCache := flags.fs.Bool("clear-cache", true, "delete each cached batch once scraped")
	analytical := flags.fs.Bool("analytical", false, "also export offers to S3")
	portal, category, mode, err := flags.parse(args)
	if err != nil {
		return err
	}

	deps, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	deps.pipeline.Analytical = *analytical

	report, err := deps.pipeline.Scrape(ctx, portal, category, mode, *clearCache)
	if err != nil {
		return err
	}
	log.Printf("Scrape %s done: %d offers scraped, %d stored in postgresql", report.RunName,
		report.TotalSucceeded(), report.RelationalSuccess)
	return nil
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	deps, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	sched := scheduler.New(cfg.Schedule, deps.pipeline)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	log.Printf("Daemon running with %d scheduled jobs. Press Ctrl+C to stop.", sched.Len())
	<-ctx.Done()

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.APIAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	app, err := api.NewApp(deps.fetcher, deps.headers, deps.runs)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("API listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// deps holds the long-lived collaborators of every command.
type deps struct {
	pipeline *scraper.Pipeline
	fetcher  scraper.Fetcher
	headers  *httputil.HeaderPool
	runs     *storage.RunStore
	cache    storage.Cache
	conns    *storage.Connections
	browser  *scraper.BrowserFetcher
}

func openDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	cache, err := storage.OpenCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	d.cache = cache
	log.Printf("Cache backend: %s", cfg.Cache.Backend)

	runs, err := storage.NewRunStore(cfg.RunsDB)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open run history: %w", err)
	}
	d.runs = runs
	log.Printf("Run history: %s", cfg.RunsDB)

	d.conns = storage.NewConnections(cfg)
	if cfg.Postgres.URL != "" {
		log.Printf("Postgres: %s", maskConnectionString(cfg.Postgres.URL))
	}

	headers, err := httputil.LoadHeaderPool(cfg.Scraping.HeadersFile)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.headers = headers

	switch cfg.Scraping.FetchMode {
	case "browser":
		d.browser = scraper.NewBrowserFetcher(cfg.Scraping.BrowserDataDir, nil)
		d.fetcher = d.browser
	default:
		clients := httputil.NewClients(cfg.HTTP)
		d.fetcher = scraper.NewHTTPFetcher(clients.Scraping, nil)
		if cfg.HTTP.ProxyURL != "" {
			log.Printf("Proxy: %s", maskConnectionString(cfg.HTTP.ProxyURL))
		}
	}

	conns := d.conns
	d.pipeline = &scraper.Pipeline{
		Cache: cache,
		Stores: func(portal models.Portal, category models.Category, mode models.Mode) scraper.OfferStore {
			return conns.Manager(portal, category, mode)
		},
		Filters:     config.NewFilterFiles(cfg.Scraping.FiltersDir),
		Notifier:    notify.New(cfg.SMTP, cfg.Env),
		Runs:        runs,
		Fetcher:     d.fetcher,
		Headers:     headers,
		LogDir:      cfg.LogDir,
		LogLevel:    models.ParseLogLevel(cfg.LogLevel),
		SearchDelay: cfg.Scraping.SearchDelay,
		ScrapeDelay: cfg.Scraping.ScrapeDelay,
		Analytical:  cfg.S3.Bucket != "",
	}
	return d, nil
}

func (d *deps) Close() {
	if d.browser != nil {
		d.browser.Close()
	}
	if d.conns != nil {
		d.conns.Close()
	}
	if d.runs != nil {
		d.runs.Close()
	}
	if d.cache != nil {
		d.cache.Close()
	}
}

// maskConnectionString hides the password of a DSN or proxy URL for logging.
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
