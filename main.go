package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/arovil7777/naver-news-crawling/internal/browser"
	"github.com/arovil7777/naver-news-crawling/internal/progress"
	"github.com/arovil7777/naver-news-crawling/internal/store"
	"github.com/arovil7777/naver-news-crawling/internal/transfer"
	"github.com/arovil7777/naver-news-crawling/internal/writer"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
	"github.com/arovil7777/naver-news-crawling/pkg/crawl"
	"github.com/arovil7777/naver-news-crawling/ui"
)

// TransferFlags configures the object storage receiving the flat file
type TransferFlags struct {
	Endpoint  string `help:"Object storage endpoint (host:port); empty disables the transfer" env:"TRANSFER_ENDPOINT"`
	AccessKey string `help:"Object storage access key" env:"TRANSFER_ACCESS_KEY"`
	SecretKey string `help:"Object storage secret key" env:"TRANSFER_SECRET_KEY"`
	Bucket    string `help:"Bucket receiving flat files" default:"naver-news" env:"TRANSFER_BUCKET"`
	Prefix    string `help:"Object key prefix" default:"articles" env:"TRANSFER_PREFIX"`
	UseSSL    bool   `help:"Use TLS for object storage" env:"TRANSFER_USE_SSL"`
}

func (f TransferFlags) config() common.TransferConfig {
	return common.TransferConfig{
		Endpoint:  f.Endpoint,
		AccessKey: f.AccessKey,
		SecretKey: f.SecretKey,
		Bucket:    f.Bucket,
		Prefix:    f.Prefix,
		UseSSL:    f.UseSSL,
	}
}

// CLIFlags holds the harvester flags
type CLIFlags struct {
	BaseURL      string `help:"Portal home page" default:"https://news.naver.com/" env:"BASE_URL"`
	CategoryFrom int    `help:"Index of the first home-page category to crawl" default:"1" env:"CATEGORY_FROM"`
	CategoryTo   int    `help:"Index of the last home-page category to crawl" default:"7" env:"CATEGORY_TO"`

	BrowserPath string `help:"Chrome executable (found on PATH when empty)" env:"BROWSER_PATH"`
	UserAgent   string `help:"User agent sent by the browser" env:"USER_AGENT"`
	Headless    bool   `help:"Run the browser without a window" default:"true" negatable:"" env:"HEADLESS"`

	NavigationTimeout time.Duration `help:"Page load timeout" default:"30s"`
	ListTimeout       time.Duration `help:"Wait for a list container" default:"5s"`
	TriggerTimeout    time.Duration `help:"Wait for the load-more trigger" default:"5s"`
	ContentTimeout    time.Duration `help:"Wait for an article body" default:"10s"`
	MaxLoadMore       int           `help:"Maximum load-more activations per list page" default:"100" env:"MAX_LOAD_MORE"`

	Parallelism     int `help:"Available parallelism (0 uses the number of CPUs)" default:"0" env:"PARALLELISM"`
	WorkerFactor    int `help:"Article workers per unit of parallelism; 0 uses parallelism minus reserve" default:"0" env:"WORKER_FACTOR"`
	WorkerReserve   int `help:"Parallelism kept free when factor is 0" default:"1" env:"WORKER_RESERVE"`
	CategoryWorkers int `help:"Categories crawled at the same time" default:"1" env:"CATEGORY_WORKERS"`

	OutputDir  string `help:"Directory for flat files" default:"output" short:"o" env:"OUTPUT_DIR"`
	StoreURI   string `help:"Document store (mongodb://..., sqlite://path)" default:"sqlite://output/articles.db" env:"DOC_STORE_URI,MONGO_URI"`
	Database   string `help:"Database name" default:"crawling_db" env:"DATABASE_NAME"`
	Collection string `help:"Collection name" default:"crawling_contents" env:"COLLECTION_NAME"`
	NoStore    bool   `help:"Skip the document store"`

	Transfer TransferFlags `embed:"" prefix:"transfer-"`

	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL"`
	Quiet    bool   `help:"Hide progress display" short:"q"`
}

func (f CLIFlags) configuration() *common.Configuration {
	return &common.Configuration{
		BaseURL:           f.BaseURL,
		CategoryFrom:      f.CategoryFrom,
		CategoryTo:        f.CategoryTo,
		BrowserPath:       f.BrowserPath,
		UserAgent:         f.UserAgent,
		Headless:          f.Headless,
		NavigationTimeout: f.NavigationTimeout,
		ListTimeout:       f.ListTimeout,
		TriggerTimeout:    f.TriggerTimeout,
		ContentTimeout:    f.ContentTimeout,
		MaxLoadMore:       f.MaxLoadMore,
		Parallelism:       f.Parallelism,
		WorkerFactor:      f.WorkerFactor,
		WorkerReserve:     f.WorkerReserve,
		CategoryWorkers:   f.CategoryWorkers,
		OutputDir:         f.OutputDir,
		StoreURI:          f.StoreURI,
		Database:          f.Database,
		Collection:        f.Collection,
		Transfer:          f.Transfer.config(),
		Quiet:             f.Quiet,
	}
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("harvest"),
		kong.Description("Collects the day's articles from the Naver news portal."),
		kong.UsageOnError(),
	)

	logger, err := common.NewLogger(os.Stderr, flags.LogLevel, "harvest")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(flags, logger))
}

func run(flags CLIFlags, logger *log.Logger) int {
	config := flags.configuration()
	if err := config.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var docs store.Store
	if !flags.NoStore {
		var err error
		docs, err = store.Open(ctx, config.StoreURI, config.Database, config.Collection)
		if err != nil {
			logger.Error("Error opening document store", "error", err)
			return 1
		}
		defer func() {
			if err := docs.Close(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Error closing document store", "error", err)
			}
		}()
	}

	uploader, err := transfer.New(config.Transfer, logger)
	if err != nil {
		logger.Error("Error configuring transfer", "error", err)
		return 1
	}

	factory := browser.NewChrome(browser.ChromeOptions{
		ExecPath:          config.BrowserPath,
		UserAgent:         config.UserAgent,
		Headless:          config.Headless,
		NavigationTimeout: config.NavigationTimeout,
	}, logger)

	crawler, err := crawl.NewCrawler(config, factory, logger,
		crawl.WithProgress(progress.New(os.Stderr, config.Quiet)))
	if err != nil {
		logger.Error("Error creating crawler", "error", err)
		return 1
	}

	result, err := crawler.Run(ctx)
	if err != nil {
		if errors.Is(err, common.ErrFatal) {
			logger.Error("Fatal error, aborting run", "error", err)
		} else {
			logger.Error("Crawl aborted", "error", err)
		}
		return 1
	}

	code := 0
	summary := result.Summary

	if docs != nil {
		saved, err := docs.Save(ctx, result.Records)
		if err != nil {
			logger.Error("Error saving articles", "error", err)
			code = 1
		} else {
			summary.Saved = saved
			logger.Info("Saved articles", "new", saved, "records", len(result.Records))
		}
	}

	fw, err := writer.New(config.OutputDir, crawler.RunID())
	if err != nil {
		logger.Error("Error preparing output directory", "error", err)
		return 1
	}
	path, err := fw.WriteCSV(result.Records)
	if err != nil {
		logger.Error("Error writing flat file", "error", err)
		code = 1
	} else {
		summary.FlatFile = path
		logger.Info("Wrote flat file", "path", path)
	}

	if path != "" && uploader.Enabled() {
		key, err := uploader.Transfer(ctx, path)
		if err != nil {
			logger.Error("Error transferring flat file", "error", err)
			code = 1
		} else {
			summary.Transferred = key
		}
	}

	if _, err := fw.WriteSummary(summary); err != nil {
		logger.Warn("Error writing summary", "error", err)
	}

	fmt.Println(ui.Report(summary, result.Records))
	return code
}
