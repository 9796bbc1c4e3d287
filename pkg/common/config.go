package common

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"time"
)

// Configuration holds the harvester configuration
type Configuration struct {
	BaseURL string

	// Inclusive index range of home-page categories to crawl
	CategoryFrom int
	CategoryTo   int

	// Browser
	BrowserPath string
	UserAgent   string
	Headless    bool

	// Bounded waits
	NavigationTimeout time.Duration
	ListTimeout       time.Duration
	TriggerTimeout    time.Duration
	ContentTimeout    time.Duration

	// Safety cap on "load more" activations per list page
	MaxLoadMore int

	// Worker sizing, see pool.Size
	Parallelism     int
	WorkerFactor    int
	WorkerReserve   int
	CategoryWorkers int

	OutputDir  string
	StoreURI   string
	Database   string
	Collection string

	Transfer TransferConfig

	Quiet bool
}

// TransferConfig configures the object storage that receives flat files.
// An empty Endpoint disables the transfer.
type TransferConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether bulk transfer is configured
func (t TransferConfig) Enabled() bool {
	return t.Endpoint != ""
}

const (
	DefaultBaseURL    = "https://news.naver.com/"
	DefaultDatabase   = "crawling_db"
	DefaultCollection = "crawling_contents"
)

// Validate fills defaults and rejects impossible values.
func (c *Configuration) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.CategoryFrom < 0 || c.CategoryTo < c.CategoryFrom {
		return fmt.Errorf("invalid category range %d..%d", c.CategoryFrom, c.CategoryTo)
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.ListTimeout <= 0 {
		c.ListTimeout = 5 * time.Second
	}
	if c.TriggerTimeout <= 0 {
		c.TriggerTimeout = 5 * time.Second
	}
	if c.ContentTimeout <= 0 {
		c.ContentTimeout = 10 * time.Second
	}
	if c.MaxLoadMore <= 0 {
		c.MaxLoadMore = 100
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	if c.WorkerFactor < 0 || c.WorkerReserve < 0 {
		return errors.New("worker factor and reserve must be >= 0")
	}
	if c.CategoryWorkers <= 0 {
		c.CategoryWorkers = 1
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Transfer.Enabled() && c.Transfer.Bucket == "" {
		return errors.New("transfer bucket is required when an endpoint is set")
	}
	return nil
}
