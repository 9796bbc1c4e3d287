// Command transfer ships an existing flat file to object storage, for runs
// whose transfer was disabled or failed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/arovil7777/naver-news-crawling/internal/transfer"
	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// CLIFlags holds the transfer flags
type CLIFlags struct {
	Files []string `arg:"" help:"Flat files to transfer" type:"existingfile"`

	Endpoint  string `help:"Object storage endpoint (host:port)" required:"" env:"TRANSFER_ENDPOINT"`
	AccessKey string `help:"Object storage access key" env:"TRANSFER_ACCESS_KEY"`
	SecretKey string `help:"Object storage secret key" env:"TRANSFER_SECRET_KEY"`
	Bucket    string `help:"Bucket receiving flat files" default:"naver-news" env:"TRANSFER_BUCKET"`
	Prefix    string `help:"Object key prefix" default:"articles" env:"TRANSFER_PREFIX"`
	UseSSL    bool   `help:"Use TLS for object storage" env:"TRANSFER_USE_SSL"`

	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL"`
}

func main() {
	_ = godotenv.Load()

	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("transfer"),
		kong.Description("Uploads flat files to object storage under <prefix>/YYYY/MM/DD/."),
		kong.UsageOnError(),
	)

	logger, err := common.NewLogger(os.Stderr, flags.LogLevel, "transfer")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	uploader, err := transfer.New(common.TransferConfig{
		Endpoint:  flags.Endpoint,
		AccessKey: flags.AccessKey,
		SecretKey: flags.SecretKey,
		Bucket:    flags.Bucket,
		Prefix:    flags.Prefix,
		UseSSL:    flags.UseSSL,
	}, logger)
	if err != nil {
		logger.Fatal("Error configuring transfer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, file := range flags.Files {
		key, err := uploader.Transfer(ctx, file)
		if err != nil {
			logger.Error("Error transferring file", "file", file, "error", err)
			failed++
			continue
		}
		fmt.Println(key)
	}
	if failed > 0 {
		stop()
		os.Exit(1)
	}
}
