package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/domain"
	"github.com/spec-kit/field-report-service/internal/stream"
)

// reportwatch tails the admin live feed in a terminal: it prints the init
// snapshot once, then one line per live event, maintaining the same
// upsert-by-id listing the admin console keeps.
func main() {
	url := flag.String("url", "http://127.0.0.1:8787/api/admin/reports/stream", "live feed URL")
	token := flag.String("token", os.Getenv("REPORT_WATCH_TOKEN"), "admin bearer token")
	flag.Parse()

	if *token == "" {
		log.Fatal("admin token required (-token or REPORT_WATCH_TOKEN)")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	var mu sync.Mutex
	list := &stream.ReportList{}

	client := &stream.Client{
		URL:    *url,
		Token:  *token,
		Logger: logger,
		Callbacks: stream.FeedCallbacks{
			OnInit: func(reports []domain.Report) {
				mu.Lock()
				list.Replace(reports)
				mu.Unlock()
				fmt.Printf("-- snapshot: %d reports\n", len(reports))
			},
			OnCreated: func(report domain.Report) {
				mu.Lock()
				list.Upsert(report)
				total := len(list.Reports())
				mu.Unlock()
				printReport("created", report, total)
			},
			OnUpdated: func(report domain.Report) {
				mu.Lock()
				list.Upsert(report)
				total := len(list.Reports())
				mu.Unlock()
				printReport("updated", report, total)
			},
			OnError: func(message string) {
				fmt.Printf("-- feed error: %s\n", message)
			},
		},
	}

	if err := client.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("feed terminated", zap.Error(err))
	}
}

func printReport(action string, report domain.Report, total int) {
	fmt.Printf("%s %s status=%s (%d tracked)\n", action, report.ID, report.Status, total)
}
