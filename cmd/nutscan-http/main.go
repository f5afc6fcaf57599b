// Command nutscan-http serves an in-memory store, optionally loaded from a
// snapshot, through the httpview JSON API.
//
//	nutscan-http -c ./nutscan.yml
//	curl 'http://127.0.0.1:8181/filters/0/next'
//	curl 'http://127.0.0.1:8181/values?target=0&key=user:1&type=hash'
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutsdb/nutscan"
	"github.com/nutsdb/nutscan/httpview"
	"github.com/nutsdb/nutscan/memstore"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "config file; nutscan.yml is looked up when omitted")
	flag.StringVar(&cfgPath, "c", "", "shorthand for -config")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := memstore.Open(cfg.storeOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if cfg.Store.Snapshot != "" {
		n, err := memstore.LoadSnapshot(db, cfg.Store.Snapshot)
		if err != nil {
			log.Fatal(err)
		}
		nutscan.GetLogger().Printf("loaded %d keys from %s", n, cfg.Store.Snapshot)
	}

	view, err := httpview.New(db, db, cfg.scanOptions())
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{Addr: cfg.Listen, Handler: view}
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	nutscan.GetLogger().Printf("listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
