package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ronitnanwani/docsdb"
	"github.com/ronitnanwani/docsdb/internal/resp"
)

func main() {
	port := flag.Int("port", 6379, "Server port")
	dataDir := flag.String("data", ".", "Data directory")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := docsdb.DefaultConfig()
	cfg.DataDir = *dataDir

	db, err := docsdb.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	db.StartCompaction()

	srv := resp.NewServer(db)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		srv.Close()
		db.Close()
	}()

	fmt.Printf("Starting docsdb server on port %d (data: %s)\n", *port, *dataDir)
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
