package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forge-indexer/forge-indexer/internal/httpapi"
	"github.com/forge-indexer/forge-indexer/internal/mcpapi"
	"github.com/forge-indexer/forge-indexer/internal/pipeline"
	"github.com/forge-indexer/forge-indexer/internal/retrieval"
)

var (
	indexEmbedderFlags embedderFlags
	batchSize          int
	maxConcurrentFiles int
	httpAddr           string
	serveMCP           bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a directory and keep it in sync with the vector store",
	Long: `index walks <path>, chunks and embeds every eligible file, upserts the
result into the vector-index collection, then watches <path> for changes
and keeps the collection in sync until terminated (Ctrl+C or SIGTERM).

While running, it also serves retrieval over HTTP (--http-addr) and,
if --mcp is set, over an MCP stdio server.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	addEmbedderFlags(indexCmd, &indexEmbedderFlags)
	indexCmd.Flags().IntVar(&batchSize, "batch-size", 10, "embedding requests batched per round-trip")
	indexCmd.Flags().IntVar(&maxConcurrentFiles, "max-concurrent-files", 5, "files processed concurrently")
	indexCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "address the retrieval HTTP server listens on")
	indexCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve retrieval over an MCP stdio server")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig(indexEmbedderFlags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if batchSize > 0 {
		cfg.Indexing.BatchSize = batchSize
	}
	if maxConcurrentFiles > 0 {
		cfg.Indexing.MaxConcurrentFiles = maxConcurrentFiles
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	if cfg.Indexing.Incremental {
		if err := p.LoadHashCache(root); err != nil {
			logger.Warn("failed to load file-hash cache, reprocessing everything", "error", err)
		}
		defer func() {
			if err := p.SaveHashCache(); err != nil {
				logger.Warn("failed to save file-hash cache", "error", err)
			}
		}()
	}

	files, err := p.CollectFilesFromDirectory(root)
	if err != nil {
		return fmt.Errorf("collect files from %s: %w", root, err)
	}
	logger.Info("starting initial index", "path", root, "files", len(files))
	for _, result := range p.ProcessFiles(ctx, files) {
		if result.Err != nil {
			logger.Error("process_file failed", "path", result.Path, "error", result.Err)
		}
	}
	logger.Info("initial index complete", "stats", p.GetStats())

	if err := p.StartWatching(ctx, root); err != nil {
		return fmt.Errorf("start watching %s: %w", root, err)
	}
	defer p.Stop()

	retriever := retrieval.New(p.Embedder(), p.Index(), p.CollectionName())

	srv := httpapi.NewServer(retriever, cfg.Server.Version, p.GetStats, logger)
	httpServer := &http.Server{Addr: httpAddr, Handler: srv}
	go func() {
		logger.Info("serving retrieval HTTP API", "addr", httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	if serveMCP {
		mcpSrv := mcpapi.NewServer(cfg.Server.Name, cfg.Server.Version, retriever, logger)
		go func() {
			if err := mcpSrv.Start(ctx); err != nil {
				logger.Error("mcp server error", "error", err)
			}
		}()
	}

	return p.ProcessEvents(ctx)
}
