package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/attachsizer/config"
	"github.com/attachsizer/metadata"
	"github.com/attachsizer/model"
	"github.com/attachsizer/repository/attachments"
	"github.com/attachsizer/resolver"
	"github.com/attachsizer/router"
	"github.com/attachsizer/web/downloader"
	"github.com/attachsizer/web/storage"
)

var (
	configPath     string
	metadataPath   string
	selectSize     string
	metadataFormat string
)

var rootCmd = &cobra.Command{
	Use:           "attachsizer",
	Short:         "Picks stored image sizes for attachments",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select stored size from metadata file",
	Long: `Reads attachment metadata and prints the stored size selected for
the requested size as JSON.

Examples:
  attachsizer select --metadata meta.json --size medium
  attachsizer select --metadata meta.cbor --format cbor --size 300x200`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(metadataPath)
		if err != nil {
			return fmt.Errorf("reading metadata file failed with error: %w", err)
		}
		cfg, err := config.LoadConfiguration(configPath)
		if err != nil {
			return err
		}
		return runSelect(cmd.OutOrStdout(), data, metadata.Format(metadataFormat), selectSize, cfg.ResolverOptions()...)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")

	selectCmd.Flags().StringVarP(&metadataPath, "metadata", "m", "", "path to metadata file")
	selectCmd.Flags().StringVarP(&selectSize, "size", "s", "", "size name or WxH")
	selectCmd.Flags().StringVarP(&metadataFormat, "format", "f", string(metadata.JSON), "metadata encoding (json, cbor)")
	_ = selectCmd.MarkFlagRequired("metadata")
	_ = selectCmd.MarkFlagRequired("size")

	rootCmd.AddCommand(serveCmd, selectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errNoMatch = errors.New("no stored size matches")

func runSelect(w io.Writer, data []byte, format metadata.Format, size string, opts ...resolver.Option) error {
	if !format.Valid() {
		return fmt.Errorf("format %q: %w", format, metadata.ErrUnknownFormat)
	}
	req := model.ParseSizeRequest(size)
	if req.IsEmpty() {
		return fmt.Errorf("invalid size %q", size)
	}
	md, err := metadata.Decode(format, data)
	if err != nil {
		return err
	}
	sel, ok := resolver.New(opts...).SelectBestSize(md.Catalog(""), req)
	if !ok {
		return fmt.Errorf("%w %s", errNoMatch, req)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sel)
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfiguration(configPath)
	if err != nil {
		return err
	}
	log, err := cfg.Logging.Prepare()
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("error creating db connection: %w", err)
	}
	defer db.Close()

	prober, err := newProber(cfg)
	if err != nil {
		return err
	}

	opts := append(cfg.ResolverOptions(), resolver.WithLogger(log))
	if prober != nil {
		opts = append(opts, resolver.WithProber(prober))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.New(attachments.NewRepo(db), resolver.New(opts...), log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error running server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newProber(cfg *config.Config) (resolver.ThumbProber, error) {
	switch cfg.Storage.Driver {
	case config.StorageS3:
		awsCfg := aws.NewConfig()
		if cfg.Storage.Region != "" {
			awsCfg = awsCfg.WithRegion(cfg.Storage.Region)
		}
		sess, err := session.NewSession(awsCfg)
		if err != nil {
			return nil, fmt.Errorf("error creating aws session: %w", err)
		}
		return storage.New(s3manager.NewDownloader(sess), aws.String(cfg.Storage.Bucket), cfg.Uploads.BaseDir), nil
	case config.StorageHTTP:
		return downloader.NewProber(downloader.New(nil)), nil
	}
	return nil, nil
}
