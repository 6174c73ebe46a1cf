package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/app"
	"github.com/JakeFAU/binary-blog/internal/clock/system"
	"github.com/JakeFAU/binary-blog/internal/export"
	"github.com/JakeFAU/binary-blog/internal/resolver"
	gcsstorage "github.com/JakeFAU/binary-blog/internal/storage/gcs"
	localstorage "github.com/JakeFAU/binary-blog/internal/storage/local"
	memorystorage "github.com/JakeFAU/binary-blog/internal/storage/memory"
)

// dryRunScheme selects the in-memory store.
const dryRunScheme = "mem://"

func newExportCmd() *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes the built site to a directory or GCS bucket",
		Long: `Builds the content tree and writes every resource, plus a .deflate
sibling for each, to --dest. A gs://bucket/prefix destination uploads to
Google Cloud Storage using application default credentials. mem:// is a dry
run: objects are kept in memory and listed instead of written. Anything else
is treated as a local directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			if dest == "" {
				dest = e.cfg.Export.Dest
			}
			if dest == "" {
				return fmt.Errorf("--dest or export.dest is required")
			}

			site, err := app.BuildSite(e.cfg, e.sources, system.New(), e.logger.Named("build"))
			if err != nil {
				return err
			}

			var dryRun *memorystorage.BlobStore
			var store export.BlobStore
			closeStore := func() {}
			if strings.HasPrefix(dest, dryRunScheme) {
				dryRun = memorystorage.NewBlobStore()
				store = dryRun
			} else {
				store, closeStore, err = openStore(cmd.Context(), dest, e.cfg.Cache.MaxAgeSeconds, e.logger)
				if err != nil {
					return err
				}
			}
			defer closeStore()

			exp, err := export.New(store, e.logger.Named("export"))
			if err != nil {
				return fmt.Errorf("create exporter: %w", err)
			}
			res, err := exp.Export(cmd.Context(), site.Tree)
			if err != nil {
				return fmt.Errorf("export site: %w", err)
			}
			if dryRun != nil {
				if err := listObjects(cmd.OutOrStdout(), dryRun); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d objects (%d bytes) to %s\n", res.Objects, res.Bytes, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory, gs://bucket/prefix or mem:// for a dry run")
	return cmd
}

func listObjects(out io.Writer, store *memorystorage.BlobStore) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OBJECT\tCONTENT-TYPE\tBYTES")
	for _, path := range store.Paths() {
		obj, _ := store.Get(path)
		fmt.Fprintf(w, "%s\t%s\t%d\n", path, obj.ContentType, len(obj.Data))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write object listing: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, dest string, maxAge int, logger *zap.Logger) (export.BlobStore, func(), error) {
	if !strings.HasPrefix(dest, "gs://") {
		store, err := localstorage.New(localstorage.Config{BaseDir: dest})
		if err != nil {
			return nil, nil, fmt.Errorf("local blob store init failed: %w", err)
		}
		return store, func() {}, nil
	}

	gcsCfg, err := gcsstorage.ParseURI(dest)
	if err != nil {
		return nil, nil, err
	}
	if maxAge <= 0 {
		maxAge = resolver.DefaultMaxAge
	}
	gcsCfg.CacheControl = fmt.Sprintf("public, max-age=%d", maxAge)
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("gcs client init failed: %w", err)
	}
	store, err := gcsstorage.New(client, gcsCfg)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("gcs blob store init failed: %w", err)
	}
	logger.Debug("GCS export target", zap.String("bucket", gcsCfg.Bucket), zap.String("prefix", gcsCfg.Prefix))
	return store, func() {
		if err := client.Close(); err != nil {
			logger.Warn("gcs client close failed", zap.Error(err))
		}
	}, nil
}
