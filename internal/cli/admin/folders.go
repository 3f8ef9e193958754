package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/apexfab/roofmate/internal/config"
	"github.com/apexfab/roofmate/internal/routing"
	"github.com/apexfab/roofmate/internal/storage"
	"github.com/spf13/cobra"
)

// FoldersCmd returns the folders command, a diagnostic for prefix resolution.
func FoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders <product-name>",
		Short: "Resolve a product to storage folder candidates",
		Long:  "Generate candidate storage prefixes for a product and, when S3 is configured, probe them for files",
		Args:  cobra.ExactArgs(1),
		RunE:  runFolders,
	}

	cmd.Flags().String("series", "", "Product series hint")
	cmd.Flags().String("section", "", "Catalog section hint")
	cmd.Flags().Bool("probe", false, "Probe candidates against configured storage")
	cmd.Flags().Bool("urls", false, "Print presigned download URLs for probed files (implies --probe)")

	return cmd
}

func runFolders(cmd *cobra.Command, args []string) error {
	series, _ := cmd.Flags().GetString("series")
	section, _ := cmd.Flags().GetString("section")

	product := routing.Product{
		Name:    args[0],
		Series:  series,
		Section: section,
	}

	candidates := routing.CandidatePrefixes(product)
	if len(candidates) == 0 {
		fmt.Println("no candidates (empty product name)")
		return nil
	}

	fmt.Println("candidates:")
	for _, prefix := range candidates {
		fmt.Printf("  %s\n", prefix)
	}

	probe, _ := cmd.Flags().GetBool("probe")
	urls, _ := cmd.Flags().GetBool("urls")
	if !probe && !urls {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasS3() {
		return fmt.Errorf("storage not configured: S3 endpoint and credentials required for --probe")
	}

	ctx := context.Background()
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	resolver := routing.NewResolverWithOptions(
		s3Client,
		time.Duration(cfg.ProbeTimeoutSeconds)*time.Second,
		cfg.GlobalDocKey,
	)
	result := resolver.Probe(ctx, candidates)

	switch result.Status {
	case routing.ProbeFound:
		fmt.Printf("found: %s (%d files)\n", result.Prefix, len(result.Files))
		for _, f := range result.Files {
			if urls {
				url, err := s3Client.GenerateDownloadURL(ctx, f.Key)
				if err != nil {
					fmt.Printf("  %s (url error: %v)\n", f.Key, err)
					continue
				}
				fmt.Printf("  %s\n    %s\n", f.Key, url)
			} else {
				fmt.Printf("  %s\n", f.Key)
			}
		}
	case routing.ProbeEmpty:
		fmt.Printf("empty: no candidate holds files (best guess: %s)\n", result.Prefix)
	case routing.ProbeAllFailed:
		fmt.Printf("failed: every candidate errored (storage unreachable?)\n")
	}

	return nil
}
