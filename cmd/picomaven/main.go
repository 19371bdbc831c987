// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jploot/picomaven/pkg/manifest"
	"github.com/jploot/picomaven/pkg/registry"
	"github.com/jploot/picomaven/pkg/resolve"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	out        = flag.String("out", "", "download root directory")
	workers    = flag.Int("workers", 4, "maximum number of artifacts resolved concurrently")
	repoFlag   = flag.String("repo", "", "comma-separated list of repository base URLs, tried in order")
	manifestFl = flag.String("manifest", "", "path to a YAML manifest (alternative to positional coordinates)")
	transitive = flag.Bool("transitive", true, "expand transitive dependencies for positional coordinates")
	userAgent  = flag.String("user-agent", "picomaven/1.0", "User-Agent header sent with every request")
	rateLimit  = flag.Duration("rate-limit", 0, "minimum interval between outgoing requests (0 disables rate limiting)")
)

var rootCmd = &cobra.Command{
	Use:   "picomaven [subcommand]",
	Short: "A lightweight resolver and downloader for Maven-style repositories",
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [group:artifact:version[:classifier] ...]",
	Short: "Resolve and download one or more artifacts, optionally expanding their transitive dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		if *out == "" {
			return errors.New("-out is required")
		}
		if len(args) == 0 && *manifestFl == "" {
			return errors.New("either positional coordinates or -manifest must be given")
		}

		var repos []string
		var deps []resolve.Dependency

		if *manifestFl != "" {
			f, err := os.Open(*manifestFl)
			if err != nil {
				return errors.Wrap(err, "opening manifest")
			}
			defer f.Close()
			m, err := manifest.Decode(f)
			if err != nil {
				return err
			}
			repos = m.Repositories
			deps, err = m.Dependencies()
			if err != nil {
				return err
			}
		}

		if *repoFlag != "" {
			for _, c := range strings.Split(*repoFlag, ",") {
				if c = strings.TrimSpace(c); c != "" {
					repos = append(repos, c)
				}
			}
		}
		for _, arg := range args {
			coord, err := manifest.ParseCoordinate(arg)
			if err != nil {
				return err
			}
			deps = append(deps, resolve.Dependency{Coordinate: coord, Transitive: *transitive})
		}
		if len(repos) == 0 {
			return errors.New("no repositories configured: pass -repo or include repositories in -manifest")
		}

		var basic registry.BasicClient = &registry.WithUserAgent{BasicClient: http.DefaultClient, UserAgent: *userAgent}
		if *rateLimit > 0 {
			basic = &registry.RateLimitedClient{BasicClient: basic, Ticker: time.NewTicker(*rateLimit)}
		}
		client := &registry.HTTPClient{Client: basic}
		pool := resolve.NewPool(cmd.Context(), *workers)
		results := resolve.Resolve(cmd.Context(), *out, repos, deps, pool, client)

		failed := false
		for _, r := range results {
			printResult(cmd.OutOrStdout(), r, 0)
			if !r.Success {
				failed = true
			}
		}
		if failed {
			return errors.New("one or more root dependencies failed to resolve")
		}
		return nil
	},
}

func printResult(w io.Writer, r *resolve.DownloadResult, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if r.Success {
		fmt.Fprintf(w, "%s%s -> %s\n", indent, r.Dependency.Coordinate, r.LocalPath)
	} else {
		fmt.Fprintf(w, "%s%s FAILED: %v\n", indent, r.Dependency.Coordinate, r.Err)
	}
	for _, child := range r.Transitive {
		printResult(w, child, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().AddGoFlag(flag.Lookup("out"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("workers"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("repo"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("manifest"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("transitive"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("user-agent"))
	resolveCmd.Flags().AddGoFlag(flag.Lookup("rate-limit"))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
