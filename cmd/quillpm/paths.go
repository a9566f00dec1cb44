package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/quill-hdl/quillpm"
	"github.com/spf13/cobra"
)

var dstDir string

func newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print (project, src, dst) triples for the locked dependency set",
		RunE:  runPaths,
	}
	cmd.Flags().StringVar(&dstDir, "dst", "build", "base destination directory for generated output")
	bindFlag("dst", cmd.Flags().Lookup("dst"))
	return cmd
}

func runPaths(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "quillpm"})

	cache := quillpm.NewDefaultCache(cacheDir)
	lf, err := quillpm.Load(quillpm.FileName, cache, logger)
	if err != nil {
		return fmt.Errorf("loading %s: %w", quillpm.FileName, err)
	}

	triples, err := lf.Paths(cfg.GetString("dst"))
	if err != nil {
		return fmt.Errorf("enumerating paths: %w", err)
	}

	sort.Slice(triples, func(i, j int) bool {
		if triples[i].Project != triples[j].Project {
			return triples[i].Project < triples[j].Project
		}
		return triples[i].Src < triples[j].Src
	})

	for _, t := range triples {
		cmd.Printf("%s\t%s\t%s\n", t.Project, t.Src, t.Dst)
	}
	return nil
}
