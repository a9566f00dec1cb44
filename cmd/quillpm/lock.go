package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/quill-hdl/quillpm"
	"github.com/quill-hdl/quillpm/internal/manifest"
	"github.com/spf13/cobra"
)

var forceUpdate bool

func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Create or update quill.lock for the project in the current directory",
		RunE:  runLock,
	}
	cmd.Flags().BoolVar(&forceUpdate, "force-update", false, "widen locked dependencies to the newest version satisfying their requirement")
	bindFlag("force_update", cmd.Flags().Lookup("force-update"))
	return cmd
}

func runLock(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "quillpm"})

	root, err := manifest.Load(manifest.FileName)
	if err != nil {
		return fmt.Errorf("loading %s: %w", manifest.FileName, err)
	}

	cache := quillpm.NewDefaultCache(cacheDir)

	var lf *quillpm.Lockfile
	if _, err := os.Stat(quillpm.FileName); err == nil {
		lf, err = quillpm.Load(quillpm.FileName, cache, logger)
		if err != nil {
			return fmt.Errorf("loading %s: %w", quillpm.FileName, err)
		}
		modified, err := lf.Update(root, cfg.GetBool("force_update"))
		if err != nil {
			return fmt.Errorf("resolving dependencies: %w", err)
		}
		if !modified {
			cmd.Println("quill.lock is up to date")
			return nil
		}
	} else {
		lf, err = quillpm.New(root, cache, logger)
		if err != nil {
			return fmt.Errorf("resolving dependencies: %w", err)
		}
	}

	if err := lf.Save(quillpm.FileName); err != nil {
		return fmt.Errorf("writing %s: %w", quillpm.FileName, err)
	}

	cmd.Println("wrote", quillpm.FileName)
	return nil
}
