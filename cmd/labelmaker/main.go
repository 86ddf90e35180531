/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"labelmaker/internal/catalog"
	"labelmaker/internal/config"
	"labelmaker/internal/crash"
	applog "labelmaker/internal/log"
	"labelmaker/internal/session"
	"labelmaker/internal/storage"
	"labelmaker/internal/telemetry"
	"labelmaker/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{out: os.Stdout}
	defer crash.Recover(&a.crash)
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// skipStore marks commands that run without opening the catalog.
const skipStore = "skip-store"

type app struct {
	cfgFile string
	store   string
	dataDir string

	out   io.Writer
	cfg   config.AppConfig
	st    storage.Store
	cat   *catalog.Catalog
	tel   *telemetry.Client
	log   *slog.Logger
	crash crash.Target
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "labelmaker",
		Short:         "Compose labels and bind them to imported CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is the user config dir)")
	pf.StringVar(&a.store, "store", "", "catalog store: file, sqlite or memory")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory holding the catalog")

	root.AddCommand(
		a.versionCmd(),
		a.importCmd(),
		a.listCmd(),
		a.renameCmd(),
		a.deleteCmd(),
		a.showCmd(),
		a.mapCmd(),
		a.composeCmd(),
		a.bundleCmd(),
	)
	return root
}

// run executes one command line and releases the catalog store afterwards.
func (a *app) run(ctx context.Context, args []string) error {
	root := a.root()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if terr := a.teardown(); err == nil {
		err = terr
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
	}
	if a.store != "" {
		cfg.General.Store = a.store
	}
	if a.dataDir != "" {
		cfg.General.DataDir = a.dataDir
	}
	a.cfg = cfg
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	a.log = applog.WithComponent("cli")
	a.crash.DataDir = cfg.General.DataDir

	a.tel = telemetry.New(telemetry.FromEnv())
	a.crash.Telemetry = a.tel
	a.tel.Event("command", map[string]any{"cmd": cmd.CommandPath(), "store": cfg.General.Store})

	if cmd.Annotations[skipStore] != "" {
		return nil
	}
	st, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	a.st = st
	a.cat = catalog.New(st)
	a.log.Debug("catalog opened", slog.String("store", cfg.General.Store), slog.String("data_dir", cfg.General.DataDir))
	return nil
}

func (a *app) teardown() error {
	if a.tel != nil {
		a.tel.Close()
		a.tel = nil
	}
	if a.st == nil {
		return nil
	}
	st := a.st
	a.st, a.cat = nil, nil
	return st.Close()
}

// newSession starts a session over the catalog using the configured editor options.
func (a *app) newSession() (*session.Session, error) {
	s, err := session.New(a.cat, session.OptionsFromConfig(a.cfg))
	if err != nil {
		return nil, err
	}
	a.crash.Session = s
	return s, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
