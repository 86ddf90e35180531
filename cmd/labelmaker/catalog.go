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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"labelmaker/internal/catalog"
	"labelmaker/internal/fields"
	"labelmaker/internal/storage"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func (a *app) importCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			e, err := a.cat.Import(cmd.Context(), name, string(b))
			if err != nil {
				return err
			}
			t := fields.Parse(e.Content)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %d (%d fields, %s rows)\n",
				e.Name, e.ID, len(t.Headers), humanize.Comma(int64(len(t.Rows))))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "catalog name (default is the file name)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		order string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, ok := catalog.ParseOrder(order)
			if !ok {
				return fmt.Errorf("unknown order %q (want stored, asc or desc)", order)
			}
			if err := a.printList(cmd.Context(), cmd.OutOrStdout(), o); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			fs, ok := a.st.(*storage.FileStore)
			if !ok {
				return fmt.Errorf("--watch needs the file store, not %q", a.cfg.General.Store)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", fs.Path)
			return fs.Watch(cmd.Context(), func() {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := a.printList(cmd.Context(), cmd.OutOrStdout(), o); err != nil {
					a.log.Warn("list refresh failed", slog.Any("err", err))
				}
			})
		},
	}
	cmd.Flags().StringVar(&order, "order", "stored", "sort order: stored, asc or desc")
	cmd.Flags().BoolVar(&watch, "watch", false, "reprint when another process changes the catalog")
	return cmd
}

func (a *app) printList(ctx context.Context, out io.Writer, o catalog.Order) error {
	entries, err := a.cat.List(ctx, o)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No files imported yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED\tSIZE\tLAYOUT")
	for _, e := range entries {
		layout := "-"
		if e.Layout != nil {
			layout = "saved"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, humanize.Time(e.Timestamp),
			humanize.Bytes(uint64(len(e.Content))), layout)
	}
	return tw.Flush()
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a catalog entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.cat.Rename(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %d to %s\n", id, args[1])
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.cat.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the fields and preview cards of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			if err := s.Open(cmd.Context(), id); err != nil {
				return err
			}
			return printBinding(cmd.OutOrStdout(), s)
		},
	}
}
