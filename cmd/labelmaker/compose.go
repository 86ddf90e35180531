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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/session"
	"labelmaker/internal/storage"
)

// Label documents live in plain JSON files next to the user's work, written through a
// FileStore so every change keeps a backup.

func (a *app) composeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Create and edit label documents",
	}
	cmd.AddCommand(a.composeNewCmd(), a.composeAddCmd(), a.composeAlignCmd(), a.composeOrientCmd())
	return cmd
}

func (a *app) composeNewCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "new <doc.json>",
		Short:       "Write the starter label to a new document",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.NewFileStore(args[0])
			if !force {
				if b, err := st.Get(cmd.Context()); err != nil || b != nil {
					return fmt.Errorf("%s already exists (use --force to replace it)", args[0])
				}
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			if err := saveDoc(cmd.Context(), st, s); err != nil {
				return err
			}
			return printDoc(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing document")
	return cmd
}

func (a *app) composeAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "add <doc.json> <text|rect|qr|image>",
		Short:       "Add an element with its defaults",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editDoc(cmd, args[0], func(s *session.Session) error {
				id, err := s.AddElement(domain.Kind(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
				return nil
			})
		},
	}
}

func (a *app) composeAlignCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "align <doc.json>",
		Short:       "Stack visible elements into the two-column layout",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editDoc(cmd, args[0], func(s *session.Session) error {
				placed, err := s.AutoAlign()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Placed %d elements\n", len(placed))
				return nil
			})
		},
	}
}

func (a *app) composeOrientCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "orient <doc.json> <landscape|portrait>",
		Short:       "Set the canvas orientation",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editDoc(cmd, args[0], func(s *session.Session) error {
				return s.SetOrientation(domain.Orientation(args[1]))
			})
		},
	}
}

// editDoc loads path into a session, runs fn and writes the result back.
func (a *app) editDoc(cmd *cobra.Command, path string, fn func(*session.Session) error) error {
	st := storage.NewFileStore(path)
	b, err := st.Get(cmd.Context())
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%s does not exist (create it with compose new)", path)
	}
	var doc domain.LabelDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	s, err := a.newSession()
	if err != nil {
		return err
	}
	if err := s.LoadDocument(doc); err != nil {
		return err
	}
	if err := fn(s); err != nil {
		if errors.Is(err, domain.ErrUnknownKind) {
			return fmt.Errorf("%w (want one of %v)", err, domain.Kinds)
		}
		return err
	}
	if err := saveDoc(cmd.Context(), st, s); err != nil {
		return err
	}
	return printDoc(cmd.OutOrStdout(), s)
}

func saveDoc(ctx context.Context, st *storage.FileStore, s *session.Session) error {
	b, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return err
	}
	return st.Put(ctx, append(b, '\n'))
}

func printDoc(out io.Writer, s *session.Session) error {
	c := s.Canvas()
	fmt.Fprintf(out, "Canvas %g x %g %s (%s)\n", c.Width, c.Height, c.Unit, c.Orientation)
	for i, e := range s.Elements() {
		b := e.Common()
		flags := ""
		if b.Hidden {
			flags += " hidden"
		}
		if b.Locked {
			flags += " locked"
		}
		fmt.Fprintf(out, "  %d %-8s %-5s at (%g, %g) %q%s\n", i, b.ID, e.Kind(), b.X, b.Y, elements.Describe(e), flags)
	}
	return nil
}
