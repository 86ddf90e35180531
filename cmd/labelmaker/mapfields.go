/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"labelmaker/internal/domain"
	"labelmaker/internal/session"
	"labelmaker/internal/units"
)

type mapOpts struct {
	rename  []string
	hide    []string
	show    []string
	order   []string
	del     []string
	qr      string
	qrPos   string
	width   float64
	height  float64
	unit    string
	save    bool
	noCards bool
}

func (a *app) mapCmd() *cobra.Command {
	var o mapOpts
	cmd := &cobra.Command{
		Use:   "map <id>",
		Short: "Edit the field mapping and preview settings of an entry",
		Long: `Opens an entry, applies the edits given as flags in this order:
rename, delete, order, hide, show, layout, qr. Prints the resulting fields and cards.
Nothing is written back unless --save is given.`,
		Args: cobra.ExactArgs(1),
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
			if err := applyMapOpts(s, cmd, o); err != nil {
				return err
			}
			if o.save {
				if err := s.SaveLayout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Layout saved.")
			}
			if o.noCards {
				return printFields(cmd.OutOrStdout(), s)
			}
			return printBinding(cmd.OutOrStdout(), s)
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&o.rename, "rename", nil, "rename a field, old=new (repeatable)")
	f.StringArrayVar(&o.hide, "hide", nil, "hide a field (repeatable)")
	f.StringArrayVar(&o.show, "show", nil, "show a hidden field (repeatable)")
	f.StringSliceVar(&o.order, "order", nil, "field order, comma separated; unnamed fields follow")
	f.StringArrayVar(&o.del, "delete", nil, "delete a field and its column (repeatable)")
	f.StringVar(&o.qr, "qr", "", "field whose value feeds the QR code; \"-\" unbinds")
	f.StringVar(&o.qrPos, "qr-pos", "", "QR position: none, left, right, top or bottom")
	f.Float64Var(&o.width, "width", 0, "card width")
	f.Float64Var(&o.height, "height", 0, "card height")
	f.StringVar(&o.unit, "unit", "", "unit for width and height: px, in, cm, mm or ratio")
	f.BoolVar(&o.save, "save", false, "write the mapping and settings back to the catalog")
	f.BoolVar(&o.noCards, "fields-only", false, "print the field list without cards")
	return cmd
}

func fieldIndex(s *session.Session, label string) (int, error) {
	for i, f := range s.Fields() {
		if f.Label == label {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", session.ErrUnknownField, label)
}

func applyMapOpts(s *session.Session, cmd *cobra.Command, o mapOpts) error {
	for _, r := range o.rename {
		from, to, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(to) == "" {
			return fmt.Errorf("--rename wants old=new, got %q", r)
		}
		i, err := fieldIndex(s, from)
		if err != nil {
			return err
		}
		if _, err := s.RenameField(i, to); err != nil {
			return err
		}
	}
	for _, label := range o.del {
		i, err := fieldIndex(s, label)
		if err != nil {
			return err
		}
		if _, err := s.DeleteField(i); err != nil {
			return err
		}
	}
	for pos, label := range o.order {
		i, err := fieldIndex(s, strings.TrimSpace(label))
		if err != nil {
			return err
		}
		if _, err := s.ReorderField(i, pos); err != nil {
			return err
		}
	}
	for _, label := range o.hide {
		if err := setHidden(s, label, true); err != nil {
			return err
		}
	}
	for _, label := range o.show {
		if err := setHidden(s, label, false); err != nil {
			return err
		}
	}

	l := s.Layout()
	changed := false
	if cmd.Flags().Changed("width") {
		l.CanvasWidth, changed = o.width, true
	}
	if cmd.Flags().Changed("height") {
		l.CanvasHeight, changed = o.height, true
	}
	if o.unit != "" {
		u, err := units.ParseUnit(o.unit)
		if err != nil {
			return err
		}
		l.WidthUnit, l.HeightUnit, changed = u, u, true
	}
	if changed {
		if err := s.SetLayout(l); err != nil {
			return err
		}
	}

	if o.qr != "" || o.qrPos != "" {
		label, pos := s.Layout().QRField, s.Layout().QRPosition
		if o.qr == "-" {
			label = ""
		} else if o.qr != "" {
			label = o.qr
		}
		if o.qrPos != "" {
			pos = domain.QRPosition(o.qrPos)
		}
		if err := s.SetQRField(label, pos); err != nil {
			return err
		}
	}
	return nil
}

func setHidden(s *session.Session, label string, hidden bool) error {
	i, err := fieldIndex(s, label)
	if err != nil {
		return err
	}
	if s.Fields()[i].Hidden == hidden {
		return nil
	}
	_, err = s.ToggleField(i)
	return err
}

func printFields(out io.Writer, s *session.Session) error {
	e, _ := s.ActiveEntry()
	fmt.Fprintf(out, "%s (%d)\n", e.Name, e.ID)
	if s.LayoutRestored() {
		fmt.Fprintln(out, "Saved field layout applied.")
	}
	for i, f := range s.Fields() {
		mark := " "
		if f.Hidden {
			mark = "-"
		}
		fmt.Fprintf(out, "  %s %d %s\n", mark, i, f.Label)
	}
	l := s.Layout()
	fmt.Fprintf(out, "Card: %g%s x %g%s, font %gpx", l.CanvasWidth, l.WidthUnit, l.CanvasHeight, l.HeightUnit, l.FontSize)
	if l.QRField != "" {
		fmt.Fprintf(out, ", QR %s from %q", l.QRPosition, l.QRField)
	}
	fmt.Fprintln(out)
	return nil
}

func printBinding(out io.Writer, s *session.Session) error {
	if err := printFields(out, s); err != nil {
		return err
	}
	p, err := s.Cards()
	if err != nil {
		return err
	}
	if p.NoData {
		fmt.Fprintln(out, "No data rows.")
		return nil
	}
	for _, c := range p.Cards {
		fmt.Fprintf(out, "\n[%d]\n", c.Row+1)
		for _, ln := range c.Lines {
			fmt.Fprintf(out, "  %s: %s\n", ln.Label, ln.Value)
		}
		if c.QR != nil {
			fmt.Fprintf(out, "  (QR %s) %s\n", c.QR.Position, c.QR.Payload)
		}
	}
	return nil
}
