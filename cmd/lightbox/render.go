package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/pthm/lightbox"
	"github.com/pthm/lightbox/lib/dom"
	"github.com/pthm/lightbox/lib/metrics"
)

type renderFlags struct {
	config   string
	models   string
	item     int
	template bool
	metrics  bool
	timeout  time.Duration
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render PAGE",
		Short: "Open an activation link of a page and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger(cmd)
			if err != nil {
				return err
			}

			opts := lightbox.DefaultOptions()
			if flags.config != "" {
				f, err := os.Open(flags.config)
				if err != nil {
					return err
				}
				opts, err = lightbox.LoadOptions(f)
				f.Close()
				if err != nil {
					return err
				}
			}

			page, err := os.Open(args[0])
			if err != nil {
				return err
			}
			doc, err := dom.Parse(page)
			page.Close()
			if err != nil {
				return fmt.Errorf("parse page: %w", err)
			}

			vopts := []lightbox.ViewOption{lightbox.WithLogger(log)}
			var m *metrics.Metrics
			if flags.metrics {
				m = metrics.New("lightbox")
				vopts = append(vopts, lightbox.WithMetrics(m))
			}
			view, err := lightbox.New(doc, opts, vopts...)
			if err != nil {
				return err
			}
			if flags.models != "" {
				if err := addModels(view, flags.models); err != nil {
					return err
				}
			}
			view.Init()

			links := view.Links()
			if flags.item < 0 || flags.item >= len(links) {
				return fmt.Errorf("item %d out of range: page has %d activation links", flags.item, len(links))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()
			item := view.ItemFor(links[flags.item])
			res, err := lightbox.RenderItem(ctx, item)
			if err != nil {
				return err
			}
			if !res.Shown || !res.HasEvent("render-complete") {
				return fmt.Errorf("item %d was not displayed", flags.item)
			}

			w := cmd.OutOrStdout()
			if flags.template {
				if err := item.Viewer().Theme().Template().Templ().Render(ctx, w); err != nil {
					return err
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, res.Page)
			}
			if m != nil {
				return writeMetrics(w, m)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Options file (YAML)")
	cmd.Flags().StringVarP(&flags.models, "models", "m", "", "Theme models file (YAML)")
	cmd.Flags().IntVarP(&flags.item, "item", "i", 0, "Zero-based index of the activation link to open")
	cmd.Flags().BoolVar(&flags.template, "template", false, "Print only the rendered template")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "Print render metrics after the output")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "Maximum time to wait for rendering")

	return cmd
}

func writeMetrics(w io.Writer, m *metrics.Metrics) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func addModels(view *lightbox.View, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	models, err := lightbox.LoadModels(f)
	if err != nil {
		return err
	}
	for _, m := range models {
		if err := view.AddModel(m); err != nil {
			return err
		}
	}
	return nil
}
