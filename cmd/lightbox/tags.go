package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/lightbox"
	"github.com/pthm/lightbox/lib/tagscan"
)

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags LAYOUT",
		Short: "List the template tags in a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			src := string(raw)
			for _, span := range tagscan.Scan(src) {
				tag := lightbox.ParseTag(span.Text(src))
				if tag == nil {
					continue
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", span.Start, tag.Name, tag.Prop, formatOptions(tag.Options))
			}
			return nil
		},
	}
}

func formatOptions(opts map[string]string) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+opts[k])
	}
	return strings.Join(parts, "|")
}
