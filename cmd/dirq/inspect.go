package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"
)

func newInspectCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Render the queue's on-disk bucket/element layout as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			tree, err := buildInspectionTree(flags.dir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tree.Print())
			return nil
		},
	}
	return cmd
}

func buildInspectionTree(root string) (gotree.Tree, error) {
	tree := gotree.New(root)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		info, err := os.Stat(filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			tree.Add(name)
			continue
		}
		branch := tree.Add(name)
		if err := addEntryCounts(branch, filepath.Join(root, name)); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func addEntryCounts(branch gotree.Tree, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		branch.Add(name)
	}
	return nil
}
