package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/eagerapi"
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/record"
	"github.com/bitfsorg/eagerapi-go/storage"
)

// withStore opens the configured repository database for writing.
func (o *options) withStore(fn func(store *storage.BoltStore) error) error {
	dir, cfg, err := o.repoDir()
	if err != nil {
		return err
	}
	compression, err := cfg.StoreCompression()
	if err != nil {
		return err
	}
	store, err := storage.OpenBoltStore(eagerapi.DBPath(dir), compression)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

// readContent reads a file argument, or the literal text with --text.
func readContent(arg string, literal bool) ([]byte, error) {
	if literal {
		return []byte(arg), nil
	}
	return os.ReadFile(arg)
}

func newPutCmd(o *options) *cobra.Command {
	var (
		p1, p2, copyFrom string
		literal          bool
	)
	cmd := &cobra.Command{
		Use:   "put FILE",
		Short: "Store a file or tree record and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args[0], literal)
			if err != nil {
				return err
			}
			parent1, err := parseOptionalID(p1)
			if err != nil {
				return fmt.Errorf("--p1: %w", err)
			}
			parent2, err := parseOptionalID(p2)
			if err != nil {
				return fmt.Errorf("--p2: %w", err)
			}
			body := content
			if copyFrom != "" {
				src, err := parseKey(copyFrom)
				if err != nil {
					return fmt.Errorf("--copy: %w", err)
				}
				if body, err = record.EncodeRenameBody(src, content); err != nil {
					return err
				}
			}
			return o.withStore(func(store *storage.BoltStore) error {
				id, err := storage.AddRecord(store, parent1, parent2, body)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&p1, "p1", "", "First parent id")
	cmd.Flags().StringVar(&p2, "p2", "", "Second parent id")
	cmd.Flags().StringVar(&copyFrom, "copy", "", "Copy source as path@hex")
	cmd.Flags().BoolVar(&literal, "text", false, "Treat the argument as content instead of a file name")
	return cmd
}

func newCommitCmd(o *options) *cobra.Command {
	var (
		parents []string
		literal bool
	)
	cmd := &cobra.Command{
		Use:   "commit FILE",
		Short: "Store a commit record, add it to the graph and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readContent(args[0], literal)
			if err != nil {
				return err
			}
			ps, err := parseIDs(parents)
			if err != nil {
				return err
			}
			if len(ps) > 2 {
				return fmt.Errorf("a commit has at most two parents, got %d", len(ps))
			}
			var slots [2]hgid.ID
			copy(slots[:], ps)

			return o.withStore(func(store *storage.BoltStore) error {
				graph, err := dag.LoadBolt(store.DB())
				if err != nil {
					return err
				}
				id := hgid.Sum(record.Encode(slots[0], slots[1], text))
				names := make([]dag.Vertex, 0, len(ps))
				for _, p := range ps {
					names = append(names, dag.Vertex(p.Bytes()))
				}
				// The graph rejects unknown parents and duplicates before
				// anything is written.
				if _, err := graph.Add(dag.Vertex(id.Bytes()), names...); err != nil {
					return err
				}
				if _, err := storage.AddRecord(store, slots[0], slots[1], text); err != nil {
					return err
				}
				if err := dag.SaveBolt(store.DB(), graph); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&parents, "parent", nil, "Parent commit id (repeatable, at most two)")
	cmd.Flags().BoolVar(&literal, "text", false, "Treat the argument as the commit text instead of a file name")
	return cmd
}

func newBookmarkSetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark NAME HEX",
		Short: "Point a bookmark at a commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := hgid.FromHex(args[1])
			if err != nil {
				return err
			}
			return o.withStore(func(store *storage.BoltStore) error {
				return store.SetBookmark(args[0], id)
			})
		},
	}
}
