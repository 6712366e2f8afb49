package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfsorg/eagerapi-go/eagerapi"
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/location"
)

// repoName is passed as the repository selector; a local repository
// ignores it.
const repoName = "local"

func newHealthCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				meta, err := repo.Health(cmd.Context())
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), OutputFormat(o.format), meta)
			})
		},
	}
}

func newFilesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files PATH@HEX...",
		Short: "Fetch file content and parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseKeys(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.Files(cmd.Context(), repoName, keys)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
}

func newHistoryCmd(o *options) *cobra.Command {
	var length uint32
	cmd := &cobra.Command{
		Use:   "history PATH@HEX...",
		Short: "Walk file history, following renames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseKeys(args)
			if err != nil {
				return err
			}
			var lp *uint32
			if cmd.Flags().Changed("length") {
				lp = &length
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.History(cmd.Context(), repoName, keys, lp)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
	cmd.Flags().Uint32Var(&length, "length", 0, "Depth hint (accepted, ignored)")
	return cmd
}

func newTreesCmd(o *options) *cobra.Command {
	attrs := eagerapi.DefaultTreeAttributes()
	cmd := &cobra.Command{
		Use:   "trees PATH@HEX...",
		Short: "Fetch tree entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseKeys(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.Trees(cmd.Context(), repoName, keys, &attrs)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
	cmd.Flags().BoolVar(&attrs.ManifestBlob, "blob", true, "Include the tree blob")
	cmd.Flags().BoolVar(&attrs.Parents, "parents", true, "Include parents")
	cmd.Flags().BoolVar(&attrs.ChildMetadata, "child-metadata", false, "Request child metadata (unsupported)")
	return cmd
}

func newRevlogCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revlog HEX...",
		Short: "Fetch raw commit records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.CommitRevlogData(cmd.Context(), repoName, ids)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
}

func newKnownCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "known HEX...",
		Short: "Report which commits the store holds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.CommitKnown(cmd.Context(), repoName, ids)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
}

func newGraphCmd(o *options) *cobra.Command {
	var heads, common []string
	cmd := &cobra.Command{
		Use:   "graph --head HEX [--common HEX]",
		Short: "List commits reachable from heads but not from common",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := parseIDs(heads)
			if err != nil {
				return err
			}
			c, err := parseIDs(common)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.CommitGraph(cmd.Context(), repoName, h, c)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
	cmd.Flags().StringSliceVar(&heads, "head", nil, "Head commit (repeatable)")
	cmd.Flags().StringSliceVar(&common, "common", nil, "Commit the client already has (repeatable)")
	return cmd
}

func newBookmarksCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks NAME...",
		Short: "Resolve bookmark names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.Bookmarks(cmd.Context(), repoName, args)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
}

func newCloneCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clone",
		Short: "Export the whole commit graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				data, err := repo.CloneData(cmd.Context(), repoName)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), OutputFormat(o.format), data)
			})
		},
	}
}

func newPullCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pull-ff OLD NEW",
		Short: "Export the commits NEW adds over OLD",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				data, err := repo.PullFastForwardMaster(cmd.Context(), repoName, ids[0], ids[1])
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), OutputFormat(o.format), data)
			})
		},
	}
}

func newHashToLocationCmd(o *options) *cobra.Command {
	var heads []string
	cmd := &cobra.Command{
		Use:   "hash-to-location --head HEX HEX...",
		Short: "Express commits relative to master heads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseIDs(heads)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.CommitHashToLocation(cmd.Context(), repoName, h, ids)
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
	cmd.Flags().StringSliceVar(&heads, "head", nil, "Master head (repeatable)")
	return cmd
}

func newLocationToHashCmd(o *options) *cobra.Command {
	var (
		distance uint64
		count    uint64
	)
	cmd := &cobra.Command{
		Use:   "location-to-hash DESCENDANT",
		Short: "Resolve ancestors at a distance from a descendant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := hgid.FromHex(args[0])
			if err != nil {
				return err
			}
			req := location.Request{Location: location.Location{Descendant: d, Distance: distance}, Count: count}
			return o.withRepo(cmd, func(repo *eagerapi.Repo) error {
				f, err := repo.CommitLocationToHash(cmd.Context(), repoName, []location.Request{req})
				if err != nil {
					return err
				}
				return writeBatch(cmd.Context(), cmd.OutOrStdout(), OutputFormat(o.format), f)
			})
		},
	}
	cmd.Flags().Uint64Var(&distance, "distance", 0, "First-parent steps below the descendant")
	cmd.Flags().Uint64Var(&count, "count", 1, "Number of consecutive ancestors")
	return cmd
}
