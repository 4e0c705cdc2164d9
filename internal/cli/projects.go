package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/erd-studio/engine/internal/services"
	"github.com/erd-studio/engine/internal/templates"
)

// NewProjectsCommand groups the project subcommands.
func NewProjectsCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"p"},
		Short:   "List, create, delete and repair projects",
	}
	cmd.AddCommand(
		newListCommand(rootOpts, open),
		newCreateCommand(rootOpts, open),
		newDeleteCommand(rootOpts, open),
		newRepairCommand(rootOpts, open),
	)
	return cmd
}

// withService opens the store, runs fn and reports its result.
func withService(cmd *cobra.Command, opts *RootOptions, open Opener, fn func(ctx context.Context, svc services.ProjectService) (any, error)) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, release, err := open(ctx, opts.Verbose)
	if err != nil {
		return f.Error(err)
	}
	defer func() { _ = release() }()

	out, err := fn(ctx, svc)
	if err != nil {
		return f.Error(err)
	}
	return f.Success(out)
}

func newListCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List projects, most recently updated first",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, open, func(ctx context.Context, svc services.ProjectService) (any, error) {
				items, _, err := svc.ListProjects(ctx, nil)
				return projectList(items), err
			})
		},
	}
}

func newCreateCommand(opts *RootOptions, open Opener) *cobra.Command {
	var name, template string
	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a project, optionally from a starter template",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, open, func(ctx context.Context, svc services.ProjectService) (any, error) {
				p, err := svc.CreateProject(ctx, &services.CreateProjectInput{Name: name, Template: templates.Name(template)})
				if err != nil {
					return nil, err
				}
				return projectCreated{ID: p.ID, Name: p.Name, Tables: len(p.Nodes), Relations: len(p.Edges)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&template, "template", string(templates.Blank), "starter template (blank|saas)")
	return cmd
}

func newDeleteCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a project",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, open, func(ctx context.Context, svc services.ProjectService) (any, error) {
				return projectDeleted{ID: args[0]}, svc.DeleteProject(ctx, args[0])
			})
		},
	}
}

func newRepairCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:           "repair <id>",
		Short:         "Re-route every edge of a project and save the result",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, opts, open, func(ctx context.Context, svc services.ProjectService) (any, error) {
				res, err := svc.RepairProject(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return projectRepaired{ID: args[0], Changed: res.Changed}, nil
			})
		},
	}
}
