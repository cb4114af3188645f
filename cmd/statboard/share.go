package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/statboard/share"
)

func newShareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Create and open share links",
	}
	cmd.AddCommand(newShareEncodeCmd(a), newShareOpenCmd(a))
	return cmd
}

func newShareEncodeCmd(a *app) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "encode <measure>",
		Short: "Print the share link of a measure's chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.chart(cmd.Context(), args, sel)
			if err != nil {
				return err
			}
			link, err := a.shareLink(graph)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}
	sel.register(cmd)
	return cmd
}

func newShareOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <link>",
		Short: "Chart the graph a share link describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := share.Parse(args[0])
			if err != nil {
				return err
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			graph, err := s.ApplyShare(cmd.Context(), p)
			if err != nil {
				return err
			}
			if graph == nil {
				return fmt.Errorf("nothing to chart")
			}
			return a.render(cmd.OutOrStdout(), graph, func() { renderGraph(cmd.OutOrStdout(), graph) })
		},
	}
}
