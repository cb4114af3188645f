package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/share"
)

// ============================================================================
// MEASURES / LABELS / CHART
// ============================================================================

func newMeasuresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "measures [category]",
		Short: "List categories, or the measures of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				st, err := a.store()
				if err != nil {
					return err
				}
				categories, err := st.Categories(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), categories, func() { renderCategories(cmd.OutOrStdout(), categories) })
			}

			s, err := a.session()
			if err != nil {
				return err
			}
			measures, err := s.LoadCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), measures, func() { renderMeasures(cmd.OutOrStdout(), measures) })
		},
	}
}

func newLabelsCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "labels <measure> [filter]",
		Short: "Show the filter labels of a measure and their default state",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if _, err := s.SelectMeasure(cmd.Context(), args[0]); err != nil {
				return err
			}

			var groups []*engine.FilterGroup
			for _, g := range s.Groups(args[0]) {
				if len(args) == 2 && g.Filter.ID != args[1] {
					continue
				}
				g.Filter.Labels = engine.SearchLabels(g, search)
				groups = append(groups, g)
			}
			return a.render(cmd.OutOrStdout(), groups, func() { renderLabels(cmd.OutOrStdout(), groups) })
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Only labels containing this text")
	return cmd
}

// selection flags shared by chart and share encode.
type selection struct {
	chip string
	sets []string
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sel.chip, "chip", "", "Apply a preset chip instead of measures")
	cmd.Flags().StringArrayVar(&sel.sets, "set", nil, "Check exactly these labels: filter=label1,label2 (repeatable)")
}

func newChartCmd(a *app) *cobra.Command {
	var sel selection
	var saveTitle, subtitle string
	var withLink bool

	cmd := &cobra.Command{
		Use:   "chart [measure...]",
		Short: "Chart one or more measures",
		Example: `  statboard chart M-1
  statboard chart M-1 --set f-region=North,South --set f-gender=F
  statboard chart M-1 M-2 -o json
  statboard chart --chip ch1 --save "Claims vs payments"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.chart(cmd.Context(), args, sel)
			if err != nil {
				return err
			}
			if graph == nil {
				return fmt.Errorf("nothing to chart")
			}

			if saveTitle != "" {
				db, err := a.saved()
				if err != nil {
					return err
				}
				id, ok, err := db.Save(cmd.Context(), saveTitle, subtitle, graph)
				if err != nil {
					return err
				}
				if ok {
					a.logger.Info("graph saved", "id", id)
				} else {
					a.logger.Info("graph already saved", "id", id)
				}
			}

			if err := a.render(cmd.OutOrStdout(), graph, func() { renderGraph(cmd.OutOrStdout(), graph) }); err != nil {
				return err
			}
			if withLink {
				link, err := a.shareLink(graph)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&saveTitle, "save", "", "Save the chart under this title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Subtitle stored with --save")
	cmd.Flags().BoolVar(&withLink, "link", false, "Also print a share link")
	return cmd
}

// chart selects measures (or a chip) and applies --set selections.
func (a *app) chart(ctx context.Context, measureIDs []string, sel selection) (*engine.GraphData, error) {
	sets, err := parseSets(sel.sets)
	if err != nil {
		return nil, err
	}
	s, err := a.session()
	if err != nil {
		return nil, err
	}

	var graph *engine.GraphData
	switch {
	case sel.chip != "":
		graph, err = s.ApplyChip(ctx, sel.chip)
	case len(measureIDs) == 1:
		graph, err = s.SelectMeasure(ctx, measureIDs[0])
	case len(measureIDs) > 1:
		graph, err = s.SelectMultipleMeasures(ctx, measureIDs)
	default:
		return nil, fmt.Errorf("name a measure or --chip")
	}
	if err != nil || len(sets) == 0 {
		return graph, err
	}

	// multi mode mirrors label changes, so the first measure is enough
	_, active := s.State()
	if len(active) == 0 {
		return graph, nil
	}
	for _, set := range sets {
		s.SetAllLabels(active[0], set.filterID, "", false)
		for _, title := range set.labels {
			s.ToggleLabel(active[0], set.filterID, title)
		}
	}
	return s.Graph(), nil
}

func (a *app) shareLink(graph *engine.GraphData) (string, error) {
	p, err := share.FromGraph(graph)
	if err != nil {
		return "", err
	}
	return share.URL(a.cfg.ShareBase, p)
}

type labelSet struct {
	filterID string
	labels   []string
}

// parseSets reads "filter=label1,label2" flags. Duplicate labels collapse.
func parseSets(raw []string) ([]labelSet, error) {
	sets := make([]labelSet, 0, len(raw))
	for _, r := range raw {
		filterID, list, ok := strings.Cut(r, "=")
		filterID = strings.TrimSpace(filterID)
		if !ok || filterID == "" {
			return nil, fmt.Errorf("invalid --set %q: want filter=label1,label2", r)
		}

		set := labelSet{filterID: filterID}
		seen := make(map[string]bool)
		for _, title := range strings.Split(list, ",") {
			title = strings.TrimSpace(title)
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			set.labels = append(set.labels, title)
		}
		sets = append(sets, set)
	}
	return sets, nil
}
