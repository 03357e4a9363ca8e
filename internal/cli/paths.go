package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/learnpath-client/internal/tui"
	"github.com/jrsteele09/learnpath-client/paths"
	"github.com/jrsteele09/learnpath-client/paths/authoring"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// draftFile is the on-disk form of a learning path draft. JSON documents
// parse as well since YAML is a superset.
type draftFile struct {
	Title        string          `yaml:"title"`
	Description  string          `yaml:"description"`
	Requirements string          `yaml:"requirements"`
	Difficulty   string          `yaml:"difficulty"`
	Duration     int             `yaml:"duration"`
	Tags         []string        `yaml:"tags"`
	Tips         string          `yaml:"tips"`
	Milestones   []milestoneFile `yaml:"milestones"`
}

type milestoneFile struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	EstimatedDays int      `yaml:"estimatedDays"`
	Resources     []string `yaml:"resources"`
	Tips          string   `yaml:"tips"`
}

func readDraftFile(r io.Reader) (draftFile, error) {
	var df draftFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		return draftFile{}, fmt.Errorf("[paths create] invalid draft file: %w", err)
	}
	return df, nil
}

// applyDraft replays df through the form setters so every guard the
// interactive wizard runs also applies to files.
func applyDraft(form *authoring.Form, df draftFile) authoring.Outcome {
	steps := []func() authoring.Outcome{
		func() authoring.Outcome { return form.SetTitle(df.Title) },
		func() authoring.Outcome { return form.SetDescription(df.Description) },
	}
	if df.Difficulty != "" {
		steps = append(steps, func() authoring.Outcome { return form.SetDifficulty(paths.Difficulty(df.Difficulty)) })
	}
	if df.Duration != 0 {
		steps = append(steps, func() authoring.Outcome { return form.SetDuration(df.Duration) })
	}
	for _, step := range steps {
		if out := step(); !out.OK {
			return out
		}
	}
	form.SetRequirements(df.Requirements)
	form.SetTips(df.Tips)
	for _, tag := range df.Tags {
		form.AddTag(tag)
	}

	for i, m := range df.Milestones {
		if i > 0 {
			if out := form.AddMilestone(); !out.OK {
				return out
			}
		}
		form.SetMilestoneTitle(i, m.Title)
		form.SetMilestoneDescription(i, m.Description)
		form.SetMilestoneTips(i, m.Tips)
		if m.EstimatedDays != 0 {
			if out := form.SetMilestoneEstimatedDays(i, m.EstimatedDays); !out.OK {
				return out
			}
		}
		for _, r := range m.Resources {
			form.AddResource(i, r)
		}
	}
	return form.GoTo(authoring.StepPreview)
}

func newPathsCommand(load AppLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Browse and author learning paths",
	}
	cmd.AddCommand(newPathsListCommand(load), newPathsShowCommand(load), newPathsCreateCommand(load))
	return cmd
}

func newPathsListCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List public learning paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			list, err := app.Paths.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				outln(cmd, "No learning paths yet")
			}
			for _, p := range list {
				outf(cmd, "%s  %s  (%s, %d milestones)\n", p.ID, p.Title, p.Difficulty, len(p.Milestones))
			}
			return nil
		},
	}
}

func newPathsShowCommand(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path-id>",
		Short: "Show a learning path and its milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			p, err := app.Paths.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outln(cmd, tui.RenderPath(p))
			return nil
		},
	}
}

func newPathsCreateCommand(load AppLoader) *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Author a new learning path",
		Long: `Author a new learning path. Without --file an interactive wizard walks
through the basic information, the milestones and a preview. With --file
the draft is read from a YAML or JSON document and submitted directly.`,
		Example: `  learnpath paths create
  learnpath paths create --file rust.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			form, err := authoring.NewForm(app.Paths, app.Store)
			if err != nil {
				return err
			}

			if file == "" {
				id, err := tui.NewWizard(form, cmd.OutOrStdout()).Run(cmd.Context())
				if err != nil {
					return err
				}
				outf(cmd, "Created learning path %s\n", id)
				return nil
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("[paths create] %w", err)
			}
			defer f.Close()
			df, err := readDraftFile(f)
			if err != nil {
				return err
			}
			if out := applyDraft(form, df); !out.OK {
				return out.Err()
			}

			outln(cmd, tui.RenderDraft(form.Draft()))
			if dryRun {
				if _, out := form.Payload(); !out.OK {
					return out.Err()
				}
				outln(cmd, "Draft is valid, nothing submitted")
				return nil
			}
			id, out := form.Submit(cmd.Context())
			if !out.OK {
				return out.Err()
			}
			outf(cmd, "Created learning path %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the draft from a YAML or JSON file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and preview without submitting")
	return cmd
}
