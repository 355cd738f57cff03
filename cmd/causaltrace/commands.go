package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"causaltrace/internal/config"
	"causaltrace/internal/evaluate"
	"causaltrace/internal/frames"
	"causaltrace/internal/llm"
	"causaltrace/internal/prompt"
	"causaltrace/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type deps struct {
	openStore    func() (*store.Store, error)
	newCompleter func(ctx context.Context, apiKey string) (llm.Completer, error)
	apiKey       func() string
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "causaltrace",
		Short: "Evaluate causal-reasoning prompts against video frames",
		Long: `CausalTrace asks a multimodal model the ten rubric questions about a folder
of extracted video frames, using a prompt template, and records every answer.

Examples:
  causaltrace seed
  causaltrace run --frames ./frames/clip1 --template-id <id> --save
  causaltrace run --frames ./frames/clip1 --template-file my_prompt.txt --pacing 0s
  causaltrace evaluations list`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(d), newTemplatesCmd(d), newEvaluationsCmd(d), newSeedCmd(d))
	return root
}

func newRunCmd(d deps) *cobra.Command {
	var (
		framesDir    string
		templateID   string
		templateFile string
		model        string
		maxFrames    int
		pacing       time.Duration
		save         bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full rubric against a frames directory and print the record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if framesDir == "" {
				return errors.New("--frames is required")
			}
			if templateID != "" && templateFile != "" {
				return errors.New("use either --template-id or --template-file")
			}
			apiKey := d.apiKey()
			if apiKey == "" {
				return errors.New("GEMINI_API_KEY not set")
			}

			var st *store.Store
			if templateID != "" || save {
				var err error
				if st, err = d.openStore(); err != nil {
					return err
				}
				defer st.Close()
			}

			var content, name string
			switch {
			case templateFile != "":
				b, err := os.ReadFile(templateFile)
				if err != nil {
					return fmt.Errorf("read template file: %w", err)
				}
				content = string(b)
			case templateID != "":
				t, err := st.GetTemplate(cmd.Context(), templateID)
				if err != nil {
					return fmt.Errorf("load template %s: %w", templateID, err)
				}
				content, name = t.Template, t.Name
			}
			if content != "" && !prompt.HasPlaceholder(content) {
				log.Warn().Msg("template has no {question} placeholder; the question will not be inserted")
			}

			completer, err := d.newCompleter(cmd.Context(), apiKey)
			if err != nil {
				return err
			}
			rec := evaluate.New(completer,
				evaluate.WithSelector(frames.Selector{MaxFrames: maxFrames, VerifyImages: true}),
				evaluate.WithInterval(pacing),
			).RunFull(cmd.Context(), evaluate.RunInput{
				FramesDir:       framesDir,
				TemplateID:      templateID,
				TemplateContent: content,
				Model:           model,
			})
			rec.TemplateName = name
			rec.ModelLabel = config.ModelLabel(model)

			if save {
				if err := st.SaveEvaluation(cmd.Context(), rec); err != nil {
					return fmt.Errorf("save evaluation: %w", err)
				}
				log.Info().Str("evaluation_id", rec.ID).Msg("evaluation saved")
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&framesDir, "frames", "f", "", "Directory of extracted frames")
	f.StringVar(&templateID, "template-id", "", "Stored template to use")
	f.StringVar(&templateFile, "template-file", "", "File holding a template body")
	f.StringVarP(&model, "model", "m", config.Model(), "Model id")
	f.IntVar(&maxFrames, "max-frames", config.MaxFrames(), "Maximum frames sent per question")
	f.DurationVar(&pacing, "pacing", config.Pacing(), "Delay between provider calls (0s disables)")
	f.BoolVar(&save, "save", false, "Persist the record in the store")
	return cmd
}

func newTemplatesCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{Use: "templates", Short: "Manage prompt templates"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			ts, err := st.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range ts {
				fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Name, t.CreatedAt.Format(time.RFC3339))
			}
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print one template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			t, err := st.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		}),
	}

	var name, description, file string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a template from a file",
		Args:  cobra.NoArgs,
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read template file: %w", err)
			}
			t, err := st.CreateTemplate(cmd.Context(), name, description, string(b))
			if err != nil {
				return err
			}
			if !prompt.HasPlaceholder(t.Template) {
				log.Warn().Str("template_id", t.ID).Msg("template has no {question} placeholder")
			}
			return printJSON(cmd.OutOrStdout(), t)
		}),
	}
	add.Flags().StringVar(&name, "name", "", "Template name")
	add.Flags().StringVar(&description, "description", "", "Template description")
	add.Flags().StringVar(&file, "file", "", "File holding the template body")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			if err := st.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, show, add, del)
	return cmd
}

func newEvaluationsCmd(d deps) *cobra.Command {
	cmd := &cobra.Command{Use: "evaluations", Short: "Inspect stored evaluation records"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List evaluations, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			recs, err := st.ListEvaluations(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range recs {
				fmt.Fprintf(out, "%s\t%s\t%s\t%d frames\t%d/%d errors\n",
					r.ID, r.Timestamp.Format(time.RFC3339), r.Model, r.FramesAnalyzed, r.Errors(), len(r.Results))
			}
			return nil
		}),
	}
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print one evaluation record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			r, err := st.GetEvaluation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		}),
	}
	cmd.AddCommand(list, show)
	return cmd
}

func newSeedCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default CausalTrace template when the store has none",
		Args:  cobra.NoArgs,
		RunE: withStore(d, func(cmd *cobra.Command, st *store.Store, args []string) error {
			t, created, err := st.EnsureDefaultTemplate(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", t.Name, t.ID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "templates already present; nothing to do")
			}
			return nil
		}),
	}
}

func withStore(d deps, run func(cmd *cobra.Command, st *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := d.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return run(cmd, st, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
