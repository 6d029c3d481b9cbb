package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/docrank/internal/pipeline"
	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/pkg/types"
)

type rankOptions struct {
	inputDir    string
	persona     string
	personaFile string
	job         string
	jobFile     string
	output      string
	topK        int
	workers     int
}

func rankCmd(a *app) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the sections of every document in a directory",
		Long: `Rank the page sections of every supported document in the input
directory and write the report as JSON.

The persona and job default to persona.txt and job.txt inside the input
directory; those two files are not treated as documents.

Examples:
  docrank rank --input-dir ./data
  docrank rank --input-dir ./docs --persona "PhD researcher" --job "Write a literature review" --output review.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputDir, "input-dir", "i", "", "directory of documents (default from config: ./data)")
	cmd.Flags().StringVar(&opts.persona, "persona", "", "persona text; overrides --persona-file")
	cmd.Flags().StringVar(&opts.personaFile, "persona-file", "", "file holding the persona (default persona.txt in the input dir)")
	cmd.Flags().StringVar(&opts.job, "job", "", "job-to-be-done text; overrides --job-file")
	cmd.Flags().StringVar(&opts.jobFile, "job-file", "", "file holding the job to be done (default job.txt in the input dir)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "report path (default from config: output.json)")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "number of sections to report (default from config: 5)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "documents read concurrently (default: number of CPUs)")

	return cmd
}

func runRank(cmd *cobra.Command, a *app, opts *rankOptions) error {
	defer a.close()

	cfg := a.cfg
	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		cfg.Input.Dir = opts.inputDir
	}
	if flags.Changed("output") {
		cfg.Input.OutputFile = opts.output
	}
	if flags.Changed("top-k") {
		cfg.Ranking.TopK = opts.topK
	}
	if flags.Changed("workers") {
		cfg.Ranking.Workers = opts.workers
	}

	// config file names are relative to the input dir, flag paths to the cwd
	personaPath := cfg.ResolveInputFile(cfg.Input.PersonaFile)
	if flags.Changed("persona-file") {
		personaPath = opts.personaFile
	}
	jobPath := cfg.ResolveInputFile(cfg.Input.JobFile)
	if flags.Changed("job-file") {
		jobPath = opts.jobFile
	}

	persona, err := textOrFile("persona", opts.persona, personaPath)
	if err != nil {
		return err
	}
	job, err := textOrFile("job", opts.job, jobPath)
	if err != nil {
		return err
	}
	// fail on blank persona/job before any document is touched
	if _, err := types.BuildQuery(persona, job); err != nil {
		return err
	}

	docs, err := pipeline.DiscoverDocuments(cfg.Input.Dir, personaPath, jobPath)
	if err != nil {
		return &types.InputError{Field: "input_dir", Reason: err.Error()}
	}
	if len(docs) == 0 {
		a.logger.Warn("no_documents", slog.String("dir", cfg.Input.Dir))
	}

	runner, err := a.runner()
	if err != nil {
		return err
	}

	res, err := runner.Run(cmd.Context(), pipeline.Request{
		Documents: docs,
		Persona:   persona,
		Job:       job,
		TopK:      cfg.Ranking.TopK,
	})
	if err != nil {
		return err
	}

	if err := report.WriteFile(cfg.Input.OutputFile, res.Report); err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "[skip] %s: %v\n", f.Document, f.Err)
	}
	if res.ID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "[history] report %s\n", res.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[ok] JSON saved to %s\n", cfg.Input.OutputFile)
	return nil
}

// textOrFile returns text when set, else the trimmed content of path
func textOrFile(field, text, path string) (string, error) {
	if text != "" {
		return text, nil
	}
	loaded, err := pipeline.LoadText(path)
	if err != nil {
		return "", &types.InputError{Field: field, Reason: "could not be read: " + err.Error()}
	}
	return loaded, nil
}
