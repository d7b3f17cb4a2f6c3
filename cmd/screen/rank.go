package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"screening-backend/internal/screenings"
	"screening-backend/internal/shared/util"
)

var rankCmd = &cobra.Command{
	Use:   "rank --job <file|text> <resume files...>",
	Short: "Rank resumes against a job description and store the ranking for confirm",
	RunE: func(cmd *cobra.Command, args []string) error {
		job, _ := cmd.Flags().GetString("job")
		jobDescription, err := readJobDescription(job)
		if err != nil {
			return err
		}
		uploads, err := loadUploads(args)
		if err != nil {
			return err
		}

		svc, err := buildService(cmd.Context(), cliConfig(), false)
		if err != nil {
			return err
		}
		snap, err := svc.Analyze(cmd.Context(), sessionID(), jobDescription, uploads)
		if err != nil {
			return err
		}
		return printRanking(cmd.OutOrStdout(), snap)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().String("job", "", "job description text, or a path to a file containing it")
	_ = rankCmd.MarkFlagRequired("job")
}

// readJobDescription returns the contents of job when it names a readable file, else job itself.
func readJobDescription(job string) (string, error) {
	if strings.TrimSpace(job) == "" {
		return "", errors.New("job description is required")
	}
	info, err := os.Stat(job)
	if err != nil || info.IsDir() {
		return job, nil
	}
	b, err := os.ReadFile(job)
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	return string(b), nil
}

func loadUploads(paths []string) ([]screenings.Upload, error) {
	uploads := make([]screenings.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		name, err := util.SanitizeFileName(filepath.Base(p))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		uploads = append(uploads, screenings.Upload{FileName: name, Data: data})
	}
	return uploads, nil
}

func printRanking(w io.Writer, snap screenings.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tFILE\tSCORE\tNAME\tEMAIL")
	for i, e := range snap.Entries {
		id, _ := snap.Identity(e.FileName)
		email := "-"
		if id.HasEmail() {
			email = id.Email
		}
		name := id.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\t%s\n", i+1, e.FileName, e.Score, name, email)
	}
	return tw.Flush()
}
