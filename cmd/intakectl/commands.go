package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/templates"
)

var errSheetsDisabled = errors.New("spreadsheet log is not configured (google credentials and spreadsheet_id are required)")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the mail transport and spreadsheet access",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel, cfg, s, err := environment(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		out := cmd.OutOrStdout()
		failed := false

		if err := s.Transport.Verify(ctx); err != nil {
			failed = true
			fmt.Fprintf(out, "mail (%s):  FAIL  %v\n", cfg.Email.Provider, err)
		} else {
			fmt.Fprintf(out, "mail (%s):  OK\n", cfg.Email.Provider)
		}

		if s.Sheets == nil {
			fmt.Fprintln(out, "sheets:       SKIP  not configured")
		} else if title, err := s.Sheets.Verify(ctx); err != nil {
			failed = true
			fmt.Fprintf(out, "sheets:       FAIL  %v\n", err)
		} else {
			fmt.Fprintf(out, "sheets:       OK    %q\n", title)
		}

		if failed {
			return errors.New("verification failed")
		}
		return nil
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Manage the submission spreadsheet",
}

var sheetsSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create every submission sheet and its header row",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel, _, s, err := environment(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		if s.Sheets == nil {
			return errSheetsDisabled
		}
		if err := s.Sheets.Setup(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sheets ready")
		return nil
	},
}

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Manage stored resumes",
}

var driveCreateFolderCmd = &cobra.Command{
	Use:   "create-folder [name]",
	Short: "Create a Drive folder for resumes and print its ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, _, s, err := environment(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		if s.Drive == nil {
			return errors.New("drive storage is not configured")
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		id, err := s.Drive.CreateFolder(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var driveDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored resume by file ID (Drive) or object key (MinIO)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, _, s, err := environment(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		switch {
		case s.Drive != nil:
			err = s.Drive.Delete(ctx, args[0])
		case s.MinIO != nil:
			err = s.MinIO.Delete(ctx, args[0])
		default:
			return errors.New("no file storage is configured")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg.Redacted())
	},
}

var previewFormat string

var previewCmd = &cobra.Command{
	Use:   "preview <kind> <role>",
	Short: "Render a notification with sample data",
	Long: "Render a notification with sample data.\n\nKinds: " + kindNames() +
		"\nRoles: owner, applicant, admin, user",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, role := model.Kind(args[0]), model.Role(args[1])
		sub, ok := sampleSubmission(kind)
		if !ok {
			return fmt.Errorf("unknown kind %q (want one of %s)", kind, kindNames())
		}

		appName := os.Getenv("INTAKE_APP_NAME")
		if appName == "" {
			appName = "Intake"
		}
		reg, err := templates.New(appName)
		if err != nil {
			return err
		}
		content, err := reg.Render(kind, role, sub)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Subject: %s\n\n", content.Subject)
		switch previewFormat {
		case "html":
			fmt.Fprintln(out, content.HTML)
		case "text":
			fmt.Fprintln(out, content.Text)
		default:
			return fmt.Errorf("unknown format %q", previewFormat)
		}
		return nil
	},
}

func init() {
	sheetsCmd.AddCommand(sheetsSetupCmd)
	driveCmd.AddCommand(driveCreateFolderCmd, driveDeleteCmd)
	configCmd.AddCommand(configShowCmd)
	previewCmd.Flags().StringVar(&previewFormat, "format", "text", "body to print: text or html")
}

func kindNames() string {
	names := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func sampleSubmission(kind model.Kind) (*model.Submission, bool) {
	if !slices.Contains(model.Kinds, kind) {
		return nil, false
	}

	var form model.Form
	switch kind {
	case model.KindApplication:
		form = &model.Application{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", Phone: "+44 20 7946 0000",
			University: "University of London", Major: "Mathematics", GraduationYear: "2026",
			CoverLetter: "I would love to work on analytical engines.", OpportunityID: 42,
			OpportunityTitle: "Backend Intern", OpportunityCompany: "Example Labs", OwnerEmail: "owner@example.org",
		}
	case model.KindCareerApplication:
		form = &model.CareerApplication{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org", Phone: "+1 555 0100",
			Location: "Arlington, VA", Experience: "10+ years", AgreeToTerms: true, AllowContact: true,
			JobID: 7, JobTitle: "Staff Engineer", Department: "Platform",
		}
	case model.KindContact:
		form = &model.Contact{
			FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", Subject: "Partnership",
			Message: "We would like to discuss a research partnership.", InquiryType: "partnership",
		}
	case model.KindSubscription:
		form = &model.Subscription{
			Email: "reader@example.org", SubscriptionType: "newsletter", Source: "footer",
			Interests: []string{"new_features", "events"},
		}
	}
	return model.NewSubmission(form, time.Now()), true
}
