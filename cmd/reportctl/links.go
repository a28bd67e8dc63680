package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLinksCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Issue, revoke and list the share links of a report",
	}
	cmd.PersistentFlags().StringVarP(&subject, "subject", "s", "", "report (subject) id")
	_ = cmd.MarkPersistentFlagRequired("subject")

	parseSubject := func() (uuid.UUID, error) {
		id, err := uuid.Parse(subject)

		return id, errors.Wrap(err, "invalid --subject")
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "issue",
			Short: "Revoke the active link and issue a new one; prints the credentials once",
			RunE: func(cmd *cobra.Command, _ []string) error {
				subjectID, err := parseSubject()
				if err != nil {
					return err
				}

				var links usecase.LinkUsecase

				return withApp(cmd.Context(), func(ctx context.Context) error {
					issued, err := links.IssueLink(ctx, subjectID)
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "link:     %s\n", issued.URL)
					fmt.Fprintf(out, "passcode: %s\n", issued.Passcode)
					fmt.Fprintf(out, "expires:  %s\n", issued.ExpiresAt.Format(time.RFC3339))

					return nil
				}, &links)
			},
		},
		&cobra.Command{
			Use:   "revoke",
			Short: "Revoke every active link of the report",
			RunE: func(cmd *cobra.Command, _ []string) error {
				subjectID, err := parseSubject()
				if err != nil {
					return err
				}

				var links usecase.LinkUsecase

				return withApp(cmd.Context(), func(ctx context.Context) error {
					revoked, err := links.RevokeLinks(ctx, subjectID)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "revoked %d link(s)\n", revoked)

					return nil
				}, &links)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every link issued for the report, newest first",
			RunE: func(cmd *cobra.Command, _ []string) error {
				subjectID, err := parseSubject()
				if err != nil {
					return err
				}

				var links usecase.LinkUsecase

				return withApp(cmd.Context(), func(ctx context.Context) error {
					list, err := links.ListLinks(ctx, subjectID)
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tCREATED\tEXPIRES\tREVOKED\tATTEMPTS\tVIEWS")
					for _, link := range list {
						revoked := "-"
						if link.RevokedAt != nil {
							revoked = link.RevokedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", link.ID,
							link.CreatedAt.Format(time.RFC3339), link.ExpiresAt.Format(time.RFC3339),
							revoked, link.AttemptCount, link.ViewCount)
					}

					return errors.WithStack(w.Flush())
				}, &links)
			},
		},
	)

	return cmd
}
