package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/labelsweep/internal/audit"
	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

// ErrNotConfirmed is returned by clean when --yes was not given.
var ErrNotConfirmed = errors.New("cleanup not confirmed; rerun with --yes")

type setupFunc func() (*env, error)

func newListCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list LABEL",
		Short: "Show Subject, From and Date of matching messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, label, err := resolve(setup, args[0])
			if err != nil {
				return err
			}
			client, err := e.client(cmd.Context())
			if err != nil {
				return err
			}
			listing, err := e.svc.List(cmd.Context(), client, label, e.days)
			if err != nil {
				return err
			}
			return PrintListing(listing, e.out)
		},
	}
}

func newDryRunCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "dry-run LABEL",
		Aliases: []string{"dryrun", "preview"},
		Short:   "Count the threads a cleanup would move to Trash",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, label, err := resolve(setup, args[0])
			if err != nil {
				return err
			}
			client, err := e.client(cmd.Context())
			if err != nil {
				return err
			}
			preview, err := e.svc.Preview(cmd.Context(), client, label, e.days)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, preview.Message())
			return err
		},
	}
}

func newCleanCmd(setup setupFunc) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean LABEL",
		Short: "Move matching messages to Trash and record the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, label, err := resolve(setup, args[0])
			if err != nil {
				return err
			}
			client, err := e.client(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				preview, err := e.svc.Preview(cmd.Context(), client, label, e.days)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(e.out, preview.Message()); err != nil {
					return err
				}
				return ErrNotConfirmed
			}
			res, err := e.svc.Execute(cmd.Context(), client, label, e.days)
			if err != nil {
				return err
			}
			if err := e.ledger.Append(res.Record(e.clock())); err != nil {
				return fmt.Errorf("record cleanup: %w", err)
			}
			e.logger.InfoContext(cmd.Context(), "cleanup recorded", "label", label, "deleted", res.Deleted, "ledger", e.ledger.Path)
			_, err = fmt.Fprintf(e.out, "%s (scanned %d, deleted %d)\n", res.Message, res.Scanned, res.Deleted)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "trash without stopping at the dry run")
	return cmd
}

func newHistoryCmd(setup setupFunc) *cobra.Command {
	var jsonOut string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the cleanup history and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			records, err := e.ledger.Load()
			if err != nil {
				return err
			}
			if err := PrintHistory(records, e.out); err != nil {
				return err
			}
			if jsonOut == "" {
				return nil
			}
			return WriteJSON(records, jsonOut)
		},
	}
	cmd.Flags().StringVar(&jsonOut, "json", "", "also write the summary as JSON to this relative path")
	return cmd
}

func newSendersCmd(setup setupFunc) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "senders LABEL",
		Short: "Rank the sender domains of matching messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, label, err := resolve(setup, args[0])
			if err != nil {
				return err
			}
			client, err := e.client(cmd.Context())
			if err != nil {
				return err
			}
			listing, err := e.svc.List(cmd.Context(), client, label, e.days)
			if err != nil {
				return err
			}
			return PrintSenders(audit.Senders(listing.Messages, top), e.out)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of domains to show (0 for all)")
	return cmd
}

func newLabelsCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the label names accepted by the other commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			for _, name := range e.labels.Names() {
				if _, err := fmt.Fprintf(e.out, "%-12s %s\n", name, e.labels[name]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func resolve(setup setupFunc, name string) (*env, gc.LabelID, error) {
	e, err := setup()
	if err != nil {
		return nil, "", err
	}
	label, err := e.labels.Resolve(name)
	if err != nil {
		return nil, "", err
	}
	return e, label, nil
}
