package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newContractCmd(opts *options, format string) *cobra.Command {
	return &cobra.Command{
		Use:   format + " <contract-id>",
		Short: "Export a saved contract as " + format,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, docs, err := opts.service()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			doc, err := docs.ContractDocument(ctx, id, opts.now())
			if err != nil {
				return fmt.Errorf("load contract %d: %w", id, err)
			}
			return writeDocument(cmd, opts, doc, format)
		},
	}
}

func newProposalCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "xlsx <proposal-id>",
		Short: "Export a saved proposal as a cost spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, docs, err := opts.service()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			doc, err := docs.ProposalDocument(ctx, id, opts.now())
			if err != nil {
				return fmt.Errorf("load proposal %d: %w", id, err)
			}
			return writeDocument(cmd, opts, doc, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "pdf, html or xlsx")
	return cmd
}

func newSendCmd(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "send <contract-id>",
		Short: "Email a contract to the client",
		Long:  "Email a contract. Without --email the client email of the contract's proposal is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, docs, err := opts.service()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			if email == "" {
				c, err := docs.Contract(ctx, id)
				if err != nil {
					return fmt.Errorf("load contract %d: %w", id, err)
				}
				email = c.Proposal.ClientEmail
			}
			if email == "" {
				return fmt.Errorf("contract %d has no client email; pass --email", id)
			}
			if err := api.SendEmail(ctx, email, id); err != nil {
				return fmt.Errorf("send contract %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent contract %d to %s\n", id, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "recipient address")
	return cmd
}
