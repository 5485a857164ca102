package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diewo77/proposal-desk/internal/config"
	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/documents"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/render/htmlrender"
	"github.com/diewo77/proposal-desk/internal/render/pdfrender"
	"github.com/diewo77/proposal-desk/internal/render/xlsxrender"
)

// options are the flags shared by every command.
type options struct {
	apiURL   string
	timeout  time.Duration
	output   string
	logLevel string
	now      func() time.Time
}

func (o *options) client() (*gateway.Client, error) {
	logger, err := logging.New(false, o.logLevel)
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(o.apiURL, logger.Named("gateway")), nil
}

func (o *options) service() (*gateway.Client, *documents.Service, error) {
	api, err := o.client()
	if err != nil {
		return nil, nil, err
	}
	return api, documents.NewService(api, api.Logger), nil
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:   "contractctl",
		Short: "Render and send proposals and contracts",
		Long: `contractctl talks to the proposals backend to export saved proposals and
contracts as PDF, HTML or spreadsheets, render a contract described in a YAML
file without the backend, and email contracts to clients.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", cfg.Backend.URL, "backend base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for backend calls")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", `output file; "-" writes to stdout (default: the document file name)`)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newContractCmd(opts, "pdf"),
		newContractCmd(opts, "html"),
		newProposalCmd(opts),
		newRenderCmd(opts),
		newSendCmd(opts),
		newVersionCmd(),
	)
	return root
}

// writeDocument renders doc in format to the output flag, or to the
// document's own file name.
func writeDocument(cmd *cobra.Command, opts *options, doc document.Document, format string) error {
	var render func(io.Writer, document.Document) error
	switch format {
	case "pdf":
		render = func(w io.Writer, d document.Document) error { return pdfrender.Render(w, d) }
	case "html":
		render = htmlrender.Render
	case "xlsx":
		render = xlsxrender.Render
	default:
		return fmt.Errorf("unsupported format %q (want pdf, html or xlsx)", format)
	}

	if opts.output == "-" {
		return render(cmd.OutOrStdout(), doc)
	}
	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName)) + "." + format
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f, doc); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
