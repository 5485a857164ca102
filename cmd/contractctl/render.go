package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/validation"
)

func newRenderCmd(opts *options) *cobra.Command {
	var (
		input  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a contract described in a YAML file",
		Long: `Render a contract without the backend. The YAML file holds the contract
fields (title, contractor_name, client_name, start_date, payment_amount, ...)
and its categories and variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(cmd, input)
			if err != nil {
				return err
			}
			return writeDocument(cmd, opts, document.BuildContract(snap, opts.now()), format)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", `YAML file; "-" reads stdin`)
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "pdf, html or xlsx")
	return cmd
}

func readSnapshot(cmd *cobra.Command, path string) (document.ContractSnapshot, error) {
	var snap document.ContractSnapshot
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return snap, err
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return snap, fmt.Errorf("parse %s: %w", path, err)
	}
	if v := checkSnapshot(snap); !v.Empty() {
		field, code := v.First()
		return snap, fmt.Errorf("%s: %s %s", path, field, code)
	}
	return snap, nil
}

func checkSnapshot(snap document.ContractSnapshot) validation.Violations {
	v := make(validation.Violations)
	for i, c := range snap.Categories {
		for j, e := range c.Elements {
			validation.NonNegativeFloat(fmt.Sprintf("categories[%d].elements[%d].material_cost", i, j), e.MaterialCost, v)
			validation.NonNegativeFloat(fmt.Sprintf("categories[%d].elements[%d].labor_cost", i, j), e.LaborCost, v)
		}
	}
	for i, vr := range snap.Variables {
		validation.NonNegativeFloat(fmt.Sprintf("variables[%d].value", i), vr.Value, v)
	}
	return v
}
