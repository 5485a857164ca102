package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/proposal-desk/internal/gateway/gatewaytest"
)

const snapshotYAML = `title: Deck Contract
contractor_name: Sam Builder
contractor_company: Builder Co
client_name: Pat Lee
client_address: 9 Elm St
start_date: 2026-03-01
end_date: 2026-05-01
payment_amount: "$4,500"
payment_terms: Net 30
scope: Build a cedar deck.
terms_and_conditions: Materials are warranted by their makers.
categories:
  - name: Decking
    elements:
      - name: Cedar boards
        material_cost: 900
        labor_cost: 400
variables:
  - name: Deck area
    category: Square Feet
    value: 240
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderFromYAML(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(input, []byte(snapshotYAML), 0o644))
	output := filepath.Join(dir, "deck.pdf")

	out, err := run(t, "", "render", "--input", input, "-o", output)
	require.NoError(t, err, out)
	assert.Contains(t, out, "wrote "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderHTMLToStdout(t *testing.T) {
	out, err := run(t, snapshotYAML, "render", "--format", "html", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Deck Contract")
	assert.Contains(t, out, "Cedar boards")
	assert.Contains(t, out, "Pat Lee")
}

func TestRenderRejectsUnknownFields(t *testing.T) {
	_, err := run(t, "title: X\ncolour: blue\n", "render", "-o", "-")
	require.Error(t, err)
}

func TestRenderRejectsBadNumbers(t *testing.T) {
	negative := strings.Replace(snapshotYAML, "labor_cost: 400", "labor_cost: -400", 1)
	_, err := run(t, negative, "render", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categories[0].elements[0].labor_cost must_not_be_negative")

	nan := strings.Replace(snapshotYAML, "value: 240", "value: .nan", 1)
	_, err = run(t, nan, "render", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variables[0].value not_a_number")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := run(t, snapshotYAML, "render", "--format", "docx", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExportFromBackend(t *testing.T) {
	b := gatewaytest.New().Start()
	t.Cleanup(b.Close)
	contract := b.Seed()
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "contract.pdf")
	out, err := run(t, "", "--api", b.URL(), "pdf", strconv.FormatInt(contract.ID, 10), "-o", pdfPath)
	require.NoError(t, err, out)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	xlsxPath := filepath.Join(dir, "proposal.xlsx")
	out, err = run(t, "", "--api", b.URL(), "xlsx", strconv.FormatInt(contract.Proposal.ID, 10), "-o", xlsxPath)
	require.NoError(t, err, out)
	data, err = os.ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	out, err = run(t, "", "--api", b.URL(), "html", strconv.FormatInt(contract.ID, 10), "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Garage Contract")

	_, err = run(t, "", "--api", b.URL(), "pdf", "999", "-o", "-")
	require.Error(t, err)
	_, err = run(t, "", "--api", b.URL(), "pdf", "abc")
	require.Error(t, err)
}

func TestSend(t *testing.T) {
	b := gatewaytest.New().Start()
	t.Cleanup(b.Close)
	contract := b.Seed()
	id := strconv.FormatInt(contract.ID, 10)

	out, err := run(t, "", "--api", b.URL(), "--timeout", (5 * time.Second).String(), "send", id)
	require.NoError(t, err)
	assert.Equal(t, "sent contract "+id+" to jane@example.com\n", out)

	_, err = run(t, "", "--api", b.URL(), "send", id, "--email", "boss@example.com")
	require.NoError(t, err)

	b.Mu.Lock()
	defer b.Mu.Unlock()
	require.Len(t, b.Emails, 2)
	assert.Equal(t, "boss@example.com", b.Emails[1].Address)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "contractctl version dev")
}
