package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSingleRow(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"KVK Name", "OFT Farmers Target", "Report Date"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Test KVK", "lots", "2024-03-31"}))
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportDryRunJSON(t *testing.T) {
	out, err := run(t, "import", writeSingleRow(t))
	require.NoError(t, err)

	var res struct {
		Report struct {
			KvkName    string `json:"kvkName"`
			ReportDate string `json:"reportDate"`
		} `json:"report"`
		Warnings []map[string]any `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "Test KVK", res.Report.KvkName)
	require.Equal(t, "2024-03-31", res.Report.ReportDate)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0]["message"], `"lots" is not a number`)
}

func TestImportStrictFailsOnWarnings(t *testing.T) {
	_, err := run(t, "import", "--strict", writeSingleRow(t))
	require.ErrorContains(t, err, "1 cell warnings")
}

func TestColumnsYAML(t *testing.T) {
	out, err := run(t, "columns", "--format", "yaml")
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.NotEmpty(t, docs)
	require.Equal(t, "KVK Name", docs[0]["header"])
	require.Equal(t, "kvkName", docs[0]["path"])
}

func TestTemplateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.xlsx")
	out, err := run(t, "template", "-o", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "wrote "+path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.NotEmpty(t, f.GetSheetList())
}

func TestUnknownFormat(t *testing.T) {
	_, err := run(t, "columns", "--format", "toml")
	require.ErrorContains(t, err, `unknown format "toml"`)
}
