package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cfgpkg "github.com/gabriellmelo/analise-exploratoria-tcc/internal/config"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/utils"
)

const defaultDataFile = "obitos_final.csv"

var (
	sheetName  string
	sheetIndex int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet-name", "", "XLSX: sheet name to load")
	rootCmd.PersistentFlags().IntVar(&sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (ignored if --sheet-name is set)")
}

// resolveDataPath finds the dataset file. Absolute or existing relative paths are used
// as given; a bare file name is also searched for in the parent directories.
func resolveDataPath(c *cfgpkg.Global) (string, error) {
	name := c.DataPath
	if name == "" {
		name = defaultDataFile
	}
	if _, err := os.Stat(name); err == nil || filepath.IsAbs(name) {
		return name, nil
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("dataset not found: %s", name)
	}
	p, err := utils.FindUpward("", name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("dataset not found: %s (set --data or config 'data_path')", name)
		}
		return "", err
	}
	return p, nil
}

func loadOptions(c *cfgpkg.Global) dataset.LoadOptions {
	return dataset.LoadOptions{
		Delimiter:  c.Delim(),
		YearFrom:   c.YearFrom,
		YearTo:     c.YearTo,
		SheetName:  sheetName,
		SheetIndex: sheetIndex,
	}
}

// loadDataset reads the configured dataset within the configured year range.
func loadDataset(c *cfgpkg.Global) (dataset.View, string, error) {
	path, err := resolveDataPath(c)
	if err != nil {
		return dataset.View{}, "", err
	}
	v, err := dataset.Load(path, loadOptions(c))
	if err != nil {
		return dataset.View{}, path, fmt.Errorf("load %s: %w", path, err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "DEBUG: loaded %d records from %s (years %v)\n", v.Len(), path, v.Years())
	}
	return v, path, nil
}

// forYear narrows v to one year; zero keeps every year.
func forYear(v dataset.View, year int) dataset.View {
	if year == 0 {
		return v
	}
	return v.FilterYear(year)
}
