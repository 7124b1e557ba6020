// Package forestio loads and saves nodes in every supported file format.
package forestio

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/onetree/onetree"
	"github.com/unixpickle/onetree/xgbmodel"
)

const (
	FormatBinary  = "bin"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatXGBoost = "xgboost"
)

// FormatFromPath guesses a format from a file extension.
//
// XGBoost models are never guessed, since they share the .json extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return FormatBinary, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unknown format for path: %s", path)
	}
}

// Load reads a node from a file.
//
// If format is empty, it is determined from the path. The opts are only used
// for XGBoost models.
func Load(path, format string, opts ...xgbmodel.Option) (onetree.Node[float64], error) {
	if format == "" {
		var err error
		format, err = FormatFromPath(path)
		if err != nil {
			return nil, err
		}
	}
	switch format {
	case FormatBinary:
		return onetree.Load(path, onetree.ReadNode[float64])
	case FormatJSON:
		return onetree.Load(path, onetree.ReadJSON[float64])
	case FormatYAML:
		return onetree.Load(path, onetree.ReadYAML[float64])
	case FormatXGBoost:
		forest, err := xgbmodel.LoadForest(path, opts...)
		if err != nil {
			return nil, err
		}
		return forest, nil
	default:
		return nil, errors.Errorf("unsupported input format: %s", format)
	}
}

// Save writes a node to a file.
//
// If format is empty, it is determined from the path.
func Save(path, format string, n onetree.Node[float64]) error {
	if format == "" {
		var err error
		format, err = FormatFromPath(path)
		if err != nil {
			return err
		}
	}
	switch format {
	case FormatBinary:
		return onetree.Save(path, n, onetree.WriteNode[float64])
	case FormatJSON:
		return onetree.Save(path, n, onetree.WriteJSON[float64])
	case FormatYAML:
		return onetree.Save(path, n, onetree.WriteYAML[float64])
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

// ReadAssignments reads feature assignments from a CSV file.
//
// The first row names the features. Empty cells are left out of the
// assignment for that row.
func ReadAssignments(r io.Reader) ([]map[string]float64, error) {
	csvReader := csv.NewReader(r)
	header, err := csvReader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	var res []map[string]float64
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		assignment := make(map[string]float64, len(header))
		for i, col := range record {
			if col == "" {
				continue
			}
			x, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: parse %s", len(res)+1, header[i])
			}
			assignment[header[i]] = x
		}
		res = append(res, assignment)
	}
	return res, nil
}

// LoadAssignments reads feature assignments from a CSV file.
func LoadAssignments(path string) ([]map[string]float64, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "load assignments")
	}
	defer f.Close()
	res, err := ReadAssignments(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load assignments %s", path)
	}
	return res, nil
}
