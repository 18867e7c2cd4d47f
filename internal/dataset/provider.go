package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/roach88/synq/internal/table"
)

// ErrNotFound is returned when no data file exists for a dataset name.
var ErrNotFound = errors.New("dataset not found")

// Dataset is a loaded table plus its metadata.
type Dataset struct {
	Name     string
	Table    *table.Table
	Metadata Metadata
}

// Provider loads datasets from a directory and caches them by name.
// Callers must Clone a dataset's table before mutating it.
type Provider struct {
	dir    string
	db     *sql.DB
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Dataset
}

// formats lists the supported data files in lookup order.
var formats = []struct {
	ext    string
	reader string
}{
	{".parquet", "read_parquet('%s')"},
	{".csv", "read_csv_auto('%s', header=true)"},
}

// Open creates a provider over dir backed by an in-memory DuckDB.
// If logger is nil, a discard logger is used.
func Open(ctx context.Context, dir string, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return &Provider{dir: dir, db: db, logger: logger, cache: map[string]*Dataset{}}, nil
}

// Close closes the DuckDB connection.
func (p *Provider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// List returns the names of every dataset in the directory, sorted.
func (p *Provider) List() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, f := range formats {
			if name, ok := strings.CutSuffix(e.Name(), f.ext); ok {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the named dataset, reading it on first use.
func (p *Provider) Load(ctx context.Context, name string) (*Dataset, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("load %q: invalid dataset name", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ds, ok := p.cache[name]; ok {
		return ds, nil
	}

	path, reader, err := p.locate(name)
	if err != nil {
		return nil, err
	}
	meta, err := readMetadata(filepath.Join(p.dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	p.logger.Debug("loading dataset", slog.String("name", name), slog.String("path", path))
	query := "SELECT * FROM " + fmt.Sprintf(reader, strings.ReplaceAll(path, "'", "''"))
	tbl, err := p.readTable(ctx, query, meta)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	if meta.TargetFeature != "" {
		if err := tbl.SetTarget(meta.TargetFeature); err != nil {
			return nil, fmt.Errorf("load %q: %w", name, err)
		}
	}

	ds := &Dataset{Name: name, Table: tbl, Metadata: meta}
	p.cache[name] = ds
	p.logger.Info("dataset loaded", slog.String("name", name), slog.Int("rows", tbl.Len()), slog.Int("columns", len(tbl.ColumnNames())))
	return ds, nil
}

func (p *Provider) locate(name string) (string, string, error) {
	for _, f := range formats {
		path, err := filepath.Abs(filepath.Join(p.dir, name+f.ext))
		if err != nil {
			return "", "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		if _, err := os.Stat(path); err == nil {
			return path, f.reader, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q in %s", ErrNotFound, name, p.dir)
}

// readTable runs query and converts the result into a table. Columns with
// a numeric DuckDB type are numeric unless the metadata lists them as
// categorical; all other columns are categorical.
func (p *Provider) readTable(ctx context.Context, query string, meta Metadata) (*table.Table, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	numeric := make([]bool, len(types))
	for i, ct := range types {
		numeric[i] = isNumericType(ct.DatabaseTypeName()) && !meta.IsCategorical(ct.Name())
	}

	nums := make([][]float64, len(types))
	strs := make([][]string, len(types))
	nulls := make([][]int, len(types))
	values := make([]any, len(types))
	dest := make([]any, len(types))
	for i := range values {
		dest[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", n, err)
		}
		for i, v := range values {
			if numeric[i] {
				f, ok := toFloat(v)
				if !ok {
					f = math.NaN()
				}
				nums[i] = append(nums[i], f)
				continue
			}
			if v == nil {
				nulls[i] = append(nulls[i], n)
			}
			strs[i] = append(strs[i], toText(v))
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	cols := make([]*table.Column, len(types))
	for i, ct := range types {
		if numeric[i] {
			cols[i] = table.NewNumeric(ct.Name(), nums[i])
			continue
		}
		cols[i] = table.NewCategorical(ct.Name(), strs[i])
		for _, r := range nulls[i] {
			cols[i].SetNull(r)
		}
	}
	return table.New(cols...)
}

func isNumericType(name string) bool {
	name = strings.ToUpper(name)
	if strings.HasPrefix(name, "DECIMAL") {
		return true
	}
	switch name {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT",
		"FLOAT", "REAL", "DOUBLE":
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, true
	case interface{ Float64() float64 }:
		return x.Float64(), true
	}
	return 0, false
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
