package fallback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"ingest/internal/dataset"
)

// nodeFor maps a dataset column type to an optional Parquet leaf. Every
// column is optional because empty source cells are NULL.
func nodeFor(t dataset.Type) parquet.Node {
	var n parquet.Node
	switch t {
	case dataset.TypeInteger:
		n = parquet.Leaf(parquet.Int64Type)
	case dataset.TypeReal:
		n = parquet.Leaf(parquet.DoubleType)
	case dataset.TypeBoolean:
		n = parquet.Leaf(parquet.BooleanType)
	case dataset.TypeDate:
		n = parquet.Date()
	case dataset.TypeTimestamp:
		n = parquet.Timestamp(parquet.Microsecond)
	default:
		n = parquet.String()
	}
	return parquet.Optional(n)
}

// ColumnOrderKey is the file metadata key holding the dataset's column names,
// in source order, as a JSON array.
const ColumnOrderKey = "ingest.columns"

// Schema builds the Parquet schema for ds. Parquet groups order fields by
// name, so the file's column order is alphabetical; the source order is kept
// under ColumnOrderKey.
func Schema(ds *dataset.Dataset) *parquet.Schema {
	g := parquet.Group{}
	for _, c := range ds.Columns() {
		g[c.Name] = nodeFor(c.Type)
	}
	return parquet.NewSchema("dataset", g)
}

// Encode serializes the whole dataset as one Snappy-compressed Parquet file.
func Encode(ds *dataset.Dataset) ([]byte, error) {
	schema := Schema(ds)

	// Map dataset column positions onto schema leaf indexes.
	leaf := make(map[string]int, ds.Width())
	for i, f := range schema.Fields() {
		leaf[f.Name()] = i
	}
	cols := ds.Columns()
	pos := make([]int, len(cols))
	for i, c := range cols {
		pos[i] = leaf[c.Name]
	}

	order, err := json.Marshal(ds.ColumnNames())
	if err != nil {
		return nil, fmt.Errorf("parquet: column order: %w", err)
	}

	var buf bytes.Buffer
	w := parquet.NewWriter(&buf, schema,
		parquet.Compression(&parquet.Snappy),
		parquet.KeyValueMetadata(ColumnOrderKey, string(order)),
	)

	rows := make([]parquet.Row, 0, ds.Len())
	for r := 0; r < ds.Len(); r++ {
		src := ds.Row(r)
		row := make(parquet.Row, len(cols))
		for i, c := range cols {
			v, err := valueOf(src[i], c.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, c.Name, err)
			}
			row[pos[i]] = v.Level(0, definitionLevel(src[i]), pos[i])
		}
		rows = append(rows, row)
	}

	if _, err := w.WriteRows(rows); err != nil {
		return nil, fmt.Errorf("parquet: write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("parquet: close: %w", err)
	}
	return buf.Bytes(), nil
}

func definitionLevel(v any) int {
	if v == nil {
		return 0
	}
	return 1
}

func valueOf(v any, t dataset.Type) (parquet.Value, error) {
	if v == nil {
		return parquet.NullValue(), nil
	}
	switch t {
	case dataset.TypeInteger:
		n, ok := v.(int64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("want int64, got %T", v)
		}
		return parquet.Int64Value(n), nil
	case dataset.TypeReal:
		f, ok := v.(float64)
		if !ok {
			return parquet.Value{}, fmt.Errorf("want float64, got %T", v)
		}
		return parquet.DoubleValue(f), nil
	case dataset.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return parquet.Value{}, fmt.Errorf("want bool, got %T", v)
		}
		return parquet.BooleanValue(b), nil
	case dataset.TypeDate:
		tm, ok := v.(time.Time)
		if !ok {
			return parquet.Value{}, fmt.Errorf("want time.Time, got %T", v)
		}
		return parquet.Int32Value(daysSinceEpoch(tm)), nil
	case dataset.TypeTimestamp:
		tm, ok := v.(time.Time)
		if !ok {
			return parquet.Value{}, fmt.Errorf("want time.Time, got %T", v)
		}
		return parquet.Int64Value(tm.UnixMicro()), nil
	default:
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		return parquet.ByteArrayValue([]byte(s)), nil
	}
}

func daysSinceEpoch(t time.Time) int32 {
	y, m, d := t.Date()
	civil := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int32(civil.Unix() / 86400)
}
