package postgres

import (
	"ingest/internal/dataset"
	"ingest/internal/ddl"
)

func storageDef() ddl.TableDef {
	return ddl.FromDataset("public.events", []dataset.Column{
		{Name: "id", Type: dataset.TypeInteger},
		{Name: "at", Type: dataset.TypeTimestamp},
	}).WithTypes(MapType)
}
