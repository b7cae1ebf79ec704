/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package explain

import (
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

var logger = logging.GetLogger("explain")

// TableLookup resolves table names, aliases and column owners of one statement, names are lower case.
type TableLookup interface {
	Tables() []*statement.TableSegment
	TableNames() []string
	HasAlias(name string) bool
	FindNameByAlias(alias string) (string, bool)
	// FindTableName resolves a table name or an alias into the table name.
	FindTableName(tableOrAlias string) (string, bool)
	// FindTableNameByColumn resolves the table of a column by its owner, or by the metadata when the column is unqualified.
	FindTableNameByColumn(column *statement.ColumnSegment, metas metadata.TableMetas) (string, bool)
	Schema() string
}

type tableLookup struct {
	segments         []*statement.TableSegment
	aliasToTableName map[string]string
	tables           map[string]struct{}
	tableNames       []string
	schema           string
}

func NewTableLookup(tables []*statement.TableSegment) (TableLookup, error) {
	lookup := &tableLookup{
		aliasToTableName: map[string]string{},
		tables:           map[string]struct{}{},
	}
	for _, t := range tables {
		if err := lookup.addTable(t); err != nil {
			return nil, err
		}
	}
	return lookup, nil
}

func (lookup *tableLookup) addTable(table *statement.TableSegment) error {
	name := table.LowerName()
	if table.Owner != nil {
		schema := core.TrimAndLower(table.Owner.Name)
		if lookup.schema != "" && lookup.schema != schema {
			return errors.Trace(core.ErrMultipleSchemas)
		}
		lookup.schema = schema
	}
	alias := core.TrimAndLower(table.Alias)
	if alias != "" {
		if n, ok := lookup.aliasToTableName[alias]; ok && n != name {
			return errors.Errorf("duplex table alias in sql, alias: %s, tables: %s, %s", alias, n, name)
		}
		lookup.aliasToTableName[alias] = name
	}
	if _, ok := lookup.tables[name]; !ok {
		lookup.tables[name] = core.Nothing
		lookup.tableNames = append(lookup.tableNames, name)
	}
	lookup.segments = append(lookup.segments, table)
	return nil
}

func (lookup *tableLookup) Tables() []*statement.TableSegment {
	return lookup.segments
}

func (lookup *tableLookup) TableNames() []string {
	return lookup.tableNames
}

func (lookup *tableLookup) Schema() string {
	return lookup.schema
}

func (lookup *tableLookup) HasAlias(name string) bool {
	_, found := lookup.aliasToTableName[core.TrimAndLower(name)]
	return found
}

func (lookup *tableLookup) FindNameByAlias(alias string) (string, bool) {
	name, found := lookup.aliasToTableName[core.TrimAndLower(alias)]
	return name, found
}

func (lookup *tableLookup) FindTableName(tableOrAlias string) (string, bool) {
	key := core.TrimAndLower(tableOrAlias)
	if name, ok := lookup.aliasToTableName[key]; ok {
		return name, true
	}
	_, ok := lookup.tables[key]
	return key, ok
}

func (lookup *tableLookup) FindTableNameByColumn(column *statement.ColumnSegment, metas metadata.TableMetas) (string, bool) {
	if column.Owner != nil {
		return lookup.FindTableName(column.Owner.Name)
	}
	if len(lookup.tableNames) == 1 {
		return lookup.tableNames[0], true
	}
	if metas == nil {
		return "", false
	}
	var found string
	for _, name := range lookup.tableNames {
		if metas.ContainsColumn(name, column.Name) {
			if found != "" {
				logger.Debugf("column '%s' is ambiguous between table '%s' and '%s'", column.Name, found, name)
				return "", false
			}
			found = name
		}
	}
	return found, found != ""
}
