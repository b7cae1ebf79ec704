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

package metadata

import (
	"github.com/endink/sharding-rewrite/core"
)

type ColumnMeta struct {
	Name       string
	DataType   string
	PrimaryKey bool
	Generated  bool
}

// TableMeta keeps the columns in table definition order.
type TableMeta struct {
	Name    string
	Columns []*ColumnMeta
	index   map[string]int
}

func NewTableMeta(name string, columns ...*ColumnMeta) *TableMeta {
	t := &TableMeta{
		Name:    name,
		Columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[core.TrimAndLower(c.Name)] = i
	}
	return t
}

func (t *TableMeta) Column(name string) (*ColumnMeta, bool) {
	i, ok := t.index[core.TrimAndLower(name)]
	if !ok {
		return nil, false
	}
	return t.Columns[i], true
}

func (t *TableMeta) ContainsColumn(name string) bool {
	_, ok := t.index[core.TrimAndLower(name)]
	return ok
}

func (t *TableMeta) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *TableMeta) PrimaryKeyColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			names = append(names, c.Name)
		}
	}
	return names
}

// TableMetas is loaded externally and read concurrently, implementations must not mutate after construction.
type TableMetas interface {
	Get(table string) (*TableMeta, bool)
	ContainsTable(table string) bool
	ContainsColumn(table string, column string) bool
	AllColumnNames(table string) []string
}

type tableMetas struct {
	tables map[string]*TableMeta
}

func NewTableMetas(tables ...*TableMeta) TableMetas {
	m := &tableMetas{tables: make(map[string]*TableMeta, len(tables))}
	for _, t := range tables {
		m.tables[core.TrimAndLower(t.Name)] = t
	}
	return m
}

// EmptyTableMetas has no table at all.
var EmptyTableMetas = NewTableMetas()

func (m *tableMetas) Get(table string) (*TableMeta, bool) {
	t, ok := m.tables[core.TrimAndLower(table)]
	return t, ok
}

func (m *tableMetas) ContainsTable(table string) bool {
	_, ok := m.Get(table)
	return ok
}

func (m *tableMetas) ContainsColumn(table string, column string) bool {
	t, ok := m.Get(table)
	return ok && t.ContainsColumn(column)
}

func (m *tableMetas) AllColumnNames(table string) []string {
	if t, ok := m.Get(table); ok {
		return t.ColumnNames()
	}
	return []string{}
}
