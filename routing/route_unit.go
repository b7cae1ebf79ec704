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

package routing

import (
	"sort"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/scylladb/go-set/strset"
)

// RouteMapper maps a logic name to the actual name of one target.
type RouteMapper struct {
	LogicName  string
	ActualName string
}

// RouteUnit is one physical target of a statement: a data source and the actual tables of the logic tables.
type RouteUnit struct {
	DataSource RouteMapper
	Tables     []RouteMapper
}

func NewRouteUnit(logicDataSource string, actualDataSource string, tables ...RouteMapper) *RouteUnit {
	return &RouteUnit{
		DataSource: RouteMapper{LogicName: core.TrimAndLower(logicDataSource), ActualName: core.TrimAndLower(actualDataSource)},
		Tables:     tables,
	}
}

// FindActualTable returns the actual table of the logic table in this unit.
func (u *RouteUnit) FindActualTable(logicTable string) (string, bool) {
	for _, t := range u.Tables {
		if core.EqualsIgnoreCase(t.LogicName, logicTable) {
			return t.ActualName, true
		}
	}
	return "", false
}

func (u *RouteUnit) LogicTableNames() []string {
	names := make([]string, len(u.Tables))
	for i, t := range u.Tables {
		names[i] = t.LogicName
	}
	return names
}

func (u *RouteUnit) ActualTableNames() []string {
	names := make([]string, len(u.Tables))
	for i, t := range u.Tables {
		names[i] = t.ActualName
	}
	return names
}

func (u *RouteUnit) String() string {
	sb := core.NewStringBuilder(u.DataSource.ActualName, ": ")
	for i, t := range u.Tables {
		if i > 0 {
			sb.Write(", ")
		}
		sb.Write(t.LogicName, "->", t.ActualName)
	}
	return sb.String()
}

// RouteResult is the output of the router, one unit per target.
type RouteResult struct {
	Units []*RouteUnit
}

// NewRouteResultFromDataNodes creates one unit per data node of a single logic table.
func NewRouteResultFromDataNodes(logicTable string, nodes ...rule.DataNode) *RouteResult {
	r := &RouteResult{Units: make([]*RouteUnit, 0, len(nodes))}
	for _, n := range nodes {
		r.Units = append(r.Units, NewRouteUnit(n.DataSource, n.DataSource, RouteMapper{
			LogicName:  core.TrimAndLower(logicTable),
			ActualName: core.TrimAndLower(n.Table),
		}))
	}
	return r
}

func (r *RouteResult) IsSingleRoute() bool {
	return len(r.Units) == 1
}

// ActualDataSourceNames returns the distinct data sources of the units, sorted.
func (r *RouteResult) ActualDataSourceNames() []string {
	set := strset.NewWithSize(len(r.Units))
	for _, u := range r.Units {
		set.Add(u.DataSource.ActualName)
	}
	list := set.List()
	sort.Strings(list)
	return list
}

// ActualTableNames returns the distinct actual tables of the logic table in the data source, sorted.
func (r *RouteResult) ActualTableNames(dataSource string, logicTable string) []string {
	set := strset.New()
	for _, u := range r.Units {
		if !core.EqualsIgnoreCase(u.DataSource.ActualName, dataSource) {
			continue
		}
		if t, ok := u.FindActualTable(logicTable); ok {
			set.Add(strings.ToLower(t))
		}
	}
	list := set.List()
	sort.Strings(list)
	return list
}
