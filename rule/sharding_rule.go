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

package rule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/script"
	"github.com/pingcap/errors"
	"github.com/scylladb/go-set/strset"
)

// DataNode is one physical table in one data source.
type DataNode struct {
	DataSource string
	Table      string
}

// ParseDataNode parses "ds.table".
func ParseDataNode(text string) (DataNode, error) {
	parts := strings.Split(strings.TrimSpace(text), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return DataNode{}, errors.Errorf("invalid format for data node '%s', should be 'ds.table'", text)
	}
	return DataNode{DataSource: core.TrimAndLower(parts[0]), Table: core.TrimAndLower(parts[1])}, nil
}

func (d DataNode) String() string {
	return fmt.Sprintf("%s.%s", d.DataSource, d.Table)
}

// ShardingStrategy binds sharding columns to an inline algorithm expression, e.g. "t_order${order_id % 2}".
// A strategy without columns is the none strategy.
type ShardingStrategy struct {
	columns    *strset.Set
	expression script.InlineExpression
}

var NoneShardingStrategy = &ShardingStrategy{columns: strset.New()}

func NewShardingStrategy(columns []string, expression string) (*ShardingStrategy, error) {
	set := strset.New()
	for _, c := range core.DistinctSliceAndTrim(columns) {
		set.Add(core.TrimAndLower(c))
	}
	s := &ShardingStrategy{columns: set}
	if strings.TrimSpace(expression) != "" {
		expr, err := script.NewInlineExpression(expression)
		if err != nil {
			return nil, err
		}
		s.expression = expr
	}
	return s, nil
}

func (s *ShardingStrategy) IsNone() bool {
	return s == nil || s.columns.IsEmpty()
}

func (s *ShardingStrategy) HasColumn(column string) bool {
	return !s.IsNone() && s.columns.Has(core.TrimAndLower(column))
}

func (s *ShardingStrategy) Columns() []string {
	if s.IsNone() {
		return []string{}
	}
	list := s.columns.List()
	sort.Strings(list)
	return list
}

// DoSharding evaluates the inline algorithm for exact values of every sharding column.
func (s *ShardingStrategy) DoSharding(values map[string]interface{}) (string, error) {
	if s.IsNone() || s.expression == nil {
		return "", errors.New("sharding strategy has no algorithm expression")
	}
	return s.expression.FlatScalar(values)
}

// TableRule is the sharding configuration of one logic table.
type TableRule struct {
	LogicTable        string
	DataNodes         []DataNode
	DatabaseStrategy  *ShardingStrategy
	TableStrategy     *ShardingStrategy
	GenerateKeyColumn string
	KeyGenerator      KeyGenerator
}

func NewTableRule(logicTable string, dataNodes ...DataNode) *TableRule {
	return &TableRule{
		LogicTable:       core.TrimAndLower(logicTable),
		DataNodes:        dataNodes,
		DatabaseStrategy: NoneShardingStrategy,
		TableStrategy:    NoneShardingStrategy,
	}
}

// NewTableRuleFromExpression flats an inline resources expression like "ds${0..1}.t_order${[0,1]}" into data nodes.
func NewTableRuleFromExpression(logicTable string, resources string) (*TableRule, error) {
	nodes, err := script.Flat(resources)
	if err != nil {
		return nil, err
	}
	dataNodes := make([]DataNode, 0, len(nodes))
	for _, n := range nodes {
		node, e := ParseDataNode(n)
		if e != nil {
			return nil, e
		}
		dataNodes = append(dataNodes, node)
	}
	return NewTableRule(logicTable, dataNodes...), nil
}

func (t *TableRule) IsShardingColumn(column string) bool {
	return t.DatabaseStrategy.HasColumn(column) || t.TableStrategy.HasColumn(column)
}

func (t *TableRule) ShardingColumns() []string {
	set := strset.New(t.DatabaseStrategy.Columns()...)
	set.Add(t.TableStrategy.Columns()...)
	list := set.List()
	sort.Strings(list)
	return list
}

func (t *TableRule) ActualDataSourceNames() []string {
	var result []string
	seen := strset.New()
	for _, n := range t.DataNodes {
		if !seen.Has(n.DataSource) {
			seen.Add(n.DataSource)
			result = append(result, n.DataSource)
		}
	}
	return result
}

func (t *TableRule) ActualTableNames(dataSource string) []string {
	var result []string
	for _, n := range t.DataNodes {
		if core.EqualsIgnoreCase(n.DataSource, dataSource) {
			result = append(result, n.Table)
		}
	}
	return result
}

func (t *TableRule) ContainsActualTable(actualTable string) bool {
	for _, n := range t.DataNodes {
		if core.EqualsIgnoreCase(n.Table, actualTable) {
			return true
		}
	}
	return false
}

// ShardingRule is immutable after construction and shared by all statements.
type ShardingRule struct {
	DefaultDataSource string
	tableRules        map[string]*TableRule
	logicTables       []string
	broadcastTables   *strset.Set
}

func NewShardingRule(defaultDataSource string, broadcastTables []string, tableRules ...*TableRule) *ShardingRule {
	r := &ShardingRule{
		DefaultDataSource: defaultDataSource,
		tableRules:        make(map[string]*TableRule, len(tableRules)),
		broadcastTables:   strset.New(),
	}
	for _, t := range broadcastTables {
		r.broadcastTables.Add(core.TrimAndLower(t))
	}
	for _, t := range tableRules {
		if _, ok := r.tableRules[t.LogicTable]; !ok {
			r.logicTables = append(r.logicTables, t.LogicTable)
		}
		r.tableRules[t.LogicTable] = t
	}
	return r
}

func (r *ShardingRule) FindTableRule(logicTable string) (*TableRule, bool) {
	t, ok := r.tableRules[core.TrimAndLower(logicTable)]
	return t, ok
}

func (r *ShardingRule) FindTableRuleByActualTable(actualTable string) (*TableRule, bool) {
	for _, name := range r.logicTables {
		if t := r.tableRules[name]; t.ContainsActualTable(actualTable) {
			return t, true
		}
	}
	return nil, false
}

func (r *ShardingRule) TableRules() []*TableRule {
	result := make([]*TableRule, len(r.logicTables))
	for i, name := range r.logicTables {
		result[i] = r.tableRules[name]
	}
	return result
}

func (r *ShardingRule) LogicTableNames() []string {
	return append([]string(nil), r.logicTables...)
}

func (r *ShardingRule) IsShardingTable(logicTable string) bool {
	_, ok := r.FindTableRule(logicTable)
	return ok
}

func (r *ShardingRule) IsBroadcastTable(logicTable string) bool {
	return r.broadcastTables.Has(core.TrimAndLower(logicTable))
}

// ContainsTable reports whether the table is known to the rule, sharding or broadcast.
func (r *ShardingRule) ContainsTable(logicTable string) bool {
	return r.IsShardingTable(logicTable) || r.IsBroadcastTable(logicTable)
}

func (r *ShardingRule) IsShardingColumn(column string, logicTable string) bool {
	t, ok := r.FindTableRule(logicTable)
	return ok && t.IsShardingColumn(column)
}

func (r *ShardingRule) FindGenerateKeyColumnName(logicTable string) (string, bool) {
	t, ok := r.FindTableRule(logicTable)
	if !ok || t.GenerateKeyColumn == "" || t.KeyGenerator == nil {
		return "", false
	}
	return t.GenerateKeyColumn, true
}

func (r *ShardingRule) GenerateKey(logicTable string) (interface{}, error) {
	t, ok := r.FindTableRule(logicTable)
	if !ok || t.KeyGenerator == nil {
		return nil, errors.Errorf("cannot find key generator for logic table '%s'", logicTable)
	}
	return t.KeyGenerator.Generate()
}

// FindLogicTableByActualTable returns the logic table of an actual table, e.g. when results carry actual names.
func (r *ShardingRule) FindLogicTableByActualTable(actualTable string) (string, bool) {
	t, ok := r.FindTableRuleByActualTable(actualTable)
	if !ok {
		return "", false
	}
	return t.LogicTable, true
}
