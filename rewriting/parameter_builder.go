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

package rewriting

import (
	"sort"

	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
)

// ParameterBuilder produces the parameters sent with the rewritten sql of a route unit, unit is nil for a single target.
type ParameterBuilder interface {
	Parameters(unit *routing.RouteUnit) []interface{}
}

var _ ParameterBuilder = &StandardParameterBuilder{}
var _ ParameterBuilder = &GroupedParameterBuilder{}

// StandardParameterBuilder rewrites a flat parameter list, indexes always refer to the original parameters.
type StandardParameterBuilder struct {
	original []interface{}
	added    map[int][]interface{}
	replaced map[int]interface{}
	appended []interface{}
}

func NewStandardParameterBuilder(parameters []interface{}) *StandardParameterBuilder {
	return &StandardParameterBuilder{
		original: parameters,
		added:    make(map[int][]interface{}),
		replaced: make(map[int]interface{}),
	}
}

// AddAddedParameters inserts the values before the original parameter at index,
// an index past the last parameter adds them after all original parameters.
func (b *StandardParameterBuilder) AddAddedParameters(index int, values ...interface{}) {
	b.added[index] = append(b.added[index], values...)
}

func (b *StandardParameterBuilder) AddReplacedParameter(index int, value interface{}) {
	b.replaced[index] = value
}

// AppendParameters adds the values after everything else.
func (b *StandardParameterBuilder) AppendParameters(values ...interface{}) {
	b.appended = append(b.appended, values...)
}

func (b *StandardParameterBuilder) Parameters(_ *routing.RouteUnit) []interface{} {
	result := make([]interface{}, 0, len(b.original)+len(b.added)+len(b.appended))
	for i, p := range b.original {
		result = append(result, b.added[i]...)
		if v, ok := b.replaced[i]; ok {
			result = append(result, v)
		} else {
			result = append(result, p)
		}
	}

	var tail []int
	for i := range b.added {
		if i >= len(b.original) {
			tail = append(tail, i)
		}
	}
	sort.Ints(tail)
	for _, i := range tail {
		result = append(result, b.added[i]...)
	}
	return append(result, b.appended...)
}

// GroupedParameterBuilder reads the parameters of each insert row from its container when the sql is assembled,
// so values changed by the parameter rewriters are picked up.
type GroupedParameterBuilder struct {
	logicTable string
	rows       []*explain.InsertValue
}

func NewGroupedParameterBuilder(logicTable string, rows []*explain.InsertValue) *GroupedParameterBuilder {
	return &GroupedParameterBuilder{logicTable: logicTable, rows: rows}
}

// Parameters returns the parameters of the rows routed to the unit, in row order.
func (b *GroupedParameterBuilder) Parameters(unit *routing.RouteUnit) []interface{} {
	result := make([]interface{}, 0)
	for _, row := range b.rows {
		if !isRowRouted(row, b.logicTable, unit) {
			continue
		}
		result = append(result, row.Parameters()...)
	}
	return result
}

// GroupCount returns the number of rows.
func (b *GroupedParameterBuilder) GroupCount() int {
	return len(b.rows)
}

func isRowRouted(row *explain.InsertValue, logicTable string, unit *routing.RouteUnit) bool {
	if unit == nil {
		return true
	}
	actual, ok := unit.FindActualTable(logicTable)
	return !ok || row.IsRoutedTo(unit.DataSource.ActualName, actual)
}
