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
	"fmt"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

// InsertValue holds the value expressions of one insert row and the parameters bound to its markers.
// The parameters are sliced from the statement parameters, a marker of the row is resolved by counting
// the markers before it, not by its own parameter index.
type InsertValue struct {
	columnNames   []string
	expressions   []statement.ExpressionSegment
	parameters    []interface{}
	originalCount int
	// DataNodes are the physical tables the row is routed to, assigned by the router.
	DataNodes []rule.DataNode
}

func NewInsertValue(columnNames []string, expressions []statement.ExpressionSegment, parameters []interface{}) *InsertValue {
	v := &InsertValue{
		columnNames:   append([]string(nil), columnNames...),
		expressions:   append([]statement.ExpressionSegment(nil), expressions...),
		parameters:    append([]interface{}(nil), parameters...),
		originalCount: len(expressions),
	}
	return v
}

func (v *InsertValue) ColumnNames() []string {
	return v.columnNames
}

func (v *InsertValue) Expressions() []statement.ExpressionSegment {
	return v.expressions
}

// AppendedColumnNames returns the names of the columns added by AppendValue, in append order.
func (v *InsertValue) AppendedColumnNames() []string {
	if len(v.columnNames) <= v.originalCount {
		return []string{}
	}
	return v.columnNames[v.originalCount:]
}

func (v *InsertValue) Parameters() []interface{} {
	return v.parameters
}

func (v *InsertValue) ParameterCount() int {
	return len(v.parameters)
}

func (v *InsertValue) ColumnIndex(column string) (int, bool) {
	for i, c := range v.columnNames {
		if core.EqualsIgnoreCase(c, column) {
			return i, i < len(v.expressions)
		}
	}
	return -1, false
}

// Value returns the value of the column, literal values directly, markers from the row parameters.
func (v *InsertValue) Value(column string) (interface{}, error) {
	i, ok := v.ColumnIndex(column)
	if !ok {
		return nil, errors.Errorf("column '%s' not found in insert values", column)
	}
	return v.ValueAt(i)
}

func (v *InsertValue) ValueAt(index int) (interface{}, error) {
	if index < 0 || index >= len(v.expressions) {
		return nil, errors.Errorf("insert value index %d is out of range", index)
	}
	switch e := v.expressions[index].(type) {
	case *statement.LiteralExpression:
		return e.Value, nil
	case *statement.DerivedLiteralExpression:
		return e.Value, nil
	case *statement.ParameterMarkerExpression, *statement.DerivedParameterMarkerExpression:
		return v.parameters[v.markersBefore(index)], nil
	}
	return nil, errors.Errorf("insert value of column index %d is not a literal or parameter marker", index)
}

// IsSimpleAt reports whether the expression at index carries a literal or a parameter marker.
func (v *InsertValue) IsSimpleAt(index int) bool {
	_, ok := v.expressions[index].(statement.SimpleExpression)
	return ok
}

func (v *InsertValue) markersBefore(index int) int {
	return statement.CountParameterMarkers(v.expressions[:index])
}

// SetValue overwrites the parameter when the column is bound to a marker, otherwise the expression is
// replaced by a literal at the same position.
func (v *InsertValue) SetValue(column string, value interface{}) error {
	i, ok := v.ColumnIndex(column)
	if !ok {
		return errors.Errorf("column '%s' not found in insert values", column)
	}
	expr := v.expressions[i]
	if statement.IsParameterMarker(expr) {
		v.parameters[v.markersBefore(i)] = value
		return nil
	}
	v.expressions[i] = statement.NewLiteral(expr.StartIndex(), expr.StopIndex(), value)
	return nil
}

// AppendValue adds a derived column, a row bound to parameters gets a derived marker so that it stays fully parameterized.
func (v *InsertValue) AppendValue(column string, value interface{}, derivedType string) {
	v.columnNames = append(v.columnNames, column)
	if len(v.parameters) == 0 {
		v.expressions = append(v.expressions, statement.NewDerivedLiteral(value, derivedType))
		return
	}
	v.expressions = append(v.expressions, statement.NewDerivedParameterMarker(len(v.parameters), derivedType))
	v.parameters = append(v.parameters, value)
}

// ParameterIndex returns the row parameter index of the marker, it panics when the marker is not in the row.
func (v *InsertValue) ParameterIndex(expr statement.ExpressionSegment) int {
	count := 0
	for _, e := range v.expressions {
		if e == expr {
			if !statement.IsParameterMarker(e) {
				panic(fmt.Sprintf("expression at [%d, %d] is not a parameter marker", e.StartIndex(), e.StopIndex()))
			}
			return count
		}
		if statement.IsParameterMarker(e) {
			count++
		}
	}
	panic(fmt.Sprintf("expression at [%d, %d] is not in the insert values", expr.StartIndex(), expr.StopIndex()))
}

// IsRoutedTo reports whether the row belongs to one of the physical tables, rows without data nodes belong to all.
func (v *InsertValue) IsRoutedTo(dataSource string, table string) bool {
	if len(v.DataNodes) == 0 {
		return true
	}
	for _, n := range v.DataNodes {
		if core.EqualsIgnoreCase(n.DataSource, dataSource) && core.EqualsIgnoreCase(n.Table, table) {
			return true
		}
	}
	return false
}

func (v *InsertValue) String() string {
	sb := core.NewStringBuilder("(")
	for i, e := range v.expressions {
		if i > 0 {
			sb.Write(", ")
		}
		sb.Write(FormatExpression(e))
	}
	sb.Write(")")
	return sb.String()
}
