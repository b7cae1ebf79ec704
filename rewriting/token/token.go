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

// Package token holds the position addressed replacements applied to the original sql and the generators producing them.
// Positions are inclusive, a token inserting text at index i has StartIndex i and StopIndex i-1.
package token

import (
	"strconv"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/statement"
)

// SQLToken replaces the text in [StartIndex, StopIndex] of the original sql, unit is nil when the sql is not rewritten for a route unit.
type SQLToken interface {
	StartIndex() int
	StopIndex() int
	Text(unit *routing.RouteUnit) string
}

type position struct {
	start int
	stop  int
}

func (p position) StartIndex() int { return p.start }
func (p position) StopIndex() int  { return p.stop }

func replacing(start int, stop int) position {
	return position{start: start, stop: stop}
}

func insertingAt(index int) position {
	return position{start: index, stop: index - 1}
}

func quote(q string, name string) string {
	return q + name + q
}

// actualTableOf returns the actual table of the logic table in the unit, the logic table itself when the unit does not route it.
func actualTableOf(unit *routing.RouteUnit, logicTable string) (string, bool) {
	if unit == nil {
		return logicTable, false
	}
	if actual, ok := unit.FindActualTable(logicTable); ok {
		return actual, true
	}
	return logicTable, false
}

// TableToken replaces a logic table name, or a column owner naming a logic table, with the actual table of the unit.
type TableToken struct {
	position
	LogicTable   string
	OriginalName string
	Quote        string
}

func (t *TableToken) Text(unit *routing.RouteUnit) string {
	if actual, ok := actualTableOf(unit, t.LogicTable); ok {
		return quote(t.Quote, actual)
	}
	return quote(t.Quote, t.OriginalName)
}

// RemoveToken removes text, e.g. the schema qualifier of a sharding table.
type RemoveToken struct {
	position
}

func (r *RemoveToken) Text(_ *routing.RouteUnit) string {
	return ""
}

// ProjectionsToken appends the derived select items to the select list.
type ProjectionsToken struct {
	position
	Projections []*explain.DerivedProjection
	// LogicTables resolves owners naming a logic table, aliases are kept as is.
	LogicTables map[string]struct{}
}

func (p *ProjectionsToken) Text(unit *routing.RouteUnit) string {
	sb := core.NewStringBuilder()
	for _, d := range p.Projections {
		sb.Write(", ")
		if d.Owner != "" {
			sb.Write(ownerText(unit, d.Owner, p.LogicTables), ".")
		}
		sb.Write(d.Expression, " AS ", d.Alias)
	}
	return sb.String()
}

func ownerText(unit *routing.RouteUnit, owner string, logicTables map[string]struct{}) string {
	if _, ok := logicTables[core.TrimAndLower(owner)]; ok {
		if actual, found := actualTableOf(unit, core.TrimAndLower(owner)); found {
			return actual
		}
	}
	return owner
}

// OrderByToken appends the order by derived from the group by after the group by clause.
type OrderByToken struct {
	position
	Items       []*explain.OrderByItem
	LogicTables map[string]struct{}
}

func (o *OrderByToken) Text(unit *routing.RouteUnit) string {
	items := make([]string, len(o.Items))
	for i, item := range o.Items {
		text := item.Text()
		if c, ok := item.Segment.(*statement.ColumnOrderByItemSegment); ok && c.Column.Owner != nil {
			text = ownerText(unit, c.Column.Owner.Name, o.LogicTables) + "." + c.Column.Name
		}
		items[i] = text + " " + item.Direction.String()
	}
	return " ORDER BY " + strings.Join(items, ", ")
}

// OffsetToken replaces a literal offset.
type OffsetToken struct {
	position
	Offset int64
}

func (o *OffsetToken) Text(_ *routing.RouteUnit) string {
	return strconv.FormatInt(o.Offset, 10)
}

// RowCountToken replaces a literal row count.
type RowCountToken struct {
	position
	RowCount int64
}

func (r *RowCountToken) Text(_ *routing.RouteUnit) string {
	return strconv.FormatInt(r.RowCount, 10)
}

// InsertColumnsToken writes the full column list of an insert which omits it.
type InsertColumnsToken struct {
	position
	Columns []string
}

func (i *InsertColumnsToken) Text(_ *routing.RouteUnit) string {
	return " (" + strings.Join(i.Columns, ", ") + ")"
}

// GeneratedKeyInsertColumnToken appends the generated key column before the closing parenthesis of the column list.
type GeneratedKeyInsertColumnToken struct {
	position
	Column string
}

func (g *GeneratedKeyInsertColumnToken) Text(_ *routing.RouteUnit) string {
	return ", " + g.Column
}

// GeneratedKeyAssignmentToken appends the generated key to the SET assignments of an insert.
type GeneratedKeyAssignmentToken struct {
	position
	Column string
	// Value is rendered as a literal unless Parameterized.
	Value         interface{}
	Parameterized bool
}

func (g *GeneratedKeyAssignmentToken) Text(_ *routing.RouteUnit) string {
	value := "?"
	if !g.Parameterized {
		value = explain.FormatValue(g.Value)
	}
	return ", " + g.Column + " = " + value
}

// InsertValuesToken rewrites the VALUES rows from their containers, a route unit only gets the rows routed to it.
type InsertValuesToken struct {
	position
	LogicTable string
	Rows       []*explain.InsertValue
	sql        string
}

func (i *InsertValuesToken) Text(unit *routing.RouteUnit) string {
	rows := make([]string, 0, len(i.Rows))
	for _, row := range i.Rows {
		if unit != nil {
			if actual, ok := unit.FindActualTable(i.LogicTable); ok && !row.IsRoutedTo(unit.DataSource.ActualName, actual) {
				continue
			}
		}
		rows = append(rows, i.rowText(row))
	}
	return strings.Join(rows, ", ")
}

func (i *InsertValuesToken) rowText(row *explain.InsertValue) string {
	sb := core.NewStringBuilder("(")
	for index, expr := range row.Expressions() {
		if index > 0 {
			sb.Write(", ")
		}
		sb.Write(expressionText(i.sql, expr))
	}
	sb.Write(")")
	return sb.String()
}

// expressionText renders literals and markers from their current value, anything else is copied from the original sql.
func expressionText(sql string, expr statement.ExpressionSegment) string {
	if _, ok := expr.(statement.SimpleExpression); ok {
		return explain.FormatExpression(expr)
	}
	if expr.StartIndex() >= 0 && expr.StopIndex() < len(sql) && expr.StartIndex() <= expr.StopIndex() {
		return sql[expr.StartIndex() : expr.StopIndex()+1]
	}
	return explain.FormatExpression(expr)
}

// EncryptColumnToken replaces a logic column name with a physical column, Alias is appended as " AS alias" when set.
type EncryptColumnToken struct {
	position
	Column string
	Alias  string
	Quote  string
}

func (e *EncryptColumnToken) Text(_ *routing.RouteUnit) string {
	if e.Alias == "" {
		return quote(e.Quote, e.Column)
	}
	return quote(e.Quote, e.Column) + " AS " + quote(e.Quote, e.Alias)
}

// EncryptPredicateValueToken replaces a literal of an encrypt predicate with the encrypted value.
type EncryptPredicateValueToken struct {
	position
	Value interface{}
}

func (e *EncryptPredicateValueToken) Text(_ *routing.RouteUnit) string {
	return explain.FormatValue(e.Value)
}

// EncryptInsertColumnsToken appends the assisted query and plain columns to the insert column list.
type EncryptInsertColumnsToken struct {
	position
	Columns []string
}

func (e *EncryptInsertColumnsToken) Text(_ *routing.RouteUnit) string {
	return ", " + strings.Join(e.Columns, ", ")
}

// EncryptAssignment is one "column = value" written for an encrypt column.
type EncryptAssignment struct {
	Column string
	// Value is rendered as a literal unless Parameterized.
	Value         interface{}
	Parameterized bool
}

// EncryptAssignmentToken replaces the assignment of a logic column with assignments of its physical columns.
type EncryptAssignmentToken struct {
	position
	Assignments []EncryptAssignment
}

func (e *EncryptAssignmentToken) Text(_ *routing.RouteUnit) string {
	items := make([]string, len(e.Assignments))
	for i, a := range e.Assignments {
		value := "?"
		if !a.Parameterized {
			value = explain.FormatValue(a.Value)
		}
		items[i] = a.Column + " = " + value
	}
	return strings.Join(items, ", ")
}
