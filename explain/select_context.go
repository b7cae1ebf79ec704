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
	"strconv"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/statement"
)

const (
	AvgDerivedCountAliasPattern = "AVG_DERIVED_COUNT_%d"
	AvgDerivedSumAliasPattern   = "AVG_DERIVED_SUM_%d"
	OrderByDerivedAliasPattern  = "ORDER_BY_DERIVED_%d"
	GroupByDerivedAliasPattern  = "GROUP_BY_DERIVED_%d"

	DerivedOrderBy = "order-by"
	DerivedGroupBy = "group-by"
)

// DerivedProjection is a select item added for result merging, the client never sees it.
// Owner is set for column items, it is a table name or an alias.
type DerivedProjection struct {
	Owner       string
	Expression  string
	Alias       string
	DerivedType string
}

// Text returns the expression qualified by its owner.
func (d *DerivedProjection) Text() string {
	if d.Owner != "" {
		return d.Owner + "." + d.Expression
	}
	return d.Expression
}

func (d *DerivedProjection) String() string {
	return d.Text() + " AS " + d.Alias
}

type AggregationProjection struct {
	Segment             *statement.AggregationProjectionSegment
	DerivedAggregations []*DerivedProjection
}

type ProjectionsContext struct {
	StartIndex   int
	StopIndex    int
	Distinct     bool
	Segments     []statement.ProjectionSegment
	Aggregations []*AggregationProjection
	// OrderByDerived holds the group by and order by items missing from the select list.
	OrderByDerived []*DerivedProjection
}

// DerivedProjections returns the aggregation derived items in select list order followed by the group by and order by items.
func (p *ProjectionsContext) DerivedProjections() []*DerivedProjection {
	var result []*DerivedProjection
	for _, a := range p.Aggregations {
		result = append(result, a.DerivedAggregations...)
	}
	return append(result, p.OrderByDerived...)
}

func (p *ProjectionsContext) HasDerived() bool {
	return len(p.DerivedProjections()) > 0
}

func (p *ProjectionsContext) HasShorthand() bool {
	for _, s := range p.Segments {
		if _, ok := s.(*statement.ShorthandProjectionSegment); ok {
			return true
		}
	}
	return false
}

func newProjectionsContext(segment *statement.ProjectionsSegment) *ProjectionsContext {
	p := &ProjectionsContext{
		StartIndex: segment.Start,
		StopIndex:  segment.Stop,
		Distinct:   segment.Distinct,
		Segments:   segment.Projections,
	}
	avgCount := 0
	for _, s := range segment.Projections {
		agg, ok := s.(*statement.AggregationProjectionSegment)
		if !ok {
			continue
		}
		ap := &AggregationProjection{Segment: agg}
		if agg.Type == statement.AggregationAvg {
			ap.DerivedAggregations = []*DerivedProjection{
				{
					Expression:  statement.AggregationCount.String() + agg.InnerExpression,
					Alias:       fmt.Sprintf(AvgDerivedCountAliasPattern, avgCount),
					DerivedType: statement.DerivedAvgCount,
				},
				{
					Expression:  statement.AggregationSum.String() + agg.InnerExpression,
					Alias:       fmt.Sprintf(AvgDerivedSumAliasPattern, avgCount),
					DerivedType: statement.DerivedAvgSum,
				},
			}
			avgCount++
		}
		p.Aggregations = append(p.Aggregations, ap)
	}
	return p
}

func (p *ProjectionsContext) appendOrderByDerived(items []*OrderByItem, aliasPattern string, derivedType string, tables TableLookup, metas metadata.TableMetas) {
	count := 0
	for _, item := range items {
		if p.containsItem(item.Segment, tables, metas) {
			continue
		}
		d := &DerivedProjection{
			Expression:  item.Text(),
			Alias:       fmt.Sprintf(aliasPattern, count),
			DerivedType: derivedType,
		}
		if c, ok := item.Segment.(*statement.ColumnOrderByItemSegment); ok && c.Column.Owner != nil {
			d.Owner = c.Column.Owner.Name
			d.Expression = c.Column.Name
		}
		p.OrderByDerived = append(p.OrderByDerived, d)
		count++
	}
}

func normalizeExpression(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(text, "`", "")), ""))
}

func (p *ProjectionsContext) containsItem(item statement.OrderByItemSegment, tables TableLookup, metas metadata.TableMetas) bool {
	switch i := item.(type) {
	case *statement.IndexOrderByItemSegment:
		return true
	case *statement.ColumnOrderByItemSegment:
		if p.containsColumn(i.Column, tables, metas) {
			return true
		}
	}

	text := normalizeExpression(OrderByItemText(item))
	for _, s := range p.Segments {
		switch s := s.(type) {
		case *statement.ExpressionProjectionSegment:
			if normalizeExpression(s.Text) == text || normalizeExpression(s.Alias) == text {
				return true
			}
		case *statement.AggregationProjectionSegment:
			if normalizeExpression(s.Expression()) == text || normalizeExpression(s.Alias) == text {
				return true
			}
		}
	}
	for _, d := range p.OrderByDerived {
		if normalizeExpression(d.Text()) == text {
			return true
		}
	}
	return false
}

func (p *ProjectionsContext) containsColumn(column *statement.ColumnSegment, tables TableLookup, metas metadata.TableMetas) bool {
	for _, s := range p.Segments {
		switch s := s.(type) {
		case *statement.ShorthandProjectionSegment:
			if s.Owner == nil {
				return true
			}
			if column.Owner != nil {
				if core.EqualsIgnoreCase(s.Owner.Name, column.Owner.Name) {
					return true
				}
				continue
			}
			if table, ok := tables.FindTableName(s.Owner.Name); ok && metas != nil && metas.ContainsColumn(table, column.Name) {
				return true
			}
		case *statement.ColumnProjectionSegment:
			if column.Owner == nil && s.Alias != "" && core.EqualsIgnoreCase(s.Alias, column.Name) {
				return true
			}
			if !core.EqualsIgnoreCase(s.Column.Name, column.Name) {
				continue
			}
			if column.Owner == nil || s.Column.Owner == nil || core.EqualsIgnoreCase(s.Column.Owner.Name, column.Owner.Name) {
				return true
			}
		}
	}
	return false
}

// OrderByItemText returns the text of the item used in generated select items and order by clauses.
func OrderByItemText(item statement.OrderByItemSegment) string {
	switch i := item.(type) {
	case *statement.ColumnOrderByItemSegment:
		return i.Column.QualifiedName()
	case *statement.IndexOrderByItemSegment:
		return strconv.Itoa(i.Index)
	case *statement.ExpressionOrderByItemSegment:
		return i.Text
	}
	return ""
}

type OrderByItem struct {
	Segment   statement.OrderByItemSegment
	Direction statement.OrderDirection
}

func (o *OrderByItem) Text() string {
	return OrderByItemText(o.Segment)
}

func newOrderByItems(segments []statement.OrderByItemSegment) []*OrderByItem {
	items := make([]*OrderByItem, len(segments))
	for i, s := range segments {
		items[i] = &OrderByItem{Segment: s, Direction: s.Direction()}
	}
	return items
}

type GroupByContext struct {
	Items []*OrderByItem
	// LastIndex is the stop index of the group by clause, -1 without group by.
	LastIndex int
}

type OrderByContext struct {
	Items []*OrderByItem
	// Generated is true when the order by is derived from the group by.
	Generated bool
}

func newGroupByContext(segment *statement.GroupBySegment) *GroupByContext {
	if segment == nil {
		return &GroupByContext{LastIndex: -1}
	}
	return &GroupByContext{Items: newOrderByItems(segment.Items), LastIndex: segment.Stop}
}

func newOrderByContext(segment *statement.OrderBySegment, groupBy *GroupByContext) *OrderByContext {
	if segment != nil && len(segment.Items) > 0 {
		return &OrderByContext{Items: newOrderByItems(segment.Items)}
	}
	if len(groupBy.Items) > 0 {
		items := make([]*OrderByItem, len(groupBy.Items))
		for i, g := range groupBy.Items {
			items[i] = &OrderByItem{Segment: g.Segment, Direction: statement.OrderAsc}
		}
		return &OrderByContext{Items: items, Generated: true}
	}
	return &OrderByContext{}
}

// SelectContext is the select statement with everything the rewrite needs to merge results of shards.
type SelectContext struct {
	Statement   *statement.SelectStatement
	Tables      TableLookup
	Projections *ProjectionsContext
	GroupBy     *GroupByContext
	OrderBy     *OrderByContext
	Pagination  *PaginationContext
}

func (s *SelectContext) GetStatement() statement.Statement {
	return s.Statement
}

func (s *SelectContext) GetTables() TableLookup {
	return s.Tables
}

func NewSelectContext(stmt *statement.SelectStatement, parameters []interface{}, metas metadata.TableMetas) (*SelectContext, error) {
	tables, err := NewTableLookup(stmt.GetTables())
	if err != nil {
		return nil, err
	}
	ctx := &SelectContext{
		Statement: stmt,
		Tables:    tables,
		GroupBy:   newGroupByContext(stmt.GroupBy),
	}
	ctx.OrderBy = newOrderByContext(stmt.OrderBy, ctx.GroupBy)
	if stmt.Projections != nil {
		ctx.Projections = newProjectionsContext(stmt.Projections)
		ctx.Projections.appendOrderByDerived(ctx.GroupBy.Items, GroupByDerivedAliasPattern, DerivedGroupBy, tables, metas)
		ctx.Projections.appendOrderByDerived(ctx.OrderBy.Items, OrderByDerivedAliasPattern, DerivedOrderBy, tables, metas)
	}
	if stmt.Limit != nil {
		if ctx.Pagination, err = NewPaginationContext(stmt.Limit, parameters); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// IsSameGroupByAndOrderBy reports whether the rows can be merged in stream, which requires identical group by and order by items.
func (s *SelectContext) IsSameGroupByAndOrderBy() bool {
	if len(s.GroupBy.Items) == 0 {
		return false
	}
	if s.OrderBy.Generated {
		return true
	}
	if len(s.GroupBy.Items) != len(s.OrderBy.Items) {
		return false
	}
	for i, g := range s.GroupBy.Items {
		o := s.OrderBy.Items[i]
		if normalizeExpression(g.Text()) != normalizeExpression(o.Text()) {
			return false
		}
	}
	return true
}
