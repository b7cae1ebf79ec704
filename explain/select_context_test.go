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
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetas = metadata.NewTableMetas(
	metadata.NewTableMeta("t_order",
		&metadata.ColumnMeta{Name: "order_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "user_id"},
		&metadata.ColumnMeta{Name: "amount"}),
	metadata.NewTableMeta("t_order_item",
		&metadata.ColumnMeta{Name: "item_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "order_id"},
		&metadata.ColumnMeta{Name: "price"}),
)

func TestTableLookup(t *testing.T) {
	lookup, err := NewTableLookup([]*statement.TableSegment{
		{Name: "T_Order", Alias: "o"},
		{Name: "t_order_item", Alias: "i"},
	})
	require.Nil(t, err)

	assert.Equal(t, []string{"t_order", "t_order_item"}, lookup.TableNames())
	assert.True(t, lookup.HasAlias("O"))
	name, ok := lookup.FindTableName("i")
	assert.True(t, ok)
	assert.Equal(t, "t_order_item", name)
	_, ok = lookup.FindTableName("t_user")
	assert.False(t, ok)

	name, ok = lookup.FindTableNameByColumn(&statement.ColumnSegment{Name: "price"}, testMetas)
	assert.True(t, ok)
	assert.Equal(t, "t_order_item", name)

	_, ok = lookup.FindTableNameByColumn(&statement.ColumnSegment{Name: "order_id"}, testMetas)
	assert.False(t, ok, "order_id is ambiguous")

	name, ok = lookup.FindTableNameByColumn(&statement.ColumnSegment{Name: "order_id", Owner: &statement.OwnerSegment{Name: "o"}}, testMetas)
	assert.True(t, ok)
	assert.Equal(t, "t_order", name)
}

func TestTableLookupErrors(t *testing.T) {
	_, err := NewTableLookup([]*statement.TableSegment{
		{Name: "t_order", Owner: &statement.OwnerSegment{Name: "db1"}},
		{Name: "t_order_item", Owner: &statement.OwnerSegment{Name: "db2"}},
	})
	assert.Equal(t, core.ErrMultipleSchemas, errors.Cause(err))

	_, err = NewTableLookup([]*statement.TableSegment{
		{Name: "t_order", Alias: "t"},
		{Name: "t_order_item", Alias: "t"},
	})
	assert.Error(t, err)

	lookup, err := NewTableLookup([]*statement.TableSegment{{Name: "t_order", Owner: &statement.OwnerSegment{Name: "DB1"}}})
	assert.Nil(t, err)
	assert.Equal(t, "db1", lookup.Schema())
}

func TestAvgDerivedProjections(t *testing.T) {
	stmt := &statement.SelectStatement{
		Projections: &statement.ProjectionsSegment{Start: 7, Stop: 40, Projections: []statement.ProjectionSegment{
			&statement.ColumnProjectionSegment{Column: &statement.ColumnSegment{Name: "user_id"}},
			&statement.AggregationProjectionSegment{Type: statement.AggregationAvg, InnerExpression: "(amount)"},
			&statement.AggregationProjectionSegment{Type: statement.AggregationAvg, InnerExpression: "(order_id)", Alias: "a"},
			&statement.AggregationProjectionSegment{Type: statement.AggregationMax, InnerExpression: "(amount)"},
		}},
		Tables: []*statement.TableSegment{{Name: "t_order"}},
	}
	ctx, err := NewSelectContext(stmt, nil, testMetas)
	require.Nil(t, err)

	var texts []string
	for _, d := range ctx.Projections.DerivedProjections() {
		texts = append(texts, d.String())
	}
	assert.Equal(t, []string{
		"COUNT(amount) AS AVG_DERIVED_COUNT_0",
		"SUM(amount) AS AVG_DERIVED_SUM_0",
		"COUNT(order_id) AS AVG_DERIVED_COUNT_1",
		"SUM(order_id) AS AVG_DERIVED_SUM_1",
	}, texts)
	assert.Equal(t, 3, len(ctx.Projections.Aggregations))
	assert.Nil(t, ctx.Pagination)
}

func TestOrderByAndGroupByPadding(t *testing.T) {
	stmt := &statement.SelectStatement{
		Projections: &statement.ProjectionsSegment{Projections: []statement.ProjectionSegment{
			&statement.ColumnProjectionSegment{Column: &statement.ColumnSegment{Name: "order_id"}},
			&statement.AggregationProjectionSegment{Type: statement.AggregationSum, InnerExpression: "(amount)"},
		}},
		Tables: []*statement.TableSegment{{Name: "t_order", Alias: "o"}},
		GroupBy: &statement.GroupBySegment{Stop: 60, Items: []statement.OrderByItemSegment{
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "user_id", Owner: &statement.OwnerSegment{Name: "o"}}},
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "order_id"}},
		}},
		OrderBy: &statement.OrderBySegment{Items: []statement.OrderByItemSegment{
			&statement.ExpressionOrderByItemSegment{Text: "SUM( amount )", OrderDirection: statement.OrderDesc},
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "amount"}},
			&statement.IndexOrderByItemSegment{Index: 1},
		}},
	}
	ctx, err := NewSelectContext(stmt, nil, testMetas)
	require.Nil(t, err)

	var texts []string
	for _, d := range ctx.Projections.DerivedProjections() {
		texts = append(texts, d.String())
	}
	assert.Equal(t, []string{"o.user_id AS GROUP_BY_DERIVED_0", "amount AS ORDER_BY_DERIVED_0"}, texts)
	assert.False(t, ctx.OrderBy.Generated)
	assert.False(t, ctx.IsSameGroupByAndOrderBy())
	assert.Equal(t, 60, ctx.GroupBy.LastIndex)
}

func TestOrderByGeneratedFromGroupBy(t *testing.T) {
	stmt := &statement.SelectStatement{
		Projections: &statement.ProjectionsSegment{Projections: []statement.ProjectionSegment{
			&statement.ShorthandProjectionSegment{Owner: &statement.OwnerSegment{Name: "o"}},
		}},
		Tables: []*statement.TableSegment{{Name: "t_order", Alias: "o"}, {Name: "t_order_item", Alias: "i"}},
		GroupBy: &statement.GroupBySegment{Items: []statement.OrderByItemSegment{
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "user_id"}, OrderDirection: statement.OrderDesc},
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "price"}},
		}},
	}
	ctx, err := NewSelectContext(stmt, nil, testMetas)
	require.Nil(t, err)

	assert.True(t, ctx.OrderBy.Generated)
	assert.Equal(t, 2, len(ctx.OrderBy.Items))
	assert.Equal(t, statement.OrderAsc, ctx.OrderBy.Items[0].Direction)
	assert.True(t, ctx.IsSameGroupByAndOrderBy())

	derived := ctx.Projections.DerivedProjections()
	require.Equal(t, 1, len(derived))
	assert.Equal(t, "price AS GROUP_BY_DERIVED_0", derived[0].String())
}

func TestPagination(t *testing.T) {
	limit := &statement.LimitSegment{
		Offset:   &statement.ParameterMarkerLimitValueSegment{ParameterIndex: 1},
		RowCount: &statement.NumberLiteralLimitValueSegment{Value: 10},
	}
	p, err := NewPaginationContext(limit, []interface{}{"x", uint16(20)})
	require.Nil(t, err)
	assert.True(t, p.HasOffset())
	assert.Equal(t, int64(20), p.Offset())
	assert.Equal(t, int64(10), p.RowCount())
	assert.Equal(t, int64(30), p.RevisedRowCount(nil))
	assert.Equal(t, int64(0), p.RevisedOffset())

	index, ok := p.OffsetParameterIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, index)
	_, ok = p.RowCountParameterIndex()
	assert.False(t, ok)

	_, err = NewPaginationContext(limit, []interface{}{"x", "y"})
	assert.Error(t, err)
	_, err = NewPaginationContext(limit, []interface{}{"x"})
	assert.Error(t, err)
}

func TestPaginationWithGroupByNeedsAllRows(t *testing.T) {
	stmt := &statement.SelectStatement{
		Projections: &statement.ProjectionsSegment{Projections: []statement.ProjectionSegment{
			&statement.ShorthandProjectionSegment{},
		}},
		Tables: []*statement.TableSegment{{Name: "t_order"}},
		GroupBy: &statement.GroupBySegment{Items: []statement.OrderByItemSegment{
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "user_id"}},
		}},
		OrderBy: &statement.OrderBySegment{Items: []statement.OrderByItemSegment{
			&statement.ColumnOrderByItemSegment{Column: &statement.ColumnSegment{Name: "amount"}},
		}},
		Limit: &statement.LimitSegment{RowCount: &statement.NumberLiteralLimitValueSegment{Value: 5}},
	}
	ctx, err := NewSelectContext(stmt, nil, testMetas)
	require.Nil(t, err)
	assert.False(t, ctx.Projections.HasDerived())
	assert.Equal(t, MaxRowCount, ctx.Pagination.RevisedRowCount(ctx))
	assert.False(t, ctx.Pagination.HasOffset())
}

func TestNewStatementContext(t *testing.T) {
	ctx, err := NewStatementContext(&statement.DeleteStatement{Tables: []*statement.TableSegment{{Name: "t_order"}}}, nil, testMetas, nil)
	require.Nil(t, err)
	assert.Equal(t, []string{"t_order"}, ctx.GetTables().TableNames())

	_, err = NewStatementContext(&statement.UpdateStatement{Tables: []*statement.TableSegment{
		{Name: "a", Owner: &statement.OwnerSegment{Name: "x"}},
		{Name: "b", Owner: &statement.OwnerSegment{Name: "y"}},
	}}, nil, testMetas, nil)
	assert.Error(t, err)
}
