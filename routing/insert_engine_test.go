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
	"testing"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertInto(table string, columns []string, rows ...[]statement.ExpressionSegment) *statement.InsertStatement {
	stmt := &statement.InsertStatement{Table: &statement.TableSegment{Name: table}}
	if len(columns) > 0 {
		stmt.Columns = &statement.InsertColumnsSegment{}
		for _, c := range columns {
			stmt.Columns.Columns = append(stmt.Columns.Columns, column(c))
		}
	}
	for _, r := range rows {
		stmt.Values = append(stmt.Values, &statement.InsertValuesSegment{Values: r})
	}
	return stmt
}

func row(values ...statement.ExpressionSegment) []statement.ExpressionSegment {
	return values
}

func createInsertConditions(t *testing.T, shardingRule *rule.ShardingRule, stmt *statement.InsertStatement, parameters ...interface{}) (*explain.InsertContext, *ShardingConditions) {
	ctx, err := explain.NewInsertContext(stmt, parameters, testMetas, shardingRule)
	require.Nil(t, err)
	conditions, err := NewInsertClauseShardingConditionEngine(shardingRule).CreateShardingConditions(ctx)
	require.Nil(t, err)
	return ctx, conditions
}

func TestInsertConditionPerRow(t *testing.T) {
	// INSERT INTO t_user (id, name) VALUES (1, 'x'), (2, 'y')
	stmt := insertInto("t_user", []string{"id", "name"},
		row(literal(1), literal("x")),
		row(literal(2), literal("y")))

	_, conditions := createInsertConditions(t, newTestRule(t), stmt)
	require.Equal(t, 2, len(conditions.Conditions))
	id := core.NewColumn("id", "t_user")
	for i, excepted := range []int{1, 2} {
		c := conditions.Conditions[i]
		assert.Equal(t, []core.Column{id}, c.Columns())
		v, _ := c.Get(id)
		assertListValues(t, v, excepted)
	}
}

func TestInsertConditionWithGeneratedKey(t *testing.T) {
	// INSERT INTO t_order (user_id, status) VALUES (?, ?), (?, 'y')
	stmt := insertInto("t_order", []string{"user_id", "status"},
		row(statement.NewParameterMarker(0, 0, 0), statement.NewParameterMarker(0, 0, 1)),
		row(statement.NewParameterMarker(0, 0, 2), literal("y")))

	ctx, conditions := createInsertConditions(t, newTestRule(t), stmt, 10, "x", 11)
	require.True(t, ctx.GeneratedKey.Generated)
	require.Equal(t, 2, len(conditions.Conditions))

	userID := core.NewColumn("user_id", "t_order")
	orderID := core.NewColumn("order_id", "t_order")
	for i, excepted := range []int{10, 11} {
		c := conditions.Conditions[i]
		assert.Equal(t, []core.Column{userID, orderID}, c.Columns())
		v, _ := c.Get(userID)
		assertListValues(t, v, excepted)
		v, _ = c.Get(orderID)
		assertListValues(t, v, ctx.GeneratedKey.Values[i])
	}
}

func TestInsertConditionWithUserSuppliedKey(t *testing.T) {
	// INSERT INTO t_order SET order_id = 5, user_id = NOW()
	stmt := &statement.InsertStatement{
		Table: &statement.TableSegment{Name: "t_order"},
		SetAssignment: &statement.SetAssignmentSegment{Assignments: []*statement.AssignmentSegment{
			{Column: column("order_id"), Value: literal(5)},
			{Column: column("user_id"), Value: &statement.ComplexExpression{Text: "NOW()"}},
		}},
	}
	ctx, conditions := createInsertConditions(t, newTestRule(t), stmt)
	assert.False(t, ctx.GeneratedKey.Generated)
	require.Equal(t, 1, len(conditions.Conditions))
	assert.Equal(t, []core.Column{core.NewColumn("order_id", "t_order")}, conditions.Conditions[0].Columns())
}

func TestInsertConditionWithoutShardingColumn(t *testing.T) {
	stmt := insertInto("t_user", []string{"name"}, row(literal("x")))
	_, conditions := createInsertConditions(t, newTestRule(t), stmt)
	require.Equal(t, 1, len(conditions.Conditions))
	assert.True(t, conditions.Conditions[0].IsEmpty())
}

func TestRouteUnit(t *testing.T) {
	unit := NewRouteUnit("DS", "ds1",
		RouteMapper{LogicName: "t_order", ActualName: "t_order_1"},
		RouteMapper{LogicName: "t_order_item", ActualName: "t_order_item_1"})

	actual, ok := unit.FindActualTable("T_ORDER")
	assert.True(t, ok)
	assert.Equal(t, "t_order_1", actual)
	_, ok = unit.FindActualTable("t_user")
	assert.False(t, ok)
	assert.Equal(t, []string{"t_order", "t_order_item"}, unit.LogicTableNames())
	assert.Equal(t, "ds1: t_order->t_order_1, t_order_item->t_order_item_1", unit.String())
}

func TestRouteResultFromDataNodes(t *testing.T) {
	result := NewRouteResultFromDataNodes("t_order",
		rule.DataNode{DataSource: "ds1", Table: "t_order_1"},
		rule.DataNode{DataSource: "ds0", Table: "t_order_1"},
		rule.DataNode{DataSource: "ds0", Table: "t_order_0"})

	testkit.MustMatch(t, &RouteResult{Units: []*RouteUnit{
		{DataSource: RouteMapper{LogicName: "ds1", ActualName: "ds1"}, Tables: []RouteMapper{{LogicName: "t_order", ActualName: "t_order_1"}}},
		{DataSource: RouteMapper{LogicName: "ds0", ActualName: "ds0"}, Tables: []RouteMapper{{LogicName: "t_order", ActualName: "t_order_1"}}},
		{DataSource: RouteMapper{LogicName: "ds0", ActualName: "ds0"}, Tables: []RouteMapper{{LogicName: "t_order", ActualName: "t_order_0"}}},
	}}, result)
	assert.False(t, result.IsSingleRoute())
	assert.Equal(t, []string{"ds0", "ds1"}, result.ActualDataSourceNames())
	assert.Equal(t, []string{"t_order_0", "t_order_1"}, result.ActualTableNames("ds0", "t_order"))
	assert.Equal(t, []string{}, result.ActualTableNames("ds2", "t_order"))
}
