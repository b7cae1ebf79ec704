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
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetas = metadata.NewTableMetas(
	metadata.NewTableMeta("t_order",
		&metadata.ColumnMeta{Name: "order_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "user_id"},
		&metadata.ColumnMeta{Name: "status"}),
	metadata.NewTableMeta("t_order_item",
		&metadata.ColumnMeta{Name: "item_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "order_id"},
		&metadata.ColumnMeta{Name: "user_id"}),
	metadata.NewTableMeta("t_user",
		&metadata.ColumnMeta{Name: "id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "name"}),
)

func newTestRule(t *testing.T) *rule.ShardingRule {
	order, err := rule.NewTableRuleFromExpression("t_order", "ds${range(0,1)}.t_order${[0,1]}")
	require.Nil(t, err)
	order.DatabaseStrategy, err = rule.NewShardingStrategy([]string{"user_id"}, "ds${user_id % 2}")
	require.Nil(t, err)
	order.TableStrategy, err = rule.NewShardingStrategy([]string{"order_id"}, "t_order${order_id % 2}")
	require.Nil(t, err)
	order.GenerateKeyColumn = "order_id"
	order.KeyGenerator, err = rule.NewKeyGenerator(rule.SnowflakeKeyGeneratorType, nil)
	require.Nil(t, err)

	item, err := rule.NewTableRuleFromExpression("t_order_item", "ds0.t_order_item${[0,1]}")
	require.Nil(t, err)
	item.TableStrategy, err = rule.NewShardingStrategy([]string{"order_id"}, "t_order_item${order_id % 2}")
	require.Nil(t, err)

	user, err := rule.NewTableRuleFromExpression("t_user", "ds0.t_user${[0,1]}")
	require.Nil(t, err)
	user.TableStrategy, err = rule.NewShardingStrategy([]string{"id"}, "t_user${id % 2}")
	require.Nil(t, err)

	return rule.NewShardingRule("ds0", nil, order, item, user)
}

func column(name string, owner ...string) *statement.ColumnSegment {
	c := &statement.ColumnSegment{Name: name}
	if len(owner) > 0 {
		c.Owner = &statement.OwnerSegment{Name: owner[0]}
	}
	return c
}

func literal(v interface{}) statement.ExpressionSegment {
	return statement.NewLiteral(0, 0, v)
}

func equal(c *statement.ColumnSegment, value statement.ExpressionSegment) *statement.PredicateSegment {
	return &statement.PredicateSegment{Column: c, RightValue: &statement.CompareRightValue{Operator: statement.OperatorEqual, Expression: value}}
}

func in(c *statement.ColumnSegment, values ...statement.ExpressionSegment) *statement.PredicateSegment {
	return &statement.PredicateSegment{Column: c, RightValue: &statement.InRightValue{Expressions: values}}
}

func between(c *statement.ColumnSegment, lower, upper statement.ExpressionSegment) *statement.PredicateSegment {
	return &statement.PredicateSegment{Column: c, RightValue: &statement.BetweenRightValue{Between: lower, And: upper}}
}

func where(groups ...[]*statement.PredicateSegment) *statement.WhereSegment {
	w := &statement.WhereSegment{}
	for _, g := range groups {
		w.AndPredicates = append(w.AndPredicates, &statement.AndPredicate{Predicates: g})
	}
	return w
}

func and(predicates ...*statement.PredicateSegment) []*statement.PredicateSegment {
	return predicates
}

func selectFrom(w *statement.WhereSegment, tables ...*statement.TableSegment) *statement.SelectStatement {
	return &statement.SelectStatement{
		Projections: &statement.ProjectionsSegment{Projections: []statement.ProjectionSegment{&statement.ShorthandProjectionSegment{}}},
		Tables:      tables,
		Where:       w,
	}
}

func createWhereConditions(t *testing.T, stmt statement.Statement, parameters ...interface{}) (*ShardingConditions, error) {
	ctx, err := explain.NewStatementContext(stmt, parameters, testMetas, nil)
	require.Nil(t, err)
	return NewWhereClauseShardingConditionEngine(newTestRule(t), testMetas).CreateShardingConditions(ctx, parameters)
}

func TestWhereEqualAndIn(t *testing.T) {
	// SELECT * FROM t_order WHERE user_id = 1 AND order_id IN (10, 20)
	stmt := selectFrom(where(and(
		equal(column("user_id"), literal(1)),
		in(column("order_id"), literal(10), literal(20)),
	)), &statement.TableSegment{Name: "t_order"})

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	require.Equal(t, 1, len(conditions.Conditions))
	c := conditions.Conditions[0]
	assert.Equal(t, 2, c.Size())

	v, ok := c.Get(core.NewColumn("user_id", "t_order"))
	require.True(t, ok)
	assertListValues(t, v, 1)
	v, ok = c.Get(core.NewColumn("order_id", "t_order"))
	require.True(t, ok)
	assertListValues(t, v, 10, 20)
}

func TestWhereBetweenMergedWithIn(t *testing.T) {
	// SELECT * FROM t_order WHERE user_id BETWEEN 1 AND 10 AND user_id IN (5, 15)
	stmt := selectFrom(where(and(
		between(column("user_id"), literal(1), literal(10)),
		in(column("user_id"), literal(5), literal(15)),
	)), &statement.TableSegment{Name: "t_order"})

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	require.Equal(t, 1, len(conditions.Conditions))
	v, ok := conditions.Conditions[0].Get(core.NewColumn("user_id", "t_order"))
	require.True(t, ok)
	assertListValues(t, v, 5)
}

func TestWhereParametersAndOperators(t *testing.T) {
	// SELECT * FROM t_order o WHERE o.user_id = ? AND order_id > ? AND status = ? AND order_id IN (?, order_id + 1, NULL)
	stmt := selectFrom(where(and(
		equal(column("user_id", "o"), statement.NewParameterMarker(0, 0, 0)),
		&statement.PredicateSegment{Column: column("order_id"), RightValue: &statement.CompareRightValue{Operator: statement.OperatorGreaterThan, Expression: statement.NewParameterMarker(0, 0, 1)}},
		equal(column("status"), statement.NewParameterMarker(0, 0, 2)),
		in(column("order_id"), statement.NewParameterMarker(0, 0, 3), &statement.ComplexExpression{Text: "order_id + 1"}, literal(nil)),
	)), &statement.TableSegment{Name: "t_order", Alias: "o"})

	conditions, err := createWhereConditions(t, stmt, 7, 100, "x", int64(8))
	require.Nil(t, err)
	require.Equal(t, 1, len(conditions.Conditions))
	c := conditions.Conditions[0]
	assert.Equal(t, []core.Column{core.NewColumn("user_id", "t_order"), core.NewColumn("order_id", "t_order")}, c.Columns())
	v, _ := c.Get(core.NewColumn("order_id", "t_order"))
	assertListValues(t, v, 8)
}

func TestWhereOrGroups(t *testing.T) {
	// SELECT * FROM t_order WHERE user_id = 1 OR user_id = 2 AND user_id = 3
	stmt := selectFrom(where(
		and(equal(column("user_id"), literal(1))),
		and(equal(column("user_id"), literal(2)), equal(column("user_id"), literal(3))),
	), &statement.TableSegment{Name: "t_order"})

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	require.Equal(t, 2, len(conditions.Conditions))
	assert.False(t, conditions.Conditions[0].IsAlwaysFalse())
	assert.True(t, conditions.Conditions[1].IsAlwaysFalse())
	assert.False(t, conditions.IsAlwaysFalse())
}

func TestWhereReversedBetweenIsAlwaysFalse(t *testing.T) {
	stmt := selectFrom(where(and(between(column("user_id"), literal(10), literal(1)))), &statement.TableSegment{Name: "t_order"})
	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	assert.True(t, conditions.IsAlwaysFalse())
}

func TestUnshardableBranchSuppressesSiblings(t *testing.T) {
	// SELECT * FROM t_order WHERE user_id = 1 OR status = 'x'
	stmt := selectFrom(where(
		and(equal(column("user_id"), literal(1))),
		and(equal(column("status"), literal("x"))),
	), &statement.TableSegment{Name: "t_order"})

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	assert.True(t, conditions.IsEmpty())
	assert.False(t, conditions.IsAlwaysFalse())
}

func TestWhereAmbiguousColumnSkipped(t *testing.T) {
	// SELECT * FROM t_order o JOIN t_order_item i ON ... WHERE order_id = 1 AND i.order_id = 2
	stmt := selectFrom(where(and(
		equal(column("order_id"), literal(1)),
		equal(column("order_id", "i"), literal(2)),
	)), &statement.TableSegment{Name: "t_order", Alias: "o"})
	stmt.Joins = []*statement.JoinSegment{{Table: &statement.TableSegment{Name: "t_order_item", Alias: "i"}}}

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	require.Equal(t, 1, len(conditions.Conditions))
	assert.Equal(t, []core.Column{core.NewColumn("order_id", "t_order_item")}, conditions.Conditions[0].Columns())
}

func TestWhereSubqueries(t *testing.T) {
	// SELECT * FROM t_order WHERE user_id = 1 AND order_id IN (SELECT order_id FROM t_order_item WHERE order_id = 10)
	//   AND user_id IN (SELECT user_id FROM t_order WHERE user_id = 1)
	item := selectFrom(where(and(equal(column("order_id"), literal(10)))), &statement.TableSegment{Name: "t_order_item"})
	dup := selectFrom(where(and(equal(column("user_id"), literal(1)))), &statement.TableSegment{Name: "t_order"})
	stmt := selectFrom(where(and(
		equal(column("user_id"), literal(1)),
		in(column("order_id"), &statement.SubqueryExpression{Select: item}),
		in(column("user_id"), &statement.SubqueryExpression{Select: dup}),
	)), &statement.TableSegment{Name: "t_order"})

	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	require.Equal(t, 2, len(conditions.Conditions))
	assert.Equal(t, []core.Column{core.NewColumn("user_id", "t_order")}, conditions.Conditions[0].Columns())
	assert.Equal(t, []core.Column{core.NewColumn("order_id", "t_order_item")}, conditions.Conditions[1].Columns())
}

func TestWhereNotComparableValue(t *testing.T) {
	stmt := &statement.DeleteStatement{
		Tables: []*statement.TableSegment{{Name: "t_order"}},
		Where:  where(and(equal(column("user_id"), statement.NewParameterMarker(0, 0, 0)))),
	}
	_, err := createWhereConditions(t, stmt, []int{1})
	assert.Equal(t, core.ErrNotComparable, errors.Cause(err))

	_, err = createWhereConditions(t, stmt)
	assert.Error(t, err)
}

func TestWhereWithoutWhereClause(t *testing.T) {
	stmt := selectFrom(nil, &statement.TableSegment{Name: "t_order"})
	conditions, err := createWhereConditions(t, stmt)
	require.Nil(t, err)
	assert.True(t, conditions.IsEmpty())
}
