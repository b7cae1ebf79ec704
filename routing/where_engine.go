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
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/core/comparison"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/pingcap/errors"
)

var logger = logging.GetLogger("routing")

// WhereClauseShardingConditionEngine extracts the sharding conditions of select, update and delete statements.
// It keeps no state between calls and can be shared.
type WhereClauseShardingConditionEngine struct {
	shardingRule *rule.ShardingRule
	metas        metadata.TableMetas
}

func NewWhereClauseShardingConditionEngine(shardingRule *rule.ShardingRule, metas metadata.TableMetas) *WhereClauseShardingConditionEngine {
	return &WhereClauseShardingConditionEngine{
		shardingRule: shardingRule,
		metas:        metas,
	}
}

// CreateShardingConditions returns one condition per AND group of the where clause, followed by the
// conditions of the subqueries that are not already present. No condition means the statement is not
// constrained: when any AND group carries no sharding value the whole where clause constrains nothing.
func (e *WhereClauseShardingConditionEngine) CreateShardingConditions(ctx explain.StatementContext, parameters []interface{}) (*ShardingConditions, error) {
	result := &ShardingConditions{}
	stmt, ok := ctx.GetStatement().(statement.WhereStatement)
	if !ok {
		return result, nil
	}
	if where := stmt.GetWhere(); where != nil {
		conditions, err := e.createShardingConditions(where, ctx.GetTables(), parameters)
		if err != nil {
			return nil, err
		}
		result.Conditions = conditions
	}

	for _, sub := range statement.FindSubqueries(stmt) {
		if sub.Where == nil {
			continue
		}
		tables, err := explain.NewTableLookup(sub.GetTables())
		if err != nil {
			return nil, err
		}
		conditions, err := e.createShardingConditions(sub.Where, tables, parameters)
		if err != nil {
			return nil, err
		}
		for _, c := range conditions {
			if !result.Contains(c) {
				result.Conditions = append(result.Conditions, c)
			}
		}
	}

	observeConditions(telemetry.ConditionKindWhere, result)
	return result, nil
}

func (e *WhereClauseShardingConditionEngine) createShardingConditions(where *statement.WhereSegment, tables explain.TableLookup, parameters []interface{}) ([]*ShardingCondition, error) {
	result := make([]*ShardingCondition, 0, len(where.AndPredicates))
	for _, and := range where.AndPredicates {
		values, err := e.createRouteValues(and.Predicates, tables, parameters)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			logger.Debugf("an AND group of the where clause [%d, %d] has no sharding value, the where clause is not used for routing", where.Start, where.Stop)
			return []*ShardingCondition{}, nil
		}
		condition := NewShardingCondition()
		for _, v := range values {
			if err = condition.Add(v); err != nil {
				return nil, err
			}
		}
		if condition.IsAlwaysFalse() {
			logger.Debugf("sharding condition of the where clause [%d, %d] is always false", where.Start, where.Stop)
		}
		result = append(result, condition)
	}
	return result, nil
}

func (e *WhereClauseShardingConditionEngine) createRouteValues(predicates []*statement.PredicateSegment, tables explain.TableLookup, parameters []interface{}) ([]RouteValue, error) {
	var result []RouteValue
	for _, p := range predicates {
		table, ok := tables.FindTableNameByColumn(p.Column, e.metas)
		if !ok {
			logger.Debugf("table of column '%s' can not be resolved, predicate skipped", p.Column.QualifiedName())
			continue
		}
		if !e.shardingRule.IsShardingColumn(p.Column.Name, table) {
			continue
		}
		value, ok, err := createRouteValue(core.NewColumn(p.Column.Name, table), p.RightValue, parameters)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, value)
		}
	}
	return result, nil
}

// createRouteValue returns false when the predicate can not be used for routing.
func createRouteValue(column core.Column, rightValue statement.PredicateRightValue, parameters []interface{}) (RouteValue, bool, error) {
	switch rv := rightValue.(type) {
	case *statement.CompareRightValue:
		if rv.Operator != statement.OperatorEqual {
			return nil, false, nil
		}
		v, ok, err := resolveValue(rv.Expression, parameters)
		if err != nil || !ok {
			return nil, false, err
		}
		list, err := NewListRouteValue(column, v)
		if err != nil {
			return nil, false, err
		}
		return list, true, nil
	case *statement.InRightValue:
		values := make([]interface{}, 0, len(rv.Expressions))
		for _, expr := range rv.Expressions {
			v, ok, err := resolveValue(expr, parameters)
			if err != nil {
				return nil, false, err
			}
			if ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, false, nil
		}
		list, err := NewListRouteValue(column, values...)
		if err != nil {
			return nil, false, err
		}
		return list, true, nil
	case *statement.BetweenRightValue:
		lower, ok, err := resolveValue(rv.Between, parameters)
		if err != nil || !ok {
			return nil, false, err
		}
		upper, ok, err := resolveValue(rv.And, parameters)
		if err != nil || !ok {
			return nil, false, err
		}
		r, err := core.NewRange(lower, upper)
		if err != nil {
			if errors.Cause(err) == core.ErrRangeInvalidBound {
				return NewAlwaysFalseRouteValue(column), true, nil
			}
			return nil, false, err
		}
		return NewRangeRouteValue(column, r), true, nil
	}
	return nil, false, nil
}

// resolveValue returns false for expressions which are neither a literal nor a parameter marker, and for NULL.
func resolveValue(expr statement.ExpressionSegment, parameters []interface{}) (interface{}, bool, error) {
	var value interface{}
	switch e := expr.(type) {
	case *statement.LiteralExpression:
		value = e.Value
	case *statement.DerivedLiteralExpression:
		value = e.Value
	case *statement.ParameterMarkerExpression:
		if e.ParameterIndex < 0 || e.ParameterIndex >= len(parameters) {
			return nil, false, errors.Errorf("parameter index %d is out of range, parameter count: %d", e.ParameterIndex, len(parameters))
		}
		value = parameters[e.ParameterIndex]
	default:
		return nil, false, nil
	}
	if value == nil {
		return nil, false, nil
	}
	if !comparison.IsCompareSupported(value) {
		return nil, false, errors.Annotatef(core.ErrNotComparable, "value: %v, type: %T", value, value)
	}
	return value, true, nil
}

func observeConditions(kind string, conditions *ShardingConditions) {
	if conditions.IsEmpty() {
		telemetry.ObserveShardingConditions(kind, telemetry.ConditionResultUnconstrained, 1)
		return
	}
	alwaysFalse := 0
	for _, c := range conditions.Conditions {
		if c.IsAlwaysFalse() {
			alwaysFalse++
		}
	}
	if alwaysFalse > 0 {
		telemetry.ObserveShardingConditions(kind, telemetry.ConditionResultAlwaysFalse, alwaysFalse)
	}
	if ok := len(conditions.Conditions) - alwaysFalse; ok > 0 {
		telemetry.ObserveShardingConditions(kind, telemetry.ConditionResultOk, ok)
	}
}
