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
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/pingcap/errors"
)

// InsertClauseShardingConditionEngine extracts one sharding condition per insert row.
type InsertClauseShardingConditionEngine struct {
	shardingRule *rule.ShardingRule
}

func NewInsertClauseShardingConditionEngine(shardingRule *rule.ShardingRule) *InsertClauseShardingConditionEngine {
	return &InsertClauseShardingConditionEngine{shardingRule: shardingRule}
}

// CreateShardingConditions pairs the values of each row with the insert columns, values of sharding columns
// become list route values. A generated key of a sharding column adds the value generated for the row.
func (e *InsertClauseShardingConditionEngine) CreateShardingConditions(ctx *explain.InsertContext) (*ShardingConditions, error) {
	table := ctx.TableName()
	result := &ShardingConditions{Conditions: make([]*ShardingCondition, 0, len(ctx.Values))}

	var generatedKey *explain.GeneratedKey
	if gk := ctx.GeneratedKey; gk != nil && gk.Generated && e.shardingRule.IsShardingColumn(gk.ColumnName, table) {
		if len(gk.Values) != len(ctx.Values) {
			return nil, errors.Errorf("generated key values count %d doesn't match insert rows count %d", len(gk.Values), len(ctx.Values))
		}
		generatedKey = gk
	}

	for rowIndex, row := range ctx.Values {
		condition := NewShardingCondition()
		for i, columnName := range ctx.ColumnNames {
			if !e.shardingRule.IsShardingColumn(columnName, table) || !row.IsSimpleAt(i) {
				continue
			}
			v, err := row.ValueAt(i)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if err = e.addValue(condition, core.NewColumn(columnName, table), v); err != nil {
				return nil, err
			}
		}
		if generatedKey != nil {
			column := core.NewColumn(generatedKey.ColumnName, table)
			if err := e.addValue(condition, column, generatedKey.Values[rowIndex]); err != nil {
				return nil, err
			}
		}
		result.Conditions = append(result.Conditions, condition)
	}

	observeConditions(telemetry.ConditionKindInsert, result)
	return result, nil
}

func (e *InsertClauseShardingConditionEngine) addValue(condition *ShardingCondition, column core.Column, value interface{}) error {
	v, err := NewListRouteValue(column, value)
	if err != nil {
		return errors.Annotatef(err, "column: %s", column)
	}
	return condition.Add(v)
}
