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
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/endink/sharding-rewrite/core"
)

// ShardingCondition is the merged route values of one AND group or one insert row, keyed by column in
// the order the columns first appeared. An always false condition carries no route value.
type ShardingCondition struct {
	values      *linkedhashmap.Map
	alwaysFalse bool
}

func NewShardingCondition() *ShardingCondition {
	return &ShardingCondition{values: linkedhashmap.New()}
}

// NewAlwaysFalseShardingCondition creates the condition no row can match.
func NewAlwaysFalseShardingCondition() *ShardingCondition {
	return &ShardingCondition{values: linkedhashmap.New(), alwaysFalse: true}
}

func (c *ShardingCondition) IsAlwaysFalse() bool {
	return c.alwaysFalse
}

// Add merges the route value with the value already collected for its column.
func (c *ShardingCondition) Add(value RouteValue) error {
	if c.alwaysFalse {
		return nil
	}
	column := value.Column()
	if existing, found := c.values.Get(column); found {
		merged, err := Merge(existing.(RouteValue), value)
		if err != nil {
			return err
		}
		value = merged
	}
	if value.Kind() == RouteValueAlwaysFalse {
		c.values.Clear()
		c.alwaysFalse = true
		return nil
	}
	c.values.Put(column, value)
	return nil
}

func (c *ShardingCondition) Get(column core.Column) (RouteValue, bool) {
	v, found := c.values.Get(column)
	if !found {
		return nil, false
	}
	return v.(RouteValue), true
}

func (c *ShardingCondition) Columns() []core.Column {
	keys := c.values.Keys()
	columns := make([]core.Column, len(keys))
	for i, k := range keys {
		columns[i] = k.(core.Column)
	}
	return columns
}

func (c *ShardingCondition) RouteValues() []RouteValue {
	values := c.values.Values()
	result := make([]RouteValue, len(values))
	for i, v := range values {
		result[i] = v.(RouteValue)
	}
	return result
}

func (c *ShardingCondition) Size() int {
	return c.values.Size()
}

func (c *ShardingCondition) IsEmpty() bool {
	return !c.alwaysFalse && c.values.Empty()
}

func (c *ShardingCondition) Equals(other *ShardingCondition) bool {
	if other == nil || c.alwaysFalse != other.alwaysFalse || c.values.Size() != other.values.Size() {
		return false
	}
	for _, v := range c.RouteValues() {
		o, ok := other.Get(v.Column())
		if !ok || !RouteValueEquals(v, o) {
			return false
		}
	}
	return true
}

func (c *ShardingCondition) String() string {
	if c.alwaysFalse {
		return "always false"
	}
	items := make([]string, 0, c.values.Size())
	for _, v := range c.RouteValues() {
		items = append(items, v.String())
	}
	return "(" + strings.Join(items, " and ") + ")"
}

// ShardingConditions is the disjunction of the conditions, no condition means the statement is not constrained.
type ShardingConditions struct {
	Conditions []*ShardingCondition
}

// IsAlwaysFalse reports whether no condition can match any row.
func (s *ShardingConditions) IsAlwaysFalse() bool {
	if len(s.Conditions) == 0 {
		return false
	}
	for _, c := range s.Conditions {
		if !c.IsAlwaysFalse() {
			return false
		}
	}
	return true
}

func (s *ShardingConditions) IsEmpty() bool {
	return len(s.Conditions) == 0
}

func (s *ShardingConditions) Contains(condition *ShardingCondition) bool {
	for _, c := range s.Conditions {
		if c.Equals(condition) {
			return true
		}
	}
	return false
}

func (s *ShardingConditions) String() string {
	items := make([]string, len(s.Conditions))
	for i, c := range s.Conditions {
		items[i] = c.String()
	}
	return strings.Join(items, " or ")
}
