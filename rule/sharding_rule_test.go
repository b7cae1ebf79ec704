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

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderTableRule(t *testing.T) *TableRule {
	tr, err := NewTableRuleFromExpression("T_Order", "ds${range(0,1)}.t_order${[0,1]}")
	require.Nil(t, err)
	tr.DatabaseStrategy, err = NewShardingStrategy([]string{"user_id"}, "ds${user_id % 2}")
	require.Nil(t, err)
	tr.TableStrategy, err = NewShardingStrategy([]string{"order_id"}, "t_order${order_id % 2}")
	require.Nil(t, err)
	tr.GenerateKeyColumn = "order_id"
	tr.KeyGenerator, err = NewKeyGenerator(SnowflakeKeyGeneratorType, nil)
	require.Nil(t, err)
	return tr
}

func TestParseDataNode(t *testing.T) {
	n, err := ParseDataNode(" DS0.t_order1 ")
	assert.Nil(t, err)
	assert.Equal(t, DataNode{DataSource: "ds0", Table: "t_order1"}, n)
	assert.Equal(t, "ds0.t_order1", n.String())

	_, err = ParseDataNode("t_order1")
	assert.Error(t, err)
	_, err = ParseDataNode("a.b.c")
	assert.Error(t, err)
}

func TestTableRuleFromExpression(t *testing.T) {
	tr := newOrderTableRule(t)
	assert.Equal(t, "t_order", tr.LogicTable)
	assert.Equal(t, 4, len(tr.DataNodes))
	assert.Equal(t, []string{"ds0", "ds1"}, tr.ActualDataSourceNames())
	assert.Equal(t, []string{"t_order0", "t_order1"}, tr.ActualTableNames("ds1"))
	assert.Equal(t, []string{"order_id", "user_id"}, tr.ShardingColumns())
	assert.True(t, tr.IsShardingColumn("USER_ID"))
	assert.False(t, tr.IsShardingColumn("status"))
}

func TestShardingStrategyDoSharding(t *testing.T) {
	s, err := NewShardingStrategy([]string{"order_id"}, "t_order${order_id % 2}")
	assert.Nil(t, err)
	target, err := s.DoSharding(map[string]interface{}{"order_id": 7})
	assert.Nil(t, err)
	assert.Equal(t, "t_order1", target)

	_, err = NoneShardingStrategy.DoSharding(map[string]interface{}{"order_id": 7})
	assert.Error(t, err)
	assert.True(t, NoneShardingStrategy.IsNone())
}

func TestShardingRule(t *testing.T) {
	r := NewShardingRule("ds0", []string{"T_Config"}, newOrderTableRule(t))

	assert.True(t, r.IsShardingTable("t_order"))
	assert.False(t, r.IsShardingTable("t_config"))
	assert.True(t, r.IsBroadcastTable("t_config"))
	assert.True(t, r.ContainsTable("t_config"))
	assert.False(t, r.ContainsTable("t_user"))
	assert.Equal(t, []string{"t_order"}, r.LogicTableNames())

	assert.True(t, r.IsShardingColumn("order_id", "T_ORDER"))
	assert.False(t, r.IsShardingColumn("order_id", "t_config"))

	tr, ok := r.FindTableRuleByActualTable("t_order1")
	assert.True(t, ok)
	assert.Equal(t, "t_order", tr.LogicTable)
	_, ok = r.FindTableRuleByActualTable("t_user")
	assert.False(t, ok)
	logic, ok := r.FindLogicTableByActualTable("T_ORDER1")
	assert.True(t, ok)
	assert.Equal(t, "t_order", logic)

	column, ok := r.FindGenerateKeyColumnName("t_order")
	assert.True(t, ok)
	assert.Equal(t, "order_id", column)
	_, ok = r.FindGenerateKeyColumnName("t_config")
	assert.False(t, ok)

	k1, err := r.GenerateKey("t_order")
	assert.Nil(t, err)
	k2, err := r.GenerateKey("t_order")
	assert.Nil(t, err)
	assert.NotEqual(t, k1, k2)

	_, err = r.GenerateKey("t_config")
	assert.Error(t, err)
}
