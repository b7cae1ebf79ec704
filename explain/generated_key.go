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
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/pingcap/errors"
)

// GeneratedKey is the key column of an insert, Generated is false when the statement supplies the values itself.
// Values holds one value per insert row in row order.
type GeneratedKey struct {
	ColumnName string
	Generated  bool
	Values     []interface{}
}

// LastInsertID returns the first generated value, as LAST_INSERT_ID() reports it.
func (g *GeneratedKey) LastInsertID() (interface{}, bool) {
	if g == nil || !g.Generated || len(g.Values) == 0 {
		return nil, false
	}
	return g.Values[0], true
}

func newGeneratedKey(shardingRule *rule.ShardingRule, table string, columnNames []string, rows []*InsertValue) (*GeneratedKey, error) {
	if shardingRule == nil {
		return nil, nil
	}
	column, ok := shardingRule.FindGenerateKeyColumnName(table)
	if !ok {
		return nil, nil
	}
	g := &GeneratedKey{ColumnName: column, Values: make([]interface{}, 0, len(rows))}

	index := -1
	for i, c := range columnNames {
		if core.EqualsIgnoreCase(c, column) {
			index = i
			break
		}
	}

	if index >= 0 {
		for _, row := range rows {
			if !row.IsSimpleAt(index) {
				g.Values = append(g.Values, nil)
				continue
			}
			v, err := row.ValueAt(index)
			if err != nil {
				return nil, err
			}
			g.Values = append(g.Values, v)
		}
		return g, nil
	}

	g.Generated = true
	for range rows {
		v, err := shardingRule.GenerateKey(table)
		if err != nil {
			return nil, errors.Trace(err)
		}
		g.Values = append(g.Values, v)
	}
	return g, nil
}
