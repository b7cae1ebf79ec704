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

package config

import (
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/pingcap/errors"
)

const (
	ShardingColumnPropertyName = "sharding-columns"
	ExpressionPropertyName     = "expression"

	noneStrategy = "none"
)

// InlineBuilder is the "inline" strategy settings.
type InlineBuilder struct {
	ShardingColumns string `yaml:"sharding-columns"`
	Expression      string `yaml:"expression"`
}

func (i *InlineBuilder) Build() (*rule.ShardingStrategy, error) {
	columns, err := i.loadShardingColumns()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(i.Expression) == "" {
		return nil, errors.Errorf("configuration property '%s' missed for inline strategy", ExpressionPropertyName)
	}
	s, err := rule.NewShardingStrategy(columns, i.Expression)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid configuration property '%s' for inline strategy", ExpressionPropertyName)
	}
	return s, nil
}

func (i *InlineBuilder) loadShardingColumns() ([]string, error) {
	if i.ShardingColumns == "" {
		return nil, errors.Errorf("configuration property '%s' missed for inline strategy", ShardingColumnPropertyName)
	}
	columns := core.DistinctSliceAndTrim(strings.Split(i.ShardingColumns, ","))
	if len(columns) == 0 {
		return nil, errors.Errorf("invalid configuration property '%s' for inline strategy, have no columns can be parsed", ShardingColumnPropertyName)
	}
	for _, col := range columns {
		if err := core.ValidateIdentifier(col); err != nil {
			return nil, errors.Annotatef(err, "invalid configuration property '%s' for inline strategy", ShardingColumnPropertyName)
		}
	}
	return columns, nil
}

// StrategySettings is either the scalar "none" or a map holding an inline strategy.
type StrategySettings struct {
	None   bool
	Inline *InlineBuilder
}

func (s *StrategySettings) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		if !core.EqualsIgnoreCase(scalar, noneStrategy) {
			return errors.Errorf("unknown sharding strategy '%s'", scalar)
		}
		s.None = true
		return nil
	}
	var m struct {
		Inline *InlineBuilder `yaml:"inline"`
	}
	if err := unmarshal(&m); err != nil {
		return err
	}
	s.Inline = m.Inline
	return nil
}

func (s *StrategySettings) Build() (*rule.ShardingStrategy, error) {
	if s == nil || s.None || s.Inline == nil {
		return rule.NoneShardingStrategy, nil
	}
	return s.Inline.Build()
}
