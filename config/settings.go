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
	"fmt"
	"sort"
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/rule"
	"go.uber.org/multierr"
)

// Settings is the root of the rule configuration file.
type Settings struct {
	Rule RuleSettings `yaml:"rule"`
}

type RuleSettings struct {
	DefaultSource         string                    `yaml:"default-source"`
	Tables                map[string]*TableSettings `yaml:"tables"`
	BroadcastTables       []string                  `yaml:"broadcast-tables"`
	Encrypt               *EncryptSettings          `yaml:"encrypt"`
	QueryWithCipherColumn *bool                     `yaml:"query-with-cipher-column"`
}

type TableSettings struct {
	Resources     string                `yaml:"resources"`
	DbStrategy    *StrategySettings     `yaml:"db-strategy"`
	TableStrategy *StrategySettings     `yaml:"table-strategy"`
	KeyGenerator  *KeyGeneratorSettings `yaml:"key-generator"`
}

type KeyGeneratorSettings struct {
	Type   string            `yaml:"type"`
	Column string            `yaml:"column"`
	Props  map[string]string `yaml:"props"`
}

type EncryptorSettings struct {
	Type  string            `yaml:"type"`
	Props map[string]string `yaml:"props"`
}

type EncryptColumnSettings struct {
	CipherColumn           string `yaml:"cipher-column"`
	PlainColumn            string `yaml:"plain-column"`
	AssistedQueryColumn    string `yaml:"assisted-query-column"`
	Encryptor              string `yaml:"encryptor"`
	AssistedQueryEncryptor string `yaml:"assisted-query-encryptor"`
}

type EncryptTableSettings struct {
	Columns map[string]*EncryptColumnSettings `yaml:"columns"`
}

type EncryptSettings struct {
	Encryptors map[string]*EncryptorSettings    `yaml:"encryptors"`
	Tables     map[string]*EncryptTableSettings `yaml:"tables"`
}

// Rules is the configuration built into rule objects.
type Rules struct {
	Sharding *rule.ShardingRule
	Encrypt  *rule.EncryptRule
}

func sortedKeys(m interface{}) []string {
	var keys []string
	switch v := m.(type) {
	case map[string]*TableSettings:
		for k := range v {
			keys = append(keys, k)
		}
	case map[string]*EncryptorSettings:
		for k := range v {
			keys = append(keys, k)
		}
	case map[string]*EncryptTableSettings:
		for k := range v {
			keys = append(keys, k)
		}
	case map[string]*EncryptColumnSettings:
		for k := range v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Build validates the settings and creates the rules, all problems are reported together.
func (s *Settings) Build() (*Rules, error) {
	var errs error
	shardingRule, err := s.Rule.buildSharding()
	errs = multierr.Append(errs, err)
	encryptRule, err := s.Rule.buildEncrypt()
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	return &Rules{Sharding: shardingRule, Encrypt: encryptRule}, nil
}

func (r *RuleSettings) buildSharding() (*rule.ShardingRule, error) {
	var errs error
	tableRules := make([]*rule.TableRule, 0, len(r.Tables))
	usedNodes := make(map[rule.DataNode]string)

	for _, name := range sortedKeys(r.Tables) {
		t := r.Tables[name]
		if t == nil {
			t = &TableSettings{}
		}
		tr, err := t.build(name, r.DefaultSource)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, n := range tr.DataNodes {
			if owner, ok := usedNodes[n]; ok {
				errs = multierr.Append(errs, fmt.Errorf("data node '%s' of table '%s' is already used by table '%s'", n, name, owner))
				continue
			}
			usedNodes[n] = name
		}
		tableRules = append(tableRules, tr)
	}

	for _, b := range r.BroadcastTables {
		if _, ok := r.Tables[b]; ok {
			errs = multierr.Append(errs, fmt.Errorf("table '%s' can not be both sharding table and broadcast table", b))
		}
	}

	if errs != nil {
		return nil, errs
	}
	return rule.NewShardingRule(core.TrimAndLower(r.DefaultSource), r.BroadcastTables, tableRules...), nil
}

func (t *TableSettings) build(logicTable string, defaultSource string) (*rule.TableRule, error) {
	var tr *rule.TableRule
	if strings.TrimSpace(t.Resources) == "" {
		if defaultSource == "" {
			return nil, fmt.Errorf("table '%s' has no resources and no default source configured", logicTable)
		}
		tr = rule.NewTableRule(logicTable, rule.DataNode{DataSource: core.TrimAndLower(defaultSource), Table: core.TrimAndLower(logicTable)})
	} else {
		var err error
		if tr, err = rule.NewTableRuleFromExpression(logicTable, t.Resources); err != nil {
			return nil, fmt.Errorf("invalid resources of table '%s': %v", logicTable, err)
		}
	}

	var errs error
	var err error
	if tr.DatabaseStrategy, err = t.DbStrategy.Build(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid db-strategy of table '%s': %v", logicTable, err))
	}
	if tr.TableStrategy, err = t.TableStrategy.Build(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid table-strategy of table '%s': %v", logicTable, err))
	}

	if kg := t.KeyGenerator; kg != nil {
		switch {
		case strings.TrimSpace(kg.Column) == "":
			errs = multierr.Append(errs, fmt.Errorf("key-generator of table '%s' has no column", logicTable))
		case strings.TrimSpace(kg.Type) == "":
			errs = multierr.Append(errs, fmt.Errorf("key-generator of table '%s' has no type", logicTable))
		default:
			g, e := rule.NewKeyGenerator(kg.Type, kg.Props)
			if e != nil {
				errs = multierr.Append(errs, fmt.Errorf("invalid key-generator of table '%s': %v", logicTable, e))
			} else {
				tr.GenerateKeyColumn = core.TrimAndLower(kg.Column)
				tr.KeyGenerator = g
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	return tr, nil
}

func (r *RuleSettings) buildEncrypt() (*rule.EncryptRule, error) {
	queryWithCipher := true
	if r.QueryWithCipherColumn != nil {
		queryWithCipher = *r.QueryWithCipherColumn
	}
	if r.Encrypt == nil {
		return rule.NewEncryptRule(queryWithCipher), nil
	}

	var errs error
	encryptors := make(map[string]rule.Encryptor, len(r.Encrypt.Encryptors))
	for _, name := range sortedKeys(r.Encrypt.Encryptors) {
		es := r.Encrypt.Encryptors[name]
		if es == nil || strings.TrimSpace(es.Type) == "" {
			errs = multierr.Append(errs, fmt.Errorf("encryptor '%s' has no type", name))
			continue
		}
		e, err := rule.NewEncryptor(es.Type, es.Props)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid encryptor '%s': %v", name, err))
			continue
		}
		encryptors[name] = e
	}

	findEncryptor := func(table, column, name string) rule.Encryptor {
		if name == "" {
			return nil
		}
		e, ok := encryptors[name]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("encryptor '%s' used by column '%s.%s' is not configured", name, table, column))
		}
		return e
	}

	tables := make([]*rule.EncryptTable, 0, len(r.Encrypt.Tables))
	for _, tableName := range sortedKeys(r.Encrypt.Tables) {
		ts := r.Encrypt.Tables[tableName]
		if ts == nil {
			continue
		}
		columns := make([]*rule.EncryptColumn, 0, len(ts.Columns))
		for _, columnName := range sortedKeys(ts.Columns) {
			cs := ts.Columns[columnName]
			if cs == nil || strings.TrimSpace(cs.CipherColumn) == "" {
				errs = multierr.Append(errs, fmt.Errorf("encrypt column '%s.%s' has no cipher-column", tableName, columnName))
				continue
			}
			if cs.Encryptor == "" {
				errs = multierr.Append(errs, fmt.Errorf("encrypt column '%s.%s' has no encryptor", tableName, columnName))
				continue
			}
			c := &rule.EncryptColumn{
				LogicColumn:            core.TrimAndLower(columnName),
				CipherColumn:           core.TrimAndLower(cs.CipherColumn),
				PlainColumn:            core.TrimAndLower(cs.PlainColumn),
				AssistedQueryColumn:    core.TrimAndLower(cs.AssistedQueryColumn),
				Encryptor:              findEncryptor(tableName, columnName, cs.Encryptor),
				AssistedQueryEncryptor: findEncryptor(tableName, columnName, cs.AssistedQueryEncryptor),
			}
			if c.AssistedQueryColumn != "" && cs.AssistedQueryEncryptor == "" {
				errs = multierr.Append(errs, fmt.Errorf("encrypt column '%s.%s' has assisted-query-column but no assisted-query-encryptor", tableName, columnName))
			}
			columns = append(columns, c)
		}
		tables = append(tables, rule.NewEncryptTable(tableName, columns...))
	}

	if errs != nil {
		return nil, errs
	}
	return rule.NewEncryptRule(queryWithCipher, tables...), nil
}
