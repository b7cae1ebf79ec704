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
	"github.com/endink/sharding-rewrite/core"
	"github.com/pingcap/errors"
)

// EncryptColumn maps one logic column to the physical columns that store it.
type EncryptColumn struct {
	LogicColumn            string
	CipherColumn           string
	PlainColumn            string
	AssistedQueryColumn    string
	Encryptor              Encryptor
	AssistedQueryEncryptor Encryptor
}

func (c *EncryptColumn) HasPlainColumn() bool {
	return c.PlainColumn != ""
}

func (c *EncryptColumn) HasAssistedQueryColumn() bool {
	return c.AssistedQueryColumn != "" && c.AssistedQueryEncryptor != nil
}

type EncryptTable struct {
	Name    string
	columns []*EncryptColumn
	index   map[string]*EncryptColumn
}

func NewEncryptTable(name string, columns ...*EncryptColumn) *EncryptTable {
	t := &EncryptTable{
		Name:    core.TrimAndLower(name),
		columns: columns,
		index:   make(map[string]*EncryptColumn, len(columns)),
	}
	for _, c := range columns {
		t.index[core.TrimAndLower(c.LogicColumn)] = c
	}
	return t
}

func (t *EncryptTable) FindColumn(logicColumn string) (*EncryptColumn, bool) {
	c, ok := t.index[core.TrimAndLower(logicColumn)]
	return c, ok
}

func (t *EncryptTable) Columns() []*EncryptColumn {
	return t.columns
}

// FindLogicColumn returns the logic column stored in the cipher column.
func (t *EncryptTable) FindLogicColumn(cipherColumn string) (string, bool) {
	for _, c := range t.columns {
		if core.EqualsIgnoreCase(c.CipherColumn, cipherColumn) {
			return c.LogicColumn, true
		}
	}
	return "", false
}

// EncryptRule is immutable after construction and shared by all statements.
type EncryptRule struct {
	QueryWithCipherColumn bool
	tables                map[string]*EncryptTable
}

func NewEncryptRule(queryWithCipherColumn bool, tables ...*EncryptTable) *EncryptRule {
	r := &EncryptRule{
		QueryWithCipherColumn: queryWithCipherColumn,
		tables:                make(map[string]*EncryptTable, len(tables)),
	}
	for _, t := range tables {
		r.tables[t.Name] = t
	}
	return r
}

func (r *EncryptRule) FindEncryptTable(table string) (*EncryptTable, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tables[core.TrimAndLower(table)]
	return t, ok
}

func (r *EncryptRule) FindEncryptColumn(table string, logicColumn string) (*EncryptColumn, bool) {
	t, ok := r.FindEncryptTable(table)
	if !ok {
		return nil, false
	}
	return t.FindColumn(logicColumn)
}

func (r *EncryptRule) IsEncryptTable(table string) bool {
	_, ok := r.FindEncryptTable(table)
	return ok
}

// EncryptValues converts plain values for the cipher column.
func (r *EncryptRule) EncryptValues(table string, logicColumn string, values []interface{}) ([]interface{}, error) {
	c, ok := r.FindEncryptColumn(table, logicColumn)
	if !ok {
		return nil, errors.Errorf("'%s.%s' is not an encrypt column", table, logicColumn)
	}
	return encryptAll(c.Encryptor, values)
}

// EncryptAssistedQueryValues converts plain values for the assisted query column.
func (r *EncryptRule) EncryptAssistedQueryValues(table string, logicColumn string, values []interface{}) ([]interface{}, error) {
	c, ok := r.FindEncryptColumn(table, logicColumn)
	if !ok || !c.HasAssistedQueryColumn() {
		return nil, errors.Errorf("'%s.%s' has no assisted query column", table, logicColumn)
	}
	return encryptAll(c.AssistedQueryEncryptor, values)
}

func encryptAll(encryptor Encryptor, values []interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(values))
	for i, v := range values {
		e, err := encryptor.Encrypt(v)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result[i] = e
	}
	return result, nil
}

// EncryptDerivedColumn is a physical column written besides the cipher column of a logic column.
type EncryptDerivedColumn struct {
	LogicColumn string
	Name        string
	Assisted    bool
}

// DerivedColumns returns the assisted query and plain columns of the encrypt columns in the given order,
// the assisted query column of a logic column comes before its plain column.
func (r *EncryptRule) DerivedColumns(table string, columnNames []string) []EncryptDerivedColumn {
	result := make([]EncryptDerivedColumn, 0)
	for _, name := range columnNames {
		c, ok := r.FindEncryptColumn(table, name)
		if !ok {
			continue
		}
		if c.HasAssistedQueryColumn() {
			result = append(result, EncryptDerivedColumn{LogicColumn: c.LogicColumn, Name: c.AssistedQueryColumn, Assisted: true})
		}
		if c.HasPlainColumn() {
			result = append(result, EncryptDerivedColumn{LogicColumn: c.LogicColumn, Name: c.PlainColumn})
		}
	}
	return result
}

// QueryColumn returns the physical column used in predicates of the logic column and whether it stores
// plain values. The assisted query column is preferred over the cipher column.
func (r *EncryptRule) QueryColumn(column *EncryptColumn) (name string, plain bool) {
	if !r.QueryWithCipherColumn && column.HasPlainColumn() {
		return column.PlainColumn, true
	}
	if column.HasAssistedQueryColumn() {
		return column.AssistedQueryColumn, false
	}
	return column.CipherColumn, false
}

// ProjectionColumn returns the physical column selected for the logic column.
func (r *EncryptRule) ProjectionColumn(column *EncryptColumn) string {
	if !r.QueryWithCipherColumn && column.HasPlainColumn() {
		return column.PlainColumn
	}
	return column.CipherColumn
}

// EncryptQueryValues converts plain values for the column returned by QueryColumn.
func (r *EncryptRule) EncryptQueryValues(table string, column *EncryptColumn, values []interface{}) ([]interface{}, error) {
	if _, plain := r.QueryColumn(column); plain {
		return values, nil
	}
	if column.HasAssistedQueryColumn() {
		return r.EncryptAssistedQueryValues(table, column.LogicColumn, values)
	}
	return r.EncryptValues(table, column.LogicColumn, values)
}
