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
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

// InsertContext holds one InsertValue per row, the SET form has exactly one row.
type InsertContext struct {
	Statement    *statement.InsertStatement
	Tables       TableLookup
	ColumnNames  []string
	Values       []*InsertValue
	GeneratedKey *GeneratedKey
}

func (i *InsertContext) GetStatement() statement.Statement {
	return i.Statement
}

func (i *InsertContext) GetTables() TableLookup {
	return i.Tables
}

func (i *InsertContext) TableName() string {
	return i.Statement.Table.LowerName()
}

// IsValuesForm reports whether the rows are written as VALUES (...), (...).
func (i *InsertContext) IsValuesForm() bool {
	return i.Statement.SetAssignment == nil
}

func NewInsertContext(stmt *statement.InsertStatement, parameters []interface{}, metas metadata.TableMetas, shardingRule *rule.ShardingRule) (*InsertContext, error) {
	tables, err := NewTableLookup(stmt.GetTables())
	if err != nil {
		return nil, err
	}
	ctx := &InsertContext{
		Statement: stmt,
		Tables:    tables,
	}
	table := stmt.Table.LowerName()
	if stmt.UseDefaultColumns() && metas != nil {
		ctx.ColumnNames = metas.AllColumnNames(table)
	} else {
		ctx.ColumnNames = stmt.ColumnNames()
	}

	if stmt.SetAssignment != nil {
		expressions := make([]statement.ExpressionSegment, len(stmt.SetAssignment.Assignments))
		for i, a := range stmt.SetAssignment.Assignments {
			expressions[i] = a.Value
		}
		rowParams, err := sliceParameters(parameters, 0, statement.CountParameterMarkers(expressions))
		if err != nil {
			return nil, err
		}
		ctx.Values = []*InsertValue{NewInsertValue(ctx.ColumnNames, expressions, rowParams)}
	} else {
		offset := 0
		for _, row := range stmt.Values {
			if len(ctx.ColumnNames) > 0 && len(row.Values) != len(ctx.ColumnNames) {
				return nil, errors.Errorf("column count doesn't match value count, columns: %d, values: %d", len(ctx.ColumnNames), len(row.Values))
			}
			count := statement.CountParameterMarkers(row.Values)
			rowParams, err := sliceParameters(parameters, offset, count)
			if err != nil {
				return nil, err
			}
			ctx.Values = append(ctx.Values, NewInsertValue(ctx.ColumnNames, row.Values, rowParams))
			offset += count
		}
	}

	if ctx.GeneratedKey, err = newGeneratedKey(shardingRule, table, ctx.ColumnNames, ctx.Values); err != nil {
		return nil, err
	}
	return ctx, nil
}

func sliceParameters(parameters []interface{}, offset int, count int) ([]interface{}, error) {
	if offset+count > len(parameters) {
		return nil, errors.Errorf("not enough parameters, expected at least %d, got %d", offset+count, len(parameters))
	}
	return parameters[offset : offset+count], nil
}
