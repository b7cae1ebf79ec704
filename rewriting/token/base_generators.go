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

package token

import (
	"github.com/endink/sharding-rewrite/explain"
)

var baseGenerators = []Generator{
	insertColumnsGenerator{},
}

// BaseGenerators returns the generators needed whatever the rules are.
func BaseGenerators() []Generator {
	return append([]Generator(nil), baseGenerators...)
}

// insertColumnsGenerator writes the column list of an insert that omits it, so that appended values have a column to go to.
type insertColumnsGenerator struct{}

func (insertColumnsGenerator) Kind() GeneratorKind { return GeneratorInsertColumns }

func (insertColumnsGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	i, ok := ctx.Statement.(*explain.InsertContext)
	return ok && i.IsValuesForm() && i.Statement.UseDefaultColumns() && len(i.Values) > 0 && len(i.Values[0].ColumnNames()) > 0
}

func (insertColumnsGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	i := ctx.Statement.(*explain.InsertContext)
	table := i.TableName()
	names := i.Values[0].ColumnNames()
	columns := make([]string, len(names))
	for index, name := range names {
		columns[index] = name
		if index >= len(i.ColumnNames) {
			continue
		}
		if c, ok := ctx.EncryptRule.FindEncryptColumn(table, name); ok {
			columns[index] = c.CipherColumn
		}
	}
	return &InsertColumnsToken{
		position: insertingAt(i.Statement.Table.Stop + 1),
		Columns:  columns,
	}, nil
}
