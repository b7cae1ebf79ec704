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

package rewriting

import (
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/rewriting/token"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

// ParameterRewriter changes parameter values before the tokens are generated.
type ParameterRewriter interface {
	IsNeedRewrite(ctx *RewriteContext) bool
	Rewrite(ctx *RewriteContext) error
}

var shardingParameterRewriters = []ParameterRewriter{
	generatedKeyParameterRewriter{},
	paginationParameterRewriter{},
}

var encryptParameterRewriters = []ParameterRewriter{
	encryptInsertValueParameterRewriter{},
	encryptPredicateParameterRewriter{},
	encryptAssignmentParameterRewriter{},
}

func rewriteParameters(ctx *RewriteContext, rewriters []ParameterRewriter) error {
	for _, r := range rewriters {
		if !r.IsNeedRewrite(ctx) {
			continue
		}
		if err := r.Rewrite(ctx); err != nil {
			return err
		}
	}
	return nil
}

// generatedKeyParameterRewriter appends the generated key to every insert row, or to the parameters of a SET insert.
type generatedKeyParameterRewriter struct{}

func (generatedKeyParameterRewriter) IsNeedRewrite(ctx *RewriteContext) bool {
	i, ok := ctx.StatementContext.(*explain.InsertContext)
	return ok && ctx.ShardingRule != nil && i.GeneratedKey != nil && i.GeneratedKey.Generated
}

func (generatedKeyParameterRewriter) Rewrite(ctx *RewriteContext) error {
	i := ctx.StatementContext.(*explain.InsertContext)
	key := i.GeneratedKey
	if len(key.Values) != len(i.Values) {
		return errors.Errorf("generated key count %d doesn't match insert row count %d", len(key.Values), len(i.Values))
	}
	if !i.IsValuesForm() {
		if len(ctx.Parameters) > 0 {
			ctx.standardBuilder().AppendParameters(key.Values[0])
		}
		return nil
	}
	for index, row := range i.Values {
		if _, exists := row.ColumnIndex(key.ColumnName); exists {
			continue
		}
		row.AppendValue(key.ColumnName, key.Values[index], statement.DerivedGeneratedKey)
	}
	return nil
}

// paginationParameterRewriter revises offset and row count bound to parameters when the results of several targets are merged.
type paginationParameterRewriter struct{}

func (paginationParameterRewriter) IsNeedRewrite(ctx *RewriteContext) bool {
	s, ok := ctx.StatementContext.(*explain.SelectContext)
	return ok && !ctx.SingleRoute && s.Pagination != nil
}

func (paginationParameterRewriter) Rewrite(ctx *RewriteContext) error {
	s := ctx.StatementContext.(*explain.SelectContext)
	builder := ctx.standardBuilder()
	if index, ok := s.Pagination.OffsetParameterIndex(); ok {
		builder.AddReplacedParameter(index, s.Pagination.RevisedOffset())
	}
	if index, ok := s.Pagination.RowCountParameterIndex(); ok {
		builder.AddReplacedParameter(index, s.Pagination.RevisedRowCount(s))
	}
	return nil
}

// encryptInsertValueParameterRewriter stores the cipher value in place of the plain value of each row
// and appends the assisted query and plain values.
type encryptInsertValueParameterRewriter struct{}

func (encryptInsertValueParameterRewriter) IsNeedRewrite(ctx *RewriteContext) bool {
	i, ok := ctx.StatementContext.(*explain.InsertContext)
	return ok && i.IsValuesForm() && ctx.EncryptRule.IsEncryptTable(i.TableName())
}

func (encryptInsertValueParameterRewriter) Rewrite(ctx *RewriteContext) error {
	i := ctx.StatementContext.(*explain.InsertContext)
	table := i.TableName()
	derived := ctx.EncryptRule.DerivedColumns(table, i.ColumnNames)
	for _, row := range i.Values {
		plains := make(map[string]interface{})
		for _, name := range i.ColumnNames {
			c, ok := ctx.EncryptRule.FindEncryptColumn(table, name)
			if !ok {
				continue
			}
			index, ok := row.ColumnIndex(name)
			if !ok {
				continue
			}
			if !row.IsSimpleAt(index) {
				return errors.Errorf("value of encrypt column '%s.%s' must be a literal or a parameter marker", table, name)
			}
			plain, err := row.ValueAt(index)
			if err != nil {
				return err
			}
			cipher, err := ctx.EncryptRule.EncryptValues(table, c.LogicColumn, []interface{}{plain})
			if err != nil {
				return err
			}
			if err = row.SetValue(name, cipher[0]); err != nil {
				return err
			}
			plains[c.LogicColumn] = plain
		}

		for _, d := range derived {
			value := plains[d.LogicColumn]
			if d.Assisted {
				assisted, err := ctx.EncryptRule.EncryptAssistedQueryValues(table, d.LogicColumn, []interface{}{value})
				if err != nil {
					return err
				}
				value = assisted[0]
			}
			row.AppendValue(d.Name, value, statement.DerivedEncrypt)
		}
	}
	return nil
}

// encryptPredicateParameterRewriter encrypts the parameters compared to encrypt columns.
type encryptPredicateParameterRewriter struct{}

func (encryptPredicateParameterRewriter) IsNeedRewrite(ctx *RewriteContext) bool {
	_, isInsert := ctx.StatementContext.(*explain.InsertContext)
	return !isInsert && ctx.EncryptRule != nil && len(ctx.Parameters) > 0
}

func (encryptPredicateParameterRewriter) Rewrite(ctx *RewriteContext) error {
	conditions, err := token.FindEncryptConditions(ctx.StatementContext, ctx.EncryptRule, ctx.Metas)
	if err != nil {
		return err
	}
	builder := ctx.standardBuilder()
	for _, c := range conditions {
		for _, expr := range c.Predicate.Expressions() {
			marker, ok := expr.(*statement.ParameterMarkerExpression)
			if !ok {
				continue
			}
			value, err := ctx.parameter(marker.ParameterIndex)
			if err != nil {
				return err
			}
			encrypted, err := ctx.EncryptRule.EncryptQueryValues(c.Table, c.Column, []interface{}{value})
			if err != nil {
				return err
			}
			builder.AddReplacedParameter(marker.ParameterIndex, encrypted[0])
		}
	}
	return nil
}

// encryptAssignmentParameterRewriter replaces the parameter of an encrypt column assignment by the cipher value
// followed by the assisted query and plain values, in the order of the assignment token.
type encryptAssignmentParameterRewriter struct{}

func (encryptAssignmentParameterRewriter) IsNeedRewrite(ctx *RewriteContext) bool {
	switch s := ctx.StatementContext.(type) {
	case *explain.InsertContext:
		return !s.IsValuesForm() && ctx.EncryptRule != nil && len(ctx.Parameters) > 0
	case *explain.CommonContext:
		_, isUpdate := s.Statement.(*statement.UpdateStatement)
		return isUpdate && ctx.EncryptRule != nil && len(ctx.Parameters) > 0
	}
	return false
}

func (encryptAssignmentParameterRewriter) Rewrite(ctx *RewriteContext) error {
	builder := ctx.standardBuilder()
	for _, target := range token.FindEncryptAssignments(ctx.StatementContext, ctx.EncryptRule, ctx.Metas) {
		marker, ok := target.Assignment.Value.(*statement.ParameterMarkerExpression)
		if !ok {
			continue
		}
		plain, err := ctx.parameter(marker.ParameterIndex)
		if err != nil {
			return err
		}
		values := []interface{}{plain}
		cipher, err := ctx.EncryptRule.EncryptValues(target.Table, target.Column.LogicColumn, values)
		if err != nil {
			return err
		}
		builder.AddReplacedParameter(marker.ParameterIndex, cipher[0])

		var added []interface{}
		if target.Column.HasAssistedQueryColumn() {
			assisted, err := ctx.EncryptRule.EncryptAssistedQueryValues(target.Table, target.Column.LogicColumn, values)
			if err != nil {
				return err
			}
			added = append(added, assisted[0])
		}
		if target.Column.HasPlainColumn() {
			added = append(added, plain)
		}
		if len(added) > 0 {
			builder.AddAddedParameters(marker.ParameterIndex+1, added...)
		}
	}
	return nil
}
