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
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/pingcap/errors"
)

var encryptGenerators = []Generator{
	encryptProjectionGenerator{},
	encryptPredicateColumnGenerator{},
	encryptPredicateValueGenerator{},
	encryptInsertColumnsGenerator{},
	encryptAssignmentGenerator{},
	insertValuesGenerator{},
}

// EncryptGenerators returns the generators rewriting logic columns of encrypt tables into their physical columns.
func EncryptGenerators() []Generator {
	return append([]Generator(nil), encryptGenerators...)
}

// EncryptCondition is a predicate on an encrypt column that can be answered on encrypted values,
// only equality and IN predicates qualify.
type EncryptCondition struct {
	Predicate *statement.PredicateSegment
	Table     string
	Column    *rule.EncryptColumn
}

// FindEncryptConditions returns the encrypt conditions of the where clause and of the subqueries.
func FindEncryptConditions(stmtCtx explain.StatementContext, encryptRule *rule.EncryptRule, metas metadata.TableMetas) ([]*EncryptCondition, error) {
	if encryptRule == nil {
		return nil, nil
	}
	var result []*EncryptCondition
	collect := func(stmt statement.Statement, tables explain.TableLookup) {
		ws, ok := stmt.(statement.WhereStatement)
		if !ok || ws.GetWhere() == nil {
			return
		}
		for _, and := range ws.GetWhere().AndPredicates {
			for _, p := range and.Predicates {
				if !isEncryptable(p) {
					continue
				}
				table, found := tables.FindTableNameByColumn(p.Column, metas)
				if !found {
					continue
				}
				if c, isEncrypt := encryptRule.FindEncryptColumn(table, p.Column.Name); isEncrypt {
					result = append(result, &EncryptCondition{Predicate: p, Table: table, Column: c})
				}
			}
		}
	}

	stmt := stmtCtx.GetStatement()
	collect(stmt, stmtCtx.GetTables())
	for _, sub := range statement.FindSubqueries(stmt) {
		tables, err := explain.NewTableLookup(sub.GetTables())
		if err != nil {
			return nil, err
		}
		collect(sub, tables)
	}
	return result, nil
}

func isEncryptable(p *statement.PredicateSegment) bool {
	switch rv := p.RightValue.(type) {
	case *statement.CompareRightValue:
		return rv.Operator == statement.OperatorEqual || rv.Operator == statement.OperatorNotEqual
	case *statement.InRightValue:
		return true
	}
	return false
}

// EncryptAssignmentTarget is a SET assignment of an encrypt column, in an update or an insert.
type EncryptAssignmentTarget struct {
	Assignment *statement.AssignmentSegment
	Table      string
	Column     *rule.EncryptColumn
}

func FindEncryptAssignments(stmtCtx explain.StatementContext, encryptRule *rule.EncryptRule, metas metadata.TableMetas) []*EncryptAssignmentTarget {
	if encryptRule == nil {
		return nil
	}
	var set *statement.SetAssignmentSegment
	resolve := func(a *statement.AssignmentSegment) (string, bool) {
		return stmtCtx.GetTables().FindTableNameByColumn(a.Column, metas)
	}
	switch s := stmtCtx.GetStatement().(type) {
	case *statement.UpdateStatement:
		set = s.SetAssignment
	case *statement.InsertStatement:
		set = s.SetAssignment
		resolve = func(_ *statement.AssignmentSegment) (string, bool) {
			return s.Table.LowerName(), true
		}
	}
	if set == nil {
		return nil
	}
	var result []*EncryptAssignmentTarget
	for _, a := range set.Assignments {
		table, ok := resolve(a)
		if !ok {
			continue
		}
		if c, isEncrypt := encryptRule.FindEncryptColumn(table, a.Column.Name); isEncrypt {
			result = append(result, &EncryptAssignmentTarget{Assignment: a, Table: table, Column: c})
		}
	}
	return result
}

type encryptProjectionGenerator struct{}

func (encryptProjectionGenerator) Kind() GeneratorKind { return GeneratorEncryptProjection }

func (encryptProjectionGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	s, ok := ctx.Statement.(*explain.SelectContext)
	return ok && ctx.EncryptRule != nil && s.Projections != nil
}

func (encryptProjectionGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	s := ctx.Statement.(*explain.SelectContext)
	var result []SQLToken
	for _, segment := range s.Projections.Segments {
		p, ok := segment.(*statement.ColumnProjectionSegment)
		if !ok {
			continue
		}
		table, found := s.Tables.FindTableNameByColumn(p.Column, ctx.Metas)
		if !found {
			continue
		}
		c, isEncrypt := ctx.EncryptRule.FindEncryptColumn(table, p.Column.Name)
		if !isEncrypt {
			continue
		}
		t := &EncryptColumnToken{
			position: replacing(p.Column.Start, p.Column.Stop),
			Column:   ctx.EncryptRule.ProjectionColumn(c),
			Quote:    p.Column.Quote,
		}
		if p.Alias == "" {
			t.Alias = p.Column.Name
		}
		result = append(result, t)
	}
	return result, nil
}

type encryptPredicateColumnGenerator struct{}

func (encryptPredicateColumnGenerator) Kind() GeneratorKind { return GeneratorEncryptPredicateColumn }

func (encryptPredicateColumnGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	return ctx.EncryptRule != nil
}

func (encryptPredicateColumnGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	conditions, err := FindEncryptConditions(ctx.Statement, ctx.EncryptRule, ctx.Metas)
	if err != nil {
		return nil, err
	}
	result := make([]SQLToken, 0, len(conditions))
	for _, c := range conditions {
		name, _ := ctx.EncryptRule.QueryColumn(c.Column)
		column := c.Predicate.Column
		result = append(result, &EncryptColumnToken{
			position: replacing(column.Start, column.Stop),
			Column:   name,
			Quote:    column.Quote,
		})
	}
	return result, nil
}

// encryptPredicateValueGenerator encrypts the literal values of encrypt conditions, markers are handled by the parameter rewriter.
type encryptPredicateValueGenerator struct{}

func (encryptPredicateValueGenerator) Kind() GeneratorKind { return GeneratorEncryptPredicateValue }

func (encryptPredicateValueGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	return ctx.EncryptRule != nil
}

func (encryptPredicateValueGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	conditions, err := FindEncryptConditions(ctx.Statement, ctx.EncryptRule, ctx.Metas)
	if err != nil {
		return nil, err
	}
	var result []SQLToken
	for _, c := range conditions {
		for _, expr := range c.Predicate.Expressions() {
			literal, ok := expr.(*statement.LiteralExpression)
			if !ok {
				continue
			}
			values, err := ctx.EncryptRule.EncryptQueryValues(c.Table, c.Column, []interface{}{literal.Value})
			if err != nil {
				return nil, err
			}
			result = append(result, &EncryptPredicateValueToken{
				position: replacing(literal.Start, literal.Stop),
				Value:    values[0],
			})
		}
	}
	return result, nil
}

type encryptInsertColumnsGenerator struct{}

func (encryptInsertColumnsGenerator) Kind() GeneratorKind { return GeneratorEncryptInsertColumns }

func (encryptInsertColumnsGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	i, ok := ctx.Statement.(*explain.InsertContext)
	return ok && i.IsValuesForm() && !i.Statement.UseDefaultColumns() && ctx.EncryptRule.IsEncryptTable(i.TableName())
}

func (encryptInsertColumnsGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	i := ctx.Statement.(*explain.InsertContext)
	table := i.TableName()
	var result []SQLToken
	for _, column := range i.Statement.Columns.Columns {
		if c, ok := ctx.EncryptRule.FindEncryptColumn(table, column.Name); ok {
			result = append(result, &EncryptColumnToken{
				position: replacing(column.Start, column.Stop),
				Column:   c.CipherColumn,
				Quote:    column.Quote,
			})
		}
	}
	derived := ctx.EncryptRule.DerivedColumns(table, i.ColumnNames)
	if len(derived) > 0 {
		names := make([]string, len(derived))
		for index, d := range derived {
			names[index] = d.Name
		}
		result = append(result, &EncryptInsertColumnsToken{
			position: insertingAt(i.Statement.Columns.Stop),
			Columns:  names,
		})
	}
	return result, nil
}

// encryptAssignmentGenerator replaces "logic = value" by assignments of the cipher, assisted query and plain columns.
// The owner of the logic column is kept, the added assignments are written unqualified.
type encryptAssignmentGenerator struct{}

func (encryptAssignmentGenerator) Kind() GeneratorKind { return GeneratorEncryptAssignment }

func (encryptAssignmentGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	return ctx.EncryptRule != nil
}

func (encryptAssignmentGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	targets := FindEncryptAssignments(ctx.Statement, ctx.EncryptRule, ctx.Metas)
	result := make([]SQLToken, 0, len(targets))
	for _, target := range targets {
		t, err := encryptAssignmentToken(ctx.EncryptRule, target)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func encryptAssignmentToken(encryptRule *rule.EncryptRule, target *EncryptAssignmentTarget) (*EncryptAssignmentToken, error) {
	a, c := target.Assignment, target.Column
	q := a.Column.Quote
	t := &EncryptAssignmentToken{position: replacing(a.Column.Start, a.Stop)}

	if statement.IsParameterMarker(a.Value) {
		t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.CipherColumn), Parameterized: true})
		if c.HasAssistedQueryColumn() {
			t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.AssistedQueryColumn), Parameterized: true})
		}
		if c.HasPlainColumn() {
			t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.PlainColumn), Parameterized: true})
		}
		return t, nil
	}

	literal, ok := a.Value.(*statement.LiteralExpression)
	if !ok {
		return nil, errors.Errorf("value of encrypt column '%s.%s' must be a literal or a parameter marker", target.Table, c.LogicColumn)
	}
	plain := []interface{}{literal.Value}
	cipher, err := encryptRule.EncryptValues(target.Table, c.LogicColumn, plain)
	if err != nil {
		return nil, err
	}
	t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.CipherColumn), Value: cipher[0]})
	if c.HasAssistedQueryColumn() {
		assisted, err := encryptRule.EncryptAssistedQueryValues(target.Table, c.LogicColumn, plain)
		if err != nil {
			return nil, err
		}
		t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.AssistedQueryColumn), Value: assisted[0]})
	}
	if c.HasPlainColumn() {
		t.Assignments = append(t.Assignments, EncryptAssignment{Column: quote(q, c.PlainColumn), Value: literal.Value})
	}
	return t, nil
}
