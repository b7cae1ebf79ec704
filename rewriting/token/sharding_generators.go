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
	"github.com/endink/sharding-rewrite/core"
	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/statement"
)

var shardingGenerators = []Generator{
	tableGenerator{},
	removeGenerator{},
	projectionsGenerator{},
	orderByGenerator{},
	offsetGenerator{},
	rowCountGenerator{},
	generatedKeyInsertColumnGenerator{},
	generatedKeyAssignmentGenerator{},
	insertValuesGenerator{},
}

// ShardingGenerators returns the generators rewriting a statement for sharding.
func ShardingGenerators() []Generator {
	return append([]Generator(nil), shardingGenerators...)
}

// allTables returns the tables of the statement and of its subqueries.
func allTables(stmt statement.Statement) []*statement.TableSegment {
	tables := append([]*statement.TableSegment(nil), stmt.GetTables()...)
	for _, sub := range statement.FindSubqueries(stmt) {
		tables = append(tables, sub.GetTables()...)
	}
	return tables
}

// shardingLogicTables returns the sharding tables of the statement referenced by name, lower case.
func shardingLogicTables(ctx *GenerateContext) map[string]struct{} {
	result := make(map[string]struct{})
	for _, t := range allTables(ctx.Statement.GetStatement()) {
		if ctx.ShardingRule.IsShardingTable(t.Name) {
			result[t.LowerName()] = core.Nothing
		}
	}
	return result
}

type tableGenerator struct{}

func (tableGenerator) Kind() GeneratorKind { return GeneratorTable }

func (tableGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	return ctx.ShardingRule != nil
}

func (tableGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	stmt := ctx.Statement.GetStatement()
	tables := allTables(stmt)
	aliases := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if t.Alias != "" {
			aliases[core.TrimAndLower(t.Alias)] = core.Nothing
		}
	}

	var result []SQLToken
	seen := make(map[int]struct{})
	add := func(start int, stop int, name string, q string) {
		if _, ok := seen[start]; ok {
			return
		}
		seen[start] = core.Nothing
		result = append(result, &TableToken{
			position:     replacing(start, stop),
			LogicTable:   core.TrimAndLower(name),
			OriginalName: name,
			Quote:        q,
		})
	}
	addOwner := func(owner *statement.OwnerSegment) {
		name := core.TrimAndLower(owner.Name)
		if _, isAlias := aliases[name]; isAlias || !ctx.ShardingRule.IsShardingTable(name) {
			return
		}
		add(owner.Start, owner.Stop, owner.Name, owner.Quote)
	}

	for _, t := range tables {
		if ctx.ShardingRule.IsShardingTable(t.Name) {
			add(t.Start, t.Stop, t.Name, t.Quote)
		}
	}
	for _, c := range statement.FindColumnSegments(stmt) {
		addOwner(c.Owner)
	}
	selects := statement.FindSubqueries(stmt)
	if s, ok := stmt.(*statement.SelectStatement); ok {
		selects = append(selects, s)
	}
	for _, s := range selects {
		for _, owner := range statement.FindShorthandOwners(s) {
			addOwner(owner)
		}
	}
	return result, nil
}

// removeGenerator removes the schema qualifier of sharding tables, actual tables live in other schemas.
type removeGenerator struct{}

func (removeGenerator) Kind() GeneratorKind { return GeneratorRemove }

func (removeGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	return ctx.ShardingRule != nil
}

func (removeGenerator) GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error) {
	var result []SQLToken
	for _, t := range allTables(ctx.Statement.GetStatement()) {
		if t.Owner != nil && ctx.ShardingRule.IsShardingTable(t.Name) {
			result = append(result, &RemoveToken{position: replacing(t.Owner.Start, t.Start-1)})
		}
	}
	return result, nil
}

type projectionsGenerator struct {
	ignoreForSingleRoute
}

func (projectionsGenerator) Kind() GeneratorKind { return GeneratorProjections }

func (projectionsGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	s, ok := ctx.Statement.(*explain.SelectContext)
	return ok && s.Projections != nil && s.Projections.HasDerived()
}

func (projectionsGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	s := ctx.Statement.(*explain.SelectContext)
	var logicTables map[string]struct{}
	if ctx.ShardingRule != nil {
		logicTables = shardingLogicTables(ctx)
	}
	return &ProjectionsToken{
		position:    insertingAt(s.Projections.StopIndex + 1),
		Projections: s.Projections.DerivedProjections(),
		LogicTables: logicTables,
	}, nil
}

type orderByGenerator struct {
	ignoreForSingleRoute
}

func (orderByGenerator) Kind() GeneratorKind { return GeneratorOrderBy }

func (orderByGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	s, ok := ctx.Statement.(*explain.SelectContext)
	return ok && s.OrderBy.Generated
}

func (orderByGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	s := ctx.Statement.(*explain.SelectContext)
	var logicTables map[string]struct{}
	if ctx.ShardingRule != nil {
		logicTables = shardingLogicTables(ctx)
	}
	return &OrderByToken{
		position:    insertingAt(s.GroupBy.LastIndex + 1),
		Items:       s.OrderBy.Items,
		LogicTables: logicTables,
	}, nil
}

type offsetGenerator struct {
	ignoreForSingleRoute
}

func (offsetGenerator) Kind() GeneratorKind { return GeneratorOffset }

func (offsetGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	s, ok := ctx.Statement.(*explain.SelectContext)
	if !ok || s.Pagination == nil {
		return false
	}
	_, literal := s.Pagination.OffsetSegment.(*statement.NumberLiteralLimitValueSegment)
	return literal
}

func (offsetGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	p := ctx.Statement.(*explain.SelectContext).Pagination
	return &OffsetToken{
		position: replacing(p.OffsetSegment.StartIndex(), p.OffsetSegment.StopIndex()),
		Offset:   p.RevisedOffset(),
	}, nil
}

type rowCountGenerator struct {
	ignoreForSingleRoute
}

func (rowCountGenerator) Kind() GeneratorKind { return GeneratorRowCount }

func (rowCountGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	s, ok := ctx.Statement.(*explain.SelectContext)
	if !ok || s.Pagination == nil {
		return false
	}
	_, literal := s.Pagination.RowCountSegment.(*statement.NumberLiteralLimitValueSegment)
	return literal
}

func (rowCountGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	s := ctx.Statement.(*explain.SelectContext)
	p := s.Pagination
	return &RowCountToken{
		position: replacing(p.RowCountSegment.StartIndex(), p.RowCountSegment.StopIndex()),
		RowCount: p.RevisedRowCount(s),
	}, nil
}

func generatedKeyOf(ctx *GenerateContext) (*explain.InsertContext, bool) {
	i, ok := ctx.Statement.(*explain.InsertContext)
	if !ok || i.GeneratedKey == nil || !i.GeneratedKey.Generated {
		return nil, false
	}
	return i, true
}

type generatedKeyInsertColumnGenerator struct{}

func (generatedKeyInsertColumnGenerator) Kind() GeneratorKind {
	return GeneratorGeneratedKeyInsertColumn
}

func (generatedKeyInsertColumnGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	i, ok := generatedKeyOf(ctx)
	return ok && i.IsValuesForm() && !i.Statement.UseDefaultColumns()
}

func (generatedKeyInsertColumnGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	i := ctx.Statement.(*explain.InsertContext)
	return &GeneratedKeyInsertColumnToken{
		position: insertingAt(i.Statement.Columns.Stop),
		Column:   i.GeneratedKey.ColumnName,
	}, nil
}

type generatedKeyAssignmentGenerator struct{}

func (generatedKeyAssignmentGenerator) Kind() GeneratorKind { return GeneratorGeneratedKeyAssignment }

func (generatedKeyAssignmentGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	i, ok := generatedKeyOf(ctx)
	return ok && !i.IsValuesForm()
}

func (generatedKeyAssignmentGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	i := ctx.Statement.(*explain.InsertContext)
	t := &GeneratedKeyAssignmentToken{
		position:      insertingAt(i.Statement.SetAssignment.Stop + 1),
		Column:        i.GeneratedKey.ColumnName,
		Parameterized: len(ctx.Parameters) > 0,
	}
	if len(i.GeneratedKey.Values) > 0 {
		t.Value = i.GeneratedKey.Values[0]
	}
	return t, nil
}

// insertValuesGenerator is shared by the sharding and encrypt rewriting, both append values to the rows.
type insertValuesGenerator struct{}

func (insertValuesGenerator) Kind() GeneratorKind { return GeneratorInsertValues }

func (insertValuesGenerator) IsGenerateSQLToken(ctx *GenerateContext) bool {
	i, ok := ctx.Statement.(*explain.InsertContext)
	return ok && i.IsValuesForm() && len(i.Statement.Values) > 0
}

func (insertValuesGenerator) GenerateSQLToken(ctx *GenerateContext) (SQLToken, error) {
	i := ctx.Statement.(*explain.InsertContext)
	rows := i.Statement.Values
	return &InsertValuesToken{
		position:   replacing(rows[0].Start, rows[len(rows)-1].Stop),
		LogicTable: i.TableName(),
		Rows:       i.Values,
		sql:        ctx.SQL,
	}, nil
}
