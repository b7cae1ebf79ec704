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
	"strings"
	"testing"

	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetas = metadata.NewTableMetas(
	metadata.NewTableMeta("t_order",
		&metadata.ColumnMeta{Name: "order_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "user_id"},
		&metadata.ColumnMeta{Name: "status"}),
	metadata.NewTableMeta("t_order_item",
		&metadata.ColumnMeta{Name: "item_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "order_id"},
		&metadata.ColumnMeta{Name: "price"}),
	metadata.NewTableMeta("t_user",
		&metadata.ColumnMeta{Name: "id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "name"},
		&metadata.ColumnMeta{Name: "pwd"}),
)

func newShardingRule(t *testing.T) *rule.ShardingRule {
	order := rule.NewTableRule("t_order",
		rule.DataNode{DataSource: "ds0", Table: "t_order_0"},
		rule.DataNode{DataSource: "ds0", Table: "t_order_1"})
	order.GenerateKeyColumn = "order_id"
	var err error
	order.KeyGenerator, err = rule.NewKeyGenerator(rule.SnowflakeKeyGeneratorType, nil)
	require.Nil(t, err)

	item := rule.NewTableRule("t_order_item",
		rule.DataNode{DataSource: "ds0", Table: "t_order_item_0"},
		rule.DataNode{DataSource: "ds0", Table: "t_order_item_1"})
	return rule.NewShardingRule("ds0", nil, order, item)
}

func newEncryptRule(t *testing.T) *rule.EncryptRule {
	aes, err := rule.NewEncryptor(rule.AESEncryptorType, map[string]string{rule.AESKeyProperty: "test"})
	require.Nil(t, err)
	md5, err := rule.NewEncryptor(rule.MD5EncryptorType, nil)
	require.Nil(t, err)
	return rule.NewEncryptRule(true, rule.NewEncryptTable("t_user", &rule.EncryptColumn{
		LogicColumn:            "pwd",
		CipherColumn:           "pwd_cipher",
		PlainColumn:            "pwd_plain",
		AssistedQueryColumn:    "pwd_assisted",
		Encryptor:              aes,
		AssistedQueryEncryptor: md5,
	}))
}

// columnAt builds the column of the nth occurrence of "owner.name" or "name" in sql.
func columnAt(sql string, text string, n int) *statement.ColumnSegment {
	start, stop := testkit.PosN(sql, text, n)
	dot := strings.Index(text, ".")
	if dot < 0 {
		return &statement.ColumnSegment{Start: start, Stop: stop, Name: text}
	}
	return &statement.ColumnSegment{
		Start: start + dot + 1,
		Stop:  stop,
		Name:  text[dot+1:],
		Owner: &statement.OwnerSegment{Start: start, Stop: start + dot - 1, Name: text[:dot]},
	}
}

// tableAt builds the table of the first occurrence of "schema.name" or "name" in sql.
func tableAt(sql string, text string, alias string) *statement.TableSegment {
	c := columnAt(sql, text, 1)
	return &statement.TableSegment{Start: c.Start, Stop: c.Stop, Name: c.Name, Owner: c.Owner, Alias: alias}
}

func literalAt(sql string, text string, value interface{}) *statement.LiteralExpression {
	start, stop := testkit.Pos(sql, text)
	return statement.NewLiteral(start, stop, value)
}

func markerAt(sql string, n int, index int) *statement.ParameterMarkerExpression {
	start, stop := testkit.PosN(sql, "?", n)
	return statement.NewParameterMarker(start, stop, index)
}

func generate(t *testing.T, ctx *GenerateContext, generators ...Generator) []SQLToken {
	r := NewRegistry()
	r.Add(generators...)
	tokens, err := r.Generate(ctx)
	require.Nil(t, err)
	return tokens
}

func newGenerateContext(t *testing.T, sql string, stmt statement.Statement, parameters ...interface{}) *GenerateContext {
	shardingRule := newShardingRule(t)
	stmtCtx, err := explain.NewStatementContext(stmt, parameters, testMetas, shardingRule)
	require.Nil(t, err)
	return &GenerateContext{
		SQL:          sql,
		Statement:    stmtCtx,
		Parameters:   parameters,
		ShardingRule: shardingRule,
		EncryptRule:  newEncryptRule(t),
		Metas:        testMetas,
	}
}

type fakeToken struct {
	position
	text string
}

func (f *fakeToken) Text(_ *routing.RouteUnit) string {
	return f.text
}

type fakeGenerator struct {
	kind  GeneratorKind
	index int
	calls *int
	err   error
}

func (f fakeGenerator) Kind() GeneratorKind { return f.kind }

func (f fakeGenerator) IsGenerateSQLToken(_ *GenerateContext) bool { return true }

func (f fakeGenerator) GenerateSQLToken(_ *GenerateContext) (SQLToken, error) {
	if f.calls != nil {
		*f.calls++
	}
	if f.err != nil {
		return nil, f.err
	}
	return &fakeToken{position: insertingAt(f.index), text: f.kind.String()}, nil
}

type fakeMergeGenerator struct {
	fakeGenerator
	ignoreForSingleRoute
}

func startIndexes(tokens []SQLToken) []int {
	result := make([]int, len(tokens))
	for i, t := range tokens {
		result[i] = t.StartIndex()
	}
	return result
}

func TestRegistryOrdersTokensByStartIndex(t *testing.T) {
	tokens := generate(t, &GenerateContext{},
		fakeGenerator{kind: 100, index: 5},
		fakeGenerator{kind: 101, index: 2},
		fakeGenerator{kind: 102, index: 8},
	)
	assert.Equal(t, []int{2, 5, 8}, startIndexes(tokens))
}

func TestRegistryKeepsGeneratorOrderForSameIndex(t *testing.T) {
	tokens := generate(t, &GenerateContext{},
		fakeGenerator{kind: 101, index: 3},
		fakeGenerator{kind: 100, index: 3},
		fakeGenerator{kind: 102, index: 1},
	)
	require.Equal(t, 3, len(tokens))
	assert.Equal(t, "generator_102", tokens[0].Text(nil))
	assert.Equal(t, "generator_101", tokens[1].Text(nil))
	assert.Equal(t, "generator_100", tokens[2].Text(nil))
}

func TestRegistryIgnoresDuplicateKind(t *testing.T) {
	first, second := 0, 0
	r := NewRegistry()
	r.Add(fakeGenerator{kind: 100, index: 1, calls: &first})
	r.Add(fakeGenerator{kind: 100, index: 2, calls: &second}, fakeGenerator{kind: 101, index: 0})
	assert.Equal(t, 2, len(r.Generators()))

	tokens, err := r.Generate(&GenerateContext{})
	require.Nil(t, err)
	assert.Equal(t, []int{0, 1}, startIndexes(tokens))
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestRegistrySkipsMergeGeneratorsForSingleRoute(t *testing.T) {
	calls := 0
	merge := fakeMergeGenerator{fakeGenerator: fakeGenerator{kind: 100, index: 4, calls: &calls}}
	plain := fakeGenerator{kind: 101, index: 1}

	tokens := generate(t, &GenerateContext{SingleRoute: true}, merge, plain)
	assert.Equal(t, []int{1}, startIndexes(tokens))
	assert.Equal(t, 0, calls)

	tokens = generate(t, &GenerateContext{}, merge, plain)
	assert.Equal(t, []int{1, 4}, startIndexes(tokens))
	assert.Equal(t, 1, calls)
}

func TestRegistryReportsGeneratorErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.Add(fakeGenerator{kind: GeneratorTable, err: boom})
	_, err := r.Generate(&GenerateContext{})
	require.Error(t, err)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Contains(t, err.Error(), "table")
}

func TestGeneratorLists(t *testing.T) {
	assert.Equal(t, "encrypt_assignment", GeneratorEncryptAssignment.String())
	assert.Equal(t, "generator_99", GeneratorKind(99).String())

	list := ShardingGenerators()
	list[0] = nil
	assert.NotNil(t, ShardingGenerators()[0])

	r := NewRegistry()
	r.Add(ShardingGenerators()...)
	r.Add(EncryptGenerators()...)
	r.Add(BaseGenerators()...)
	assert.Equal(t, len(ShardingGenerators())+len(EncryptGenerators())+len(BaseGenerators())-1, len(r.Generators()))
}
