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
	"strconv"
	"strings"
	"testing"

	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/statement"
	"github.com/endink/sharding-rewrite/testkit"
	"github.com/stretchr/testify/require"
)

const (
	aesOfTest = "dSpPiyENQGDUXMKFMJPGWA=="
	md5OfTest = "098f6bcd4621d373cade4e832627b4f6"
)

var testMetas = metadata.NewTableMetas(
	metadata.NewTableMeta("t_order",
		&metadata.ColumnMeta{Name: "order_id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "user_id"},
		&metadata.ColumnMeta{Name: "status"},
		&metadata.ColumnMeta{Name: "amount"}),
	metadata.NewTableMeta("t_user",
		&metadata.ColumnMeta{Name: "id", PrimaryKey: true},
		&metadata.ColumnMeta{Name: "name"},
		&metadata.ColumnMeta{Name: "pwd"}),
)

type sequenceKeyGenerator struct {
	next int64
}

func (s *sequenceKeyGenerator) GetName() string {
	return "SEQUENCE"
}

func (s *sequenceKeyGenerator) Generate() (interface{}, error) {
	s.next++
	return s.next, nil
}

func newTestOptions(t *testing.T) RewriteOptions {
	order := rule.NewTableRule("t_order",
		rule.DataNode{DataSource: "ds0", Table: "t_order_0"},
		rule.DataNode{DataSource: "ds0", Table: "t_order_1"})
	order.GenerateKeyColumn = "order_id"
	order.KeyGenerator = &sequenceKeyGenerator{next: 100}

	aes, err := rule.NewEncryptor(rule.AESEncryptorType, map[string]string{rule.AESKeyProperty: "test"})
	require.Nil(t, err)
	md5, err := rule.NewEncryptor(rule.MD5EncryptorType, nil)
	require.Nil(t, err)
	encryptRule := rule.NewEncryptRule(true, rule.NewEncryptTable("t_user", &rule.EncryptColumn{
		LogicColumn:            "pwd",
		CipherColumn:           "pwd_cipher",
		PlainColumn:            "pwd_plain",
		AssistedQueryColumn:    "pwd_assisted",
		Encryptor:              aes,
		AssistedQueryEncryptor: md5,
	}))

	return RewriteOptions{
		ShardingRule: rule.NewShardingRule("ds0", nil, order),
		EncryptRule:  encryptRule,
	}
}

func newStatementContext(t *testing.T, stmt statement.Statement, options RewriteOptions, parameters ...interface{}) explain.StatementContext {
	ctx, err := explain.NewStatementContext(stmt, parameters, testMetas, options.ShardingRule)
	require.Nil(t, err)
	return ctx
}

func newRewriteContext(t *testing.T, sql string, stmtCtx explain.StatementContext, options RewriteOptions, parameters ...interface{}) *RewriteContext {
	ctx, err := NewShardingRewriteContext(sql, parameters, stmtCtx, testMetas, options)
	require.Nil(t, err)
	return ctx
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

func tableAt(sql string, text string) *statement.TableSegment {
	c := columnAt(sql, text, 1)
	return &statement.TableSegment{Start: c.Start, Stop: c.Stop, Name: c.Name, Owner: c.Owner}
}

func markerAt(sql string, n int) *statement.ParameterMarkerExpression {
	start, stop := testkit.PosN(sql, "?", n)
	return statement.NewParameterMarker(start, stop, n-1)
}

func whereOf(predicates ...*statement.PredicateSegment) *statement.WhereSegment {
	return &statement.WhereSegment{AndPredicates: []*statement.AndPredicate{{Predicates: predicates}}}
}

func equal(c *statement.ColumnSegment, value statement.ExpressionSegment) *statement.PredicateSegment {
	return &statement.PredicateSegment{Column: c, RightValue: &statement.CompareRightValue{Operator: statement.OperatorEqual, Expression: value}}
}

// insertStatement builds "INSERT INTO table (columns) VALUES rows", values are '?', 'text' or integers separated by ", ".
func insertStatement(sql string, table string, columns string, rows ...string) *statement.InsertStatement {
	stmt := &statement.InsertStatement{Table: tableAt(sql, table)}
	if columns != "" {
		start, stop := testkit.Pos(sql, columns)
		stmt.Columns = &statement.InsertColumnsSegment{Start: start, Stop: stop}
		for _, name := range strings.Split(columns[1:len(columns)-1], ", ") {
			stmt.Columns.Columns = append(stmt.Columns.Columns, columnAt(sql, name, 1))
		}
	}
	marker := 0
	searchFrom := 0
	for _, row := range rows {
		idx := strings.Index(sql[searchFrom:], row) + searchFrom
		segment := &statement.InsertValuesSegment{Start: idx, Stop: idx + len(row) - 1}
		searchFrom = idx + len(row)
		offset := idx + 1
		for _, text := range strings.Split(row[1:len(row)-1], ", ") {
			var expr statement.ExpressionSegment
			switch {
			case text == "?":
				expr = statement.NewParameterMarker(offset, offset, marker)
				marker++
			case strings.HasPrefix(text, "'"):
				expr = statement.NewLiteral(offset, offset+len(text)-1, strings.Trim(text, "'"))
			default:
				n, _ := strconv.Atoi(text)
				expr = statement.NewLiteral(offset, offset+len(text)-1, n)
			}
			segment.Values = append(segment.Values, expr)
			offset += len(text) + 2
		}
		stmt.Values = append(stmt.Values, segment)
	}
	stmt.ParameterCount = marker
	return stmt
}

// setStatement builds the SET assignments "a = ?, b = ?" of an insert or an update, every value is a marker.
func setStatement(sql string, assignments ...string) *statement.SetAssignmentSegment {
	set := &statement.SetAssignmentSegment{Start: testkit.Start(sql, "SET")}
	for _, a := range assignments {
		start, stop := testkit.Pos(sql, a)
		name := strings.Split(a, " = ")[0]
		value := statement.NewParameterMarker(stop, stop, strings.Count(sql[:stop], "?"))
		set.Assignments = append(set.Assignments, &statement.AssignmentSegment{
			Start:  start,
			Stop:   stop,
			Column: &statement.ColumnSegment{Start: start, Stop: start + len(name) - 1, Name: name},
			Value:  value,
		})
		set.Stop = stop
	}
	return set
}
