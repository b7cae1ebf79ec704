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

// StatementContext is a statement bound to its tables, built once per statement.
type StatementContext interface {
	GetStatement() statement.Statement
	GetTables() TableLookup
}

// CommonContext is used for update and delete statements.
type CommonContext struct {
	Statement statement.Statement
	Tables    TableLookup
}

func (c *CommonContext) GetStatement() statement.Statement {
	return c.Statement
}

func (c *CommonContext) GetTables() TableLookup {
	return c.Tables
}

func NewStatementContext(stmt statement.Statement, parameters []interface{}, metas metadata.TableMetas, shardingRule *rule.ShardingRule) (StatementContext, error) {
	switch s := stmt.(type) {
	case *statement.SelectStatement:
		ctx, err := NewSelectContext(s, parameters, metas)
		if err != nil {
			return nil, err
		}
		return ctx, nil
	case *statement.InsertStatement:
		ctx, err := NewInsertContext(s, parameters, metas, shardingRule)
		if err != nil {
			return nil, err
		}
		return ctx, nil
	case *statement.UpdateStatement, *statement.DeleteStatement:
		tables, err := NewTableLookup(stmt.GetTables())
		if err != nil {
			return nil, err
		}
		return &CommonContext{Statement: stmt, Tables: tables}, nil
	}
	return nil, errors.Errorf("unsupported statement type: %T", stmt)
}
