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
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rewriting/token"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/pingcap/errors"
)

var logger = logging.GetLogger("rewriting")

// RewriteContext holds one statement being rewritten: its parameters, the parameter builder and the generated tokens.
type RewriteContext struct {
	SQL              string
	Parameters       []interface{}
	StatementContext explain.StatementContext
	ShardingRule     *rule.ShardingRule
	EncryptRule      *rule.EncryptRule
	Metas            metadata.TableMetas
	SingleRoute      bool
	ParameterBuilder ParameterBuilder
	Tokens           []token.SQLToken

	registry *token.Registry
}

// NewRewriteContext creates the context without rewriting anything, the parameters of a VALUES insert are grouped by row.
func NewRewriteContext(sql string, parameters []interface{}, stmtCtx explain.StatementContext, metas metadata.TableMetas) *RewriteContext {
	ctx := &RewriteContext{
		SQL:              sql,
		Parameters:       parameters,
		StatementContext: stmtCtx,
		Metas:            metas,
		registry:         token.NewRegistry(),
	}
	if i, ok := stmtCtx.(*explain.InsertContext); ok && i.IsValuesForm() {
		ctx.ParameterBuilder = NewGroupedParameterBuilder(i.TableName(), i.Values)
	} else {
		ctx.ParameterBuilder = NewStandardParameterBuilder(parameters)
	}
	return ctx
}

// RewriteOptions are the rules and the routing information of a statement.
type RewriteOptions struct {
	ShardingRule *rule.ShardingRule
	EncryptRule  *rule.EncryptRule
	// SingleRoute is true when the statement is routed to exactly one target, merging tokens are not needed then.
	SingleRoute bool
}

// NewShardingRewriteContext rewrites the parameters and generates the tokens of the statement,
// sharding first, then encrypt, then the base rewriting.
func NewShardingRewriteContext(sql string, parameters []interface{}, stmtCtx explain.StatementContext, metas metadata.TableMetas, options RewriteOptions) (*RewriteContext, error) {
	ctx := NewRewriteContext(sql, parameters, stmtCtx, metas)
	ctx.ShardingRule = options.ShardingRule
	ctx.EncryptRule = options.EncryptRule
	ctx.SingleRoute = options.SingleRoute

	if ctx.ShardingRule != nil {
		if err := rewriteParameters(ctx, shardingParameterRewriters); err != nil {
			return nil, errors.Annotate(err, "rewrite sharding parameters fault")
		}
		ctx.AddGenerators(token.ShardingGenerators()...)
	}
	if ctx.EncryptRule != nil {
		if err := rewriteParameters(ctx, encryptParameterRewriters); err != nil {
			return nil, errors.Annotate(err, "rewrite encrypt parameters fault")
		}
		ctx.AddGenerators(token.EncryptGenerators()...)
	}
	ctx.AddGenerators(token.BaseGenerators()...)

	if err := ctx.GenerateTokens(); err != nil {
		return nil, err
	}
	logger.Debugf("%d tokens generated for sql: %s", len(ctx.Tokens), sql)
	return ctx, nil
}

// AddGenerators registers generators, a kind already registered is ignored.
func (ctx *RewriteContext) AddGenerators(generators ...token.Generator) {
	ctx.registry.Add(generators...)
}

// GenerateTokens runs the registered generators, replacing the tokens of the context.
func (ctx *RewriteContext) GenerateTokens() error {
	tokens, err := ctx.registry.Generate(&token.GenerateContext{
		SQL:          ctx.SQL,
		Statement:    ctx.StatementContext,
		Parameters:   ctx.Parameters,
		ShardingRule: ctx.ShardingRule,
		EncryptRule:  ctx.EncryptRule,
		Metas:        ctx.Metas,
		SingleRoute:  ctx.SingleRoute,
	})
	if err != nil {
		return err
	}
	ctx.Tokens = tokens
	return nil
}

func (ctx *RewriteContext) standardBuilder() *StandardParameterBuilder {
	if b, ok := ctx.ParameterBuilder.(*StandardParameterBuilder); ok {
		return b
	}
	panic(errors.Errorf("statement %T uses grouped parameters", ctx.StatementContext.GetStatement()))
}

func (ctx *RewriteContext) parameter(index int) (interface{}, error) {
	if index < 0 || index >= len(ctx.Parameters) {
		return nil, errors.Errorf("parameter index %d is out of range, parameter count: %d", index, len(ctx.Parameters))
	}
	return ctx.Parameters[index], nil
}
