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
	"github.com/endink/sharding-rewrite/routing"
	"github.com/endink/sharding-rewrite/telemetry"
)

// SQLRewriteResult is the sql and the parameters sent to one target.
type SQLRewriteResult struct {
	SQL        string
	Parameters []interface{}
}

type Engine struct {
}

func NewRewritingEngine() *Engine {
	return &Engine{}
}

// Rewrite assembles the sql of a statement sent as is to a single target, logic table names are kept.
func (s *Engine) Rewrite(ctx *RewriteContext) (*SQLRewriteResult, error) {
	sql, err := Assemble(ctx.SQL, ctx.Tokens, nil)
	if err != nil {
		return nil, err
	}
	telemetry.ObserveRewrite("single")
	return &SQLRewriteResult{SQL: sql, Parameters: ctx.ParameterBuilder.Parameters(nil)}, nil
}

// RewriteUnits assembles the sql of every route unit, an insert unit which no row is routed to is skipped.
func (s *Engine) RewriteUnits(ctx *RewriteContext, result *routing.RouteResult) (map[*routing.RouteUnit]*SQLRewriteResult, error) {
	results := make(map[*routing.RouteUnit]*SQLRewriteResult, len(result.Units))
	for _, unit := range result.Units {
		if !s.hasRows(ctx, unit) {
			logger.Debugf("no insert row is routed to unit %s", unit)
			continue
		}
		sql, err := Assemble(ctx.SQL, ctx.Tokens, unit)
		if err != nil {
			return nil, err
		}
		results[unit] = &SQLRewriteResult{SQL: sql, Parameters: ctx.ParameterBuilder.Parameters(unit)}
	}
	telemetry.ObserveRewrite("units")
	return results, nil
}

func (s *Engine) hasRows(ctx *RewriteContext, unit *routing.RouteUnit) bool {
	i, ok := ctx.StatementContext.(*explain.InsertContext)
	if !ok || !i.IsValuesForm() {
		return true
	}
	table := i.TableName()
	for _, row := range i.Values {
		if isRowRouted(row, table, unit) {
			return true
		}
	}
	return false
}
