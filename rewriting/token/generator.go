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
	"fmt"
	"sort"

	"github.com/endink/sharding-rewrite/explain"
	"github.com/endink/sharding-rewrite/logging"
	"github.com/endink/sharding-rewrite/metadata"
	"github.com/endink/sharding-rewrite/rule"
	"github.com/endink/sharding-rewrite/telemetry"
	"github.com/pingcap/errors"
)

var logger = logging.GetLogger("rewriting")

type GeneratorKind int

const (
	GeneratorTable GeneratorKind = iota
	GeneratorRemove
	GeneratorProjections
	GeneratorOrderBy
	GeneratorOffset
	GeneratorRowCount
	GeneratorGeneratedKeyInsertColumn
	GeneratorGeneratedKeyAssignment
	GeneratorInsertValues
	GeneratorInsertColumns
	GeneratorEncryptProjection
	GeneratorEncryptPredicateColumn
	GeneratorEncryptPredicateValue
	GeneratorEncryptInsertColumns
	GeneratorEncryptAssignment
)

var generatorKindNames = map[GeneratorKind]string{
	GeneratorTable:                    "table",
	GeneratorRemove:                   "remove",
	GeneratorProjections:              "projections",
	GeneratorOrderBy:                  "order_by",
	GeneratorOffset:                   "offset",
	GeneratorRowCount:                 "row_count",
	GeneratorGeneratedKeyInsertColumn: "generated_key_insert_column",
	GeneratorGeneratedKeyAssignment:   "generated_key_assignment",
	GeneratorInsertValues:             "insert_values",
	GeneratorInsertColumns:            "insert_columns",
	GeneratorEncryptProjection:        "encrypt_projection",
	GeneratorEncryptPredicateColumn:   "encrypt_predicate_column",
	GeneratorEncryptPredicateValue:    "encrypt_predicate_value",
	GeneratorEncryptInsertColumns:     "encrypt_insert_columns",
	GeneratorEncryptAssignment:        "encrypt_assignment",
}

func (k GeneratorKind) String() string {
	if name, ok := generatorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("generator_%d", int(k))
}

// GenerateContext is everything a generator reads, generators keep no state of their own.
type GenerateContext struct {
	SQL          string
	Statement    explain.StatementContext
	Parameters   []interface{}
	ShardingRule *rule.ShardingRule
	EncryptRule  *rule.EncryptRule
	Metas        metadata.TableMetas
	// SingleRoute is true when the statement reaches exactly one physical target.
	SingleRoute bool
}

type Generator interface {
	Kind() GeneratorKind
	IsGenerateSQLToken(ctx *GenerateContext) bool
}

// OptionalGenerator produces at most one token.
type OptionalGenerator interface {
	Generator
	GenerateSQLToken(ctx *GenerateContext) (SQLToken, error)
}

// CollectionGenerator produces any number of tokens.
type CollectionGenerator interface {
	Generator
	GenerateSQLTokens(ctx *GenerateContext) ([]SQLToken, error)
}

// IgnoreForSingleRoute marks generators only needed to merge the results of several targets.
type IgnoreForSingleRoute interface {
	IgnoreForSingleRoute()
}

type ignoreForSingleRoute struct{}

func (ignoreForSingleRoute) IgnoreForSingleRoute() {}

// Registry runs each kind of generator once, it is created per statement.
type Registry struct {
	generators []Generator
	kinds      map[GeneratorKind]struct{}
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[GeneratorKind]struct{})}
}

// Add registers the generators, a generator whose kind is already registered is ignored.
func (r *Registry) Add(generators ...Generator) {
	for _, g := range generators {
		if _, ok := r.kinds[g.Kind()]; ok {
			continue
		}
		r.kinds[g.Kind()] = struct{}{}
		r.generators = append(r.generators, g)
	}
}

func (r *Registry) Generators() []Generator {
	return append([]Generator(nil), r.generators...)
}

// Generate runs the registered generators and returns the tokens ordered by start index,
// tokens with the same start index keep the order of their generators.
func (r *Registry) Generate(ctx *GenerateContext) ([]SQLToken, error) {
	var result []SQLToken
	for _, g := range r.generators {
		if _, ok := g.(IgnoreForSingleRoute); ok && ctx.SingleRoute {
			logger.Debugf("generator '%s' skipped for single route", g.Kind())
			continue
		}
		if !g.IsGenerateSQLToken(ctx) {
			continue
		}
		var tokens []SQLToken
		switch generator := g.(type) {
		case OptionalGenerator:
			t, err := generator.GenerateSQLToken(ctx)
			if err != nil {
				return nil, errors.Annotatef(err, "generator: %s", g.Kind())
			}
			if t != nil {
				tokens = []SQLToken{t}
			}
		case CollectionGenerator:
			ts, err := generator.GenerateSQLTokens(ctx)
			if err != nil {
				return nil, errors.Annotatef(err, "generator: %s", g.Kind())
			}
			tokens = ts
		default:
			return nil, errors.Errorf("generator '%s' is neither optional nor collection generator", g.Kind())
		}
		telemetry.ObserveTokens(g.Kind().String(), len(tokens))
		result = append(result, tokens...)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartIndex() < result[j].StartIndex()
	})
	return result, nil
}
