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

package script

import (
	"strings"

	"github.com/endink/sharding-rewrite/core"
	"github.com/pingcap/errors"
)

// InlineExpression is a comma separated list of names with embedded ${...} scripts,
// e.g. "ds${range(0,1)}.t_order${[0,1]}" flats to ds0.t_order0, ds0.t_order1, ds1.t_order0, ds1.t_order1.
type InlineExpression interface {
	Flat(variables map[string]interface{}) ([]string, error)
	FlatScalar(variables map[string]interface{}) (string, error)
	RawExpression() string
}

type inlineSegment struct {
	text   string
	script string
}

type inlineExpr struct {
	expression string
	groups     [][]*inlineSegment
}

func NewInlineExpression(expression string) (InlineExpression, error) {
	groups, err := splitSegments(expression)
	if err != nil {
		return nil, err
	}
	return &inlineExpr{expression: expression, groups: groups}, nil
}

// Flat is a shortcut for expressions without variables.
func Flat(expression string) ([]string, error) {
	expr, err := NewInlineExpression(expression)
	if err != nil {
		return nil, err
	}
	return expr.Flat(nil)
}

func (i *inlineExpr) RawExpression() string {
	return i.expression
}

func (i *inlineExpr) FlatScalar(variables map[string]interface{}) (string, error) {
	list, err := i.Flat(variables)
	if err != nil {
		return "", err
	}
	if len(list) != 1 {
		return "", errors.Errorf("inline expression '%s' should produce exactly one value but got %d", i.expression, len(list))
	}
	return list[0], nil
}

func (i *inlineExpr) Flat(variables map[string]interface{}) ([]string, error) {
	seen := make(map[string]struct{})
	list := make([]string, 0)

	for _, g := range i.groups {
		current := []string{""}
		for _, s := range g {
			parts := []string{s.text}
			if s.script != "" {
				values, err := EvalList(s.script, variables)
				if err != nil {
					return nil, i.wrapExecuteError(err, variables)
				}
				parts = make([]string, len(values))
				for idx, v := range values {
					parts[idx] = s.text + v
				}
			}
			current = product(current, parts)
		}
		for _, c := range current {
			if _, ok := seen[c]; !ok && c != "" {
				seen[c] = core.Nothing
				list = append(list, c)
			}
		}
	}
	return list, nil
}

func product(prefix []string, suffix []string) []string {
	r := make([]string, 0, len(prefix)*len(suffix))
	for _, p := range prefix {
		for _, s := range suffix {
			r = append(r, p+s)
		}
	}
	return r
}

func (i *inlineExpr) wrapExecuteError(e error, variables map[string]interface{}) error {
	sb := core.NewStringBuilder()
	sb.WriteLine("inline expression fault.")
	sb.WriteLine("Script: ", i.expression)
	sb.WriteLineF("Variables: %v", variables)
	sb.Write("Error: ", e.Error())
	return errors.New(sb.String())
}

func splitSegments(exp string) ([][]*inlineSegment, error) {
	syntaxError := func(message string, index int) error {
		sb := core.NewStringBuilder()
		sb.WriteLine("inline expression syntax error")
		sb.WriteLine(message)
		sb.WriteLineF("expression: %s", exp)
		sb.WriteFormat("char index: %d", index)
		return errors.New(sb.String())
	}

	var groups [][]*inlineSegment
	var segments []*inlineSegment
	text := &strings.Builder{}
	raw := &strings.Builder{}
	inScript := false
	depth := 0

	flushGroup := func() {
		if t := strings.TrimSpace(text.String()); t != "" {
			segments = append(segments, &inlineSegment{text: t})
		}
		if len(segments) > 0 {
			groups = append(groups, segments)
		}
		segments = nil
		text.Reset()
	}

	for i := 0; i < len(exp); i++ {
		c := exp[i]
		if inScript {
			switch c {
			case '{':
				depth++
			case '}':
				if depth == 0 {
					script := strings.TrimSpace(raw.String())
					if script == "" {
						return nil, syntaxError("script between '${' and '}' can not be empty", i)
					}
					segments = append(segments, &inlineSegment{text: strings.TrimLeft(text.String(), " \t"), script: script})
					text.Reset()
					raw.Reset()
					inScript = false
					continue
				}
				depth--
			}
			raw.WriteByte(c)
			continue
		}

		switch c {
		case '$':
			if i == len(exp)-1 || exp[i+1] != '{' {
				return nil, syntaxError("'{' symbol is missing after the symbol '$'", i)
			}
			inScript = true
			i++
		case ',':
			flushGroup()
		default:
			text.WriteByte(c)
		}
	}

	if inScript {
		return nil, syntaxError("symbol '}' used to end the script are missing", len(exp))
	}
	flushGroup()
	return groups, nil
}
